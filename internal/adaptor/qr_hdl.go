package adaptor

import (
	"fmt"
	"net/http"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

type QRHandler struct {
	baseURL string
	log     *zap.Logger
}

func NewQRHandler(baseURL string, log *zap.Logger) *QRHandler {
	return &QRHandler{
		baseURL: baseURL,
		log:     log.With(zap.String("handler", "qr")),
	}
}

// Generate handles GET /api/admin/qr: a PNG QR code pointing at the public
// booking form, for the admin to put on display at the venue.
func (h *QRHandler) Generate(w http.ResponseWriter, r *http.Request) {
	bookingURL := fmt.Sprintf("%s/book", h.baseURL)

	png, err := qrcode.Encode(bookingURL, qrcode.Medium, 256)
	if err != nil {
		h.log.Error("Failed to generate QR code",
			zap.Error(err),
			zap.String("url", bookingURL))
		http.Error(w, "Failed to generate QR code", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
