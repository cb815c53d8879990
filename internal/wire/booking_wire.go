package wire

import (
	"seat-reservation/internal/adaptor"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireBooking(
	r chi.Router,
	handler *adaptor.Handler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== PUBLIC ROUTES ====================
	// Booking submissions are rate limited per IP; reads are not.
	limiter := middleware.NewRateLimiter(config.RateLimit)

	r.Group(func(r chi.Router) {
		r.Use(limiter.Limit(log))

		// POST /api/book - Book seats as guest (reservation starts pending)
		r.Post("/api/book", handler.Booking.Book)

		// POST /api/check-seats - Re-check availability before submitting
		r.Post("/api/check-seats", handler.Booking.CheckSeats)
	})

	// GET /api/seats - Occupied seats for the availability map
	r.Get("/api/seats", handler.Booking.OccupiedSeats)

	// GET /api/ticket/{token} - Public ticket view by unguessable token
	r.Get("/api/ticket/{token}", handler.Booking.Ticket)
}
