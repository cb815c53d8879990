package adaptor

import (
	"encoding/json"
	"net/http"

	"seat-reservation/internal/data/entity"
	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookings     usecase.BookingService
	reservations usecase.ReservationService
	log          *zap.Logger
}

func NewBookingHandler(bookings usecase.BookingService, reservations usecase.ReservationService, log *zap.Logger) *BookingHandler {
	return &BookingHandler{
		bookings:     bookings,
		reservations: reservations,
		log:          log.With(zap.String("handler", "booking")),
	}
}

// Book handles POST /api/book (public) and POST /api/admin/book (admin).
// The admin middleware marks the context; admin bookings start out active.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req request.BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	isAdmin := utils.IsAdminFromContext(r.Context())

	booking, err := h.bookings.Book(r.Context(), &req, isAdmin)
	if err != nil {
		writeServiceError(w, h.log, err, "book seats")
		return
	}

	utils.ResponseCreated(w, "success", booking)
}

// CheckSeats handles POST /api/check-seats (public)
func (h *BookingHandler) CheckSeats(w http.ResponseWriter, r *http.Request) {
	var req request.CheckSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.bookings.CheckSeats(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.log, err, "check seats")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// OccupiedSeats handles GET /api/seats (public)
func (h *BookingHandler) OccupiedSeats(w http.ResponseWriter, r *http.Request) {
	seats, err := h.bookings.OccupiedSeats(r.Context())
	if err != nil {
		writeServiceError(w, h.log, err, "get occupied seats")
		return
	}

	if seats == nil {
		seats = []entity.OccupiedSeat{}
	}

	utils.ResponseSuccess(w, "success", seats)
}

// Ticket handles GET /api/ticket/{token} (public)
func (h *BookingHandler) Ticket(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		utils.ResponseBadRequest(w, "Ticket token is required", nil)
		return
	}

	reservation, err := h.reservations.Lookup(r.Context(), token)
	if err != nil {
		writeServiceError(w, h.log, err, "lookup ticket")
		return
	}

	utils.ResponseSuccess(w, "success", reservation)
}
