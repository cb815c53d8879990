package adaptor

import (
	"net/http"

	"seat-reservation/internal/dto/request"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ReservationHandler struct {
	service usecase.ReservationService
	log     *zap.Logger
}

func NewReservationHandler(service usecase.ReservationService, log *zap.Logger) *ReservationHandler {
	return &ReservationHandler{
		service: service,
		log:     log.With(zap.String("handler", "reservation")),
	}
}

// Approve handles POST /api/admin/approve/{id}
func (h *ReservationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Approve(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "approve reservation")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// Reject handles POST /api/admin/reject/{id}
func (h *ReservationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Reject(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "reject reservation")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// Revoke handles POST /api/admin/revoke/{id}
func (h *ReservationHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Revoke(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.log, err, "revoke reservation")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

// List handles GET /api/admin/reservations
func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	req := &request.ListReservationsRequest{
		PaginatedRequest: request.PaginatedRequest{
			Page:    utils.ParseInt(query.Get("page"), 1),
			PerPage: utils.ParseInt(query.Get("per_page"), 20),
		},
		Status: query.Get("status"),
		Search: query.Get("search"),
	}

	reservations, err := h.service.List(r.Context(), req)
	if err != nil {
		writeServiceError(w, h.log, err, "list reservations")
		return
	}

	utils.ResponseSuccess(w, "success", reservations)
}
