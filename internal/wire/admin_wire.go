package wire

import (
	"seat-reservation/internal/adaptor"
	"seat-reservation/pkg/middleware"
	"seat-reservation/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

func wireAdmin(
	r chi.Router,
	handler *adaptor.Handler,
	config *utils.Config,
	log *zap.Logger,
) {
	// ==================== ADMIN ROUTES ====================
	// Authentication happens here, at route registration; the services below
	// only ever see the admin flag on the context.
	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.AdminAuth(config.Admin.PasswordHash, log))

		// POST /api/admin/book - Book seats on behalf of a walk-in guest
		// (reservation starts active, no dashboard notification)
		r.Post("/book", handler.Booking.Book)

		// Lifecycle transitions
		r.Post("/approve/{id}", handler.Reservation.Approve)
		r.Post("/reject/{id}", handler.Reservation.Reject)
		r.Post("/revoke/{id}", handler.Reservation.Revoke)

		// GET /api/admin/reservations - Dashboard list (filter, search, pages)
		r.Get("/reservations", handler.Reservation.List)

		// GET /api/admin/events - SSE stream of lifecycle events
		r.Get("/events", handler.Events.Stream)

		// GET /api/admin/qr - QR code of the public booking form
		r.Get("/qr", handler.QR.Generate)
	})
}
