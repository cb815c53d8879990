package adaptor

import (
	"errors"
	"net/http"

	"seat-reservation/internal/broadcast"
	"seat-reservation/internal/data/repository"
	"seat-reservation/internal/usecase"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Booking     *BookingHandler
	Reservation *ReservationHandler
	Events      *EventsHandler
	QR          *QRHandler
}

func NewHandler(service *usecase.Service, hub *broadcast.Hub, config *utils.Config, log *zap.Logger) *Handler {
	return &Handler{
		Booking:     NewBookingHandler(service.Booking, service.Reservation, log),
		Reservation: NewReservationHandler(service.Reservation, log),
		Events:      NewEventsHandler(hub, log),
		QR:          NewQRHandler(config.App.BaseURL, log),
	}
}

// writeServiceError maps service errors onto HTTP responses. Validation and
// conflict errors carry a specific, actionable message; anything else is a
// generic retry hint, with full context left in the logs.
func writeServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var claimed *repository.SeatClaimedError

	switch {
	case errors.As(err, &claimed):
		log.Info(operation+" failed - seat conflict",
			zap.String("seat", claimed.Label()))
		utils.ResponseConflict(w, err.Error(), map[string]string{"seat": claimed.Label()})

	case errors.Is(err, usecase.ErrValidation):
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, err.Error(), nil)

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidState):
		log.Warn(operation+" failed - invalid state", zap.Error(err))
		utils.ResponseConflict(w, err.Error(), nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Something went wrong. Please try again.")
	}
}
