package usecase

import (
	"seat-reservation/internal/broadcast"
	"seat-reservation/internal/data/repository"
	"seat-reservation/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Booking     BookingService
	Reservation ReservationService
	Sweeper     SweeperService
}

func NewService(repo *repository.Repository, hub *broadcast.Hub, config *utils.Config, log *zap.Logger) *Service {
	sweeper := NewSweeperService(repo.Reservation, config, log)
	return &Service{
		Booking:     NewBookingService(repo, hub, sweeper, config, log),
		Reservation: NewReservationService(repo, sweeper, config, log),
		Sweeper:     sweeper,
	}
}
