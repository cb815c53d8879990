package repository

import (
	"seat-reservation/pkg/database"

	"go.uber.org/zap"
)

type Repository struct {
	Seat        SeatRepository
	Reservation ReservationRepository
}

func NewRepository(db database.PgxIface, log *zap.Logger) *Repository {
	seat := NewSeatRepository(db, log)
	return &Repository{
		Seat:        seat,
		Reservation: NewReservationRepository(db, seat, log),
	}
}
