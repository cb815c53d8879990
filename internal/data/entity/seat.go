package entity

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Seat is an addressable (region, number) unit. Rows are created lazily on
// first claim and never deleted; ReservationID is nil while the seat is free.
type Seat struct {
	Base
	Region        string     `db:"region"`
	SeatNumber    int        `db:"seat_number"`
	ReservationID *uuid.UUID `db:"reservation_id"`
}

// SeatRef addresses a seat as submitted by a caller.
type SeatRef struct {
	Region string `json:"region"`
	Number int    `json:"number"`
}

// Label formats the seat as "REGION-N", e.g. "WLA-5".
func (s SeatRef) Label() string {
	return fmt.Sprintf("%s-%d", strings.ToUpper(s.Region), s.Number)
}

// OccupiedSeat is a claimed seat together with its owner's status,
// as rendered on the public availability map.
type OccupiedSeat struct {
	Region string            `json:"region"`
	Number int               `json:"number"`
	Status ReservationStatus `json:"status"`
}
