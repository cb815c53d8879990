package entity

type ReservationStatus string

const (
	StatusPending ReservationStatus = "pending"
	StatusActive  ReservationStatus = "active"
	StatusExpired ReservationStatus = "expired"
	StatusRevoked ReservationStatus = "revoked"
)

// CanTransitionTo reports whether moving to next is a legal lifecycle step.
// Transitions are monotone: pending may become active, revoked or expired;
// active may only become revoked; expired and revoked are terminal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusActive || next == StatusRevoked || next == StatusExpired
	case StatusActive:
		return next == StatusRevoked
	default:
		return false
	}
}

// Released reports whether the status implies the reservation owns no seats.
func (s ReservationStatus) Released() bool {
	return s == StatusExpired || s == StatusRevoked
}

// Reservation is a booking record binding a holder to a set of seats.
// Rows are never deleted; terminal reservations remain as an audit trail.
type Reservation struct {
	Base
	Token         string            `db:"token"`
	Name          string            `db:"name"`
	Phone         string            `db:"phone"`
	Status        ReservationStatus `db:"status"`
	BookedByAdmin bool              `db:"booked_by_admin"`
}
