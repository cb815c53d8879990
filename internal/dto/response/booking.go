package response

import (
	"time"

	"seat-reservation/internal/data/entity"
)

type BookResponse struct {
	Token     string `json:"token"`
	TicketURL string `json:"ticket_url"`
}

type CheckSeatsResponse struct {
	Available bool     `json:"available"`
	Conflicts []string `json:"conflicts,omitempty"`
}

type ReservationResponse struct {
	ID            string                   `json:"id"`
	Token         string                   `json:"token"`
	Name          string                   `json:"name"`
	Phone         string                   `json:"phone"`
	Status        entity.ReservationStatus `json:"status"`
	BookedByAdmin bool                     `json:"booked_by_admin"`
	Seats         []string                 `json:"seats"`
	CreatedAt     time.Time                `json:"created_at"`
	// ExpiresAt is set for pending reservations only: the instant the
	// pending timeout demotes the reservation to expired.
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ReservationToResponse builds the public view of a reservation. seats must
// already be ordered; pendingTimeout drives the expiry deadline.
func ReservationToResponse(reservation *entity.Reservation, seats []entity.SeatRef, pendingTimeout time.Duration) ReservationResponse {
	labels := make([]string, len(seats))
	for i, ref := range seats {
		labels[i] = ref.Label()
	}

	resp := ReservationResponse{
		ID:            reservation.ID.String(),
		Token:         reservation.Token,
		Name:          reservation.Name,
		Phone:         reservation.Phone,
		Status:        reservation.Status,
		BookedByAdmin: reservation.BookedByAdmin,
		Seats:         labels,
		CreatedAt:     reservation.CreatedAt,
	}

	if reservation.Status == entity.StatusPending {
		expiresAt := reservation.CreatedAt.Add(pendingTimeout)
		resp.ExpiresAt = &expiresAt
	}

	return resp
}
