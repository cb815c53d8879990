package request

import (
	"strings"

	"seat-reservation/internal/data/entity"
)

type SeatRef struct {
	Region string `json:"region" validate:"required,max=10"`
	Number int    `json:"number" validate:"required,min=1"`
}

type BookRequest struct {
	Name  string    `json:"name" validate:"required"`
	Phone string    `json:"phone" validate:"required"`
	Seats []SeatRef `json:"seats" validate:"required,min=1,dive"`
}

type CheckSeatsRequest struct {
	Seats []SeatRef `json:"seats" validate:"required,min=1,dive"`
}

// ToEntityRefs normalizes the submitted seats: regions are trimmed and
// uppercased so "wla" and "WLA " address the same seat row.
func ToEntityRefs(seats []SeatRef) []entity.SeatRef {
	refs := make([]entity.SeatRef, len(seats))
	for i, s := range seats {
		refs[i] = entity.SeatRef{
			Region: strings.ToUpper(strings.TrimSpace(s.Region)),
			Number: s.Number,
		}
	}
	return refs
}
