// Package repository implements the persistent seat ledger and reservation
// store on PostgreSQL. Sentinel and typed errors defined here let higher
// layers distinguish failure scenarios without string matching.
package repository

import "fmt"

// SeatClaimedError is returned when a claim targets a seat that is already
// owned by a pending or active reservation. It names the contested seat so
// callers can surface an actionable message.
type SeatClaimedError struct {
	Region string
	Number int
}

func (e *SeatClaimedError) Error() string {
	return fmt.Sprintf("seat %s-%d already booked", e.Region, e.Number)
}

// Label returns the contested seat as "REGION-N".
func (e *SeatClaimedError) Label() string {
	return fmt.Sprintf("%s-%d", e.Region, e.Number)
}
