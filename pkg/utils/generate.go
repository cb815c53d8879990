package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TicketTokenLength is the length of the public ticket token in hex characters.
const TicketTokenLength = 32

// GenerateTicketToken returns a cryptographically random hex token used as
// the public, unguessable identifier of a reservation.
func GenerateTicketToken() (string, error) {
	buf := make([]byte, TicketTokenLength/2)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate ticket token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
