package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator verifies a participant's credential. Implementations decide
// what the credential is; the ledger ships a shared passphrase.
type Authenticator interface {
	// Authenticate returns the canonical participant when the credential is
	// accepted, or ErrInvalidCredentials.
	Authenticate(ctx context.Context, participant, credential string) (models.Participant, error)
}
