package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
)

var (
	ErrInvalidCredentials = errors.New("invalid participant or passphrase")
	ErrWeakPassphrase     = errors.New("passphrase must be at least 8 characters")
)

const minPassphraseLen = 8

// PassphraseAuthenticator accepts any configured participant that presents
// the household passphrase. Only the bcrypt hash is held.
type PassphraseAuthenticator struct {
	participants models.ParticipantSet
	hash         []byte
}

// NewPassphraseAuthenticator checks that hash is a bcrypt hash before
// accepting it.
func NewPassphraseAuthenticator(participants models.ParticipantSet, hash string) (*PassphraseAuthenticator, error) {
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return nil, fmt.Errorf("invalid passphrase hash: %w", err)
	}
	return &PassphraseAuthenticator{
		participants: participants,
		hash:         []byte(hash),
	}, nil
}

// HashPassphrase produces the hash stored in configuration.
func HashPassphrase(passphrase string) (string, error) {
	if len(passphrase) < minPassphraseLen {
		return "", ErrWeakPassphrase
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}
	return string(hashed), nil
}

// Authenticate implements Authenticator.
func (a *PassphraseAuthenticator) Authenticate(_ context.Context, participant, credential string) (models.Participant, error) {
	p := models.Participant(participant)
	if !a.participants.Contains(p) {
		return "", ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(credential)); err != nil {
		return "", ErrInvalidCredentials
	}
	return p, nil
}
