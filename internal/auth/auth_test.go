package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
)

func testHash(t *testing.T, passphrase string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(passphrase), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

func TestPassphraseAuthenticator(t *testing.T) {
	set := models.MustParticipantSet("Alice", "Bob")
	a, err := NewPassphraseAuthenticator(set, testHash(t, "correct horse"))
	require.NoError(t, err)

	tests := []struct {
		name        string
		participant string
		passphrase  string
		wantErr     error
	}{
		{name: "accepted", participant: "Alice", passphrase: "correct horse"},
		{name: "wrong passphrase", participant: "Bob", passphrase: "battery staple", wantErr: ErrInvalidCredentials},
		{name: "unknown participant", participant: "Mallory", passphrase: "correct horse", wantErr: ErrInvalidCredentials},
		{name: "empty participant", participant: "", passphrase: "correct horse", wantErr: ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Authenticate(context.Background(), tt.participant, tt.passphrase)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.Participant(tt.participant), got)
		})
	}
}

func TestNewPassphraseAuthenticatorRejectsPlainText(t *testing.T) {
	_, err := NewPassphraseAuthenticator(models.MustParticipantSet("Alice"), "not-a-hash")
	assert.Error(t, err)
}

func TestHashPassphrase(t *testing.T) {
	_, err := HashPassphrase("short")
	assert.ErrorIs(t, err, ErrWeakPassphrase)

	hashed, err := HashPassphrase("long enough")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hashed), []byte("long enough")))
}

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)

	token, expiresAt, err := m.Generate("Alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "Alice", claims.Participant)
	assert.NotEmpty(t, claims.ID)
}

func TestJWTManagerTokenIDsAreUnique(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	first, _, err := m.Generate("Alice")
	require.NoError(t, err)
	second, _, err := m.Generate("Alice")
	require.NoError(t, err)

	c1, err := m.Validate(first)
	require.NoError(t, err)
	c2, err := m.Validate(second)
	require.NoError(t, err)
	assert.NotEqual(t, c1.ID, c2.ID)
}

func TestJWTManagerRejects(t *testing.T) {
	m := NewJWTManager("test-secret", time.Hour)
	token, _, err := m.Generate("Alice")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		_, err := other.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unsigned", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Participant: "Alice"})
		s, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Validate(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
