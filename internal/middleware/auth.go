package middleware

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
)

type contextKey string

const (
	// ParticipantKey holds the authenticated participant.
	ParticipantKey contextKey = "participant"
	// RequestIDKey holds the id assigned by LoggingInterceptor.
	RequestIDKey contextKey = "request_id"

	callKey contextKey = "call"
)

// call lets RequireAuth report the participant back to LoggingInterceptor,
// which wraps it.
type call struct {
	participant models.Participant
}

// GetParticipant returns the authenticated participant, or "" when the
// request carried no valid token.
func GetParticipant(ctx context.Context) models.Participant {
	p, _ := ctx.Value(ParticipantKey).(models.Participant)
	return p
}

// GetRequestID returns the request id, or "" outside an intercepted call.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// RequireAuth rejects calls without a valid bearer token. The token's
// participant must still be part of the ledger.
func RequireAuth(jwtManager *auth.JWTManager, participants models.ParticipantSet) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			authHeader := req.Header().Get("Authorization")
			if authHeader == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
			}

			scheme, tokenString, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != "Bearer" || tokenString == "" {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			claims, err := jwtManager.Validate(tokenString)
			if err != nil {
				return nil, connect.NewError(connect.CodeUnauthenticated, err)
			}
			participant := models.Participant(claims.Participant)
			if !participants.Contains(participant) {
				return nil, connect.NewError(connect.CodeUnauthenticated, auth.ErrInvalidToken)
			}

			if c, ok := ctx.Value(callKey).(*call); ok {
				c.participant = participant
			}
			ctx = context.WithValue(ctx, ParticipantKey, participant)
			return next(ctx, req)
		}
	}
}
