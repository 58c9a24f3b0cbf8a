package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	participants := models.MustParticipantSet("Alice", "Bob")

	valid, _, err := jwtManager.Generate("Alice")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	departed, _, err := jwtManager.Generate("Dave")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name     string
		header   string
		wantCode connect.Code
		wantWho  models.Participant
	}{
		{name: "valid token", header: "Bearer " + valid, wantWho: "Alice"},
		{name: "missing header", header: "", wantCode: connect.CodeUnauthenticated},
		{name: "wrong scheme", header: "Basic " + valid, wantCode: connect.CodeUnauthenticated},
		{name: "empty token", header: "Bearer ", wantCode: connect.CodeUnauthenticated},
		{name: "garbage token", header: "Bearer abc.def.ghi", wantCode: connect.CodeUnauthenticated},
		{name: "participant not in ledger", header: "Bearer " + departed, wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen models.Participant
			next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
				seen = GetParticipant(ctx)
				return connect.NewResponse(&api.ListParticipantsResponse{}), nil
			}

			req := connect.NewRequest(&api.ListParticipantsRequest{})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}

			_, err := RequireAuth(jwtManager, participants)(next)(context.Background(), req)
			if tt.wantCode != 0 {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %v, got %v", tt.wantCode, err)
				}
				if seen != "" {
					t.Error("handler must not run for a rejected call")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if seen != tt.wantWho {
				t.Errorf("expected participant %q, got %q", tt.wantWho, seen)
			}
		})
	}
}

func TestLoggingInterceptorSetsRequestID(t *testing.T) {
	var requestID string
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		requestID = GetRequestID(ctx)
		return connect.NewResponse(&api.ListParticipantsResponse{}), nil
	}

	resp, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&api.ListParticipantsRequest{}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requestID == "" {
		t.Fatal("expected a request id in the handler context")
	}
	if got := resp.Header().Get(RequestIDHeader); got != requestID {
		t.Errorf("expected response header %q, got %q", requestID, got)
	}
}

func TestLoggingInterceptorTagsErrors(t *testing.T) {
	next := func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
		return nil, connect.NewError(connect.CodeNotFound, errors.New("expense not found"))
	}

	_, err := LoggingInterceptor()(next)(context.Background(), connect.NewRequest(&api.ListParticipantsRequest{}))
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected a connect error, got %v", err)
	}
	if connectErr.Meta().Get(RequestIDHeader) == "" {
		t.Error("expected request id in error metadata")
	}
}
