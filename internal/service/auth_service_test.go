package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/auth"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/session"
	"github.com/mmynk/splitledger/internal/storage/memory"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// setupAuthServer serves both services, with the ledger behind RequireAuth.
func setupAuthServer(t *testing.T) (apiconnect.AuthServiceClient, apiconnect.LedgerServiceClient) {
	t.Helper()

	participants := models.MustParticipantSet("Alice", "Bob")
	hash, err := bcrypt.GenerateFromPassword([]byte("open sesame"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash passphrase: %v", err)
	}
	authenticator, err := auth.NewPassphraseAuthenticator(participants, string(hash))
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	sess, err := session.Open(context.Background(), session.Options{
		Participants: participants,
		Store:        memory.New(),
	})
	if err != nil {
		t.Fatalf("failed to open session: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, logger),
		connect.WithInterceptors(middleware.LoggingInterceptor()),
	))
	mux.Handle(apiconnect.NewLedgerServiceHandler(
		NewLedgerService(sess),
		connect.WithInterceptors(middleware.LoggingInterceptor(), middleware.RequireAuth(jwtManager, participants)),
	))
	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		sess.Close()
	})

	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL)
}

func TestLogin(t *testing.T) {
	authClient, _ := setupAuthServer(t)

	tests := []struct {
		name     string
		req      *api.LoginRequest
		wantErr  bool
		wantCode connect.Code
	}{
		{name: "valid", req: &api.LoginRequest{Participant: "Alice", Passphrase: "open sesame"}},
		{name: "wrong passphrase", req: &api.LoginRequest{Participant: "Alice", Passphrase: "nope"}, wantErr: true, wantCode: connect.CodeUnauthenticated},
		{name: "unknown participant", req: &api.LoginRequest{Participant: "Eve", Passphrase: "open sesame"}, wantErr: true, wantCode: connect.CodeUnauthenticated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := authClient.Login(context.Background(), connect.NewRequest(tt.req))
			if tt.wantErr {
				if connect.CodeOf(err) != tt.wantCode {
					t.Fatalf("expected %v, got %v", tt.wantCode, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Login failed: %v", err)
			}
			if resp.Msg.Token == "" {
				t.Error("expected a token")
			}
			if !resp.Msg.ExpiresAt.After(time.Now()) {
				t.Errorf("expected expiry in the future, got %v", resp.Msg.ExpiresAt)
			}
		})
	}
}

func TestLedgerRequiresToken(t *testing.T) {
	authClient, ledgerClient := setupAuthServer(t)
	ctx := context.Background()

	_, err := ledgerClient.ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{}))
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated without a token, got %v", err)
	}

	bad := connect.NewRequest(&api.ListParticipantsRequest{})
	bad.Header().Set("Authorization", "Bearer not-a-token")
	_, err = ledgerClient.ListParticipants(ctx, bad)
	if connect.CodeOf(err) != connect.CodeUnauthenticated {
		t.Fatalf("expected Unauthenticated with a bad token, got %v", err)
	}

	login, err := authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{Participant: "Bob", Passphrase: "open sesame"}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	req := connect.NewRequest(&api.ListParticipantsRequest{})
	req.Header().Set("Authorization", "Bearer "+login.Msg.Token)
	resp, err := ledgerClient.ListParticipants(ctx, req)
	if err != nil {
		t.Fatalf("ListParticipants failed: %v", err)
	}
	if len(resp.Msg.Participants) != 2 {
		t.Errorf("expected 2 participants, got %v", resp.Msg.Participants)
	}
	if resp.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("expected a request id header")
	}
}
