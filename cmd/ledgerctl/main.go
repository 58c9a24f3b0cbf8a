// Command ledgerctl talks to a splitledger server.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// options are the persistent flags shared by every subcommand.
type options struct {
	addr    string
	token   string
	timeout time.Duration
	out     io.Writer
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{out: out}

	root := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Record and settle shared expenses",
		Long: `ledgerctl is a client for the splitledger server.

Expenses are split between a fixed set of participants. Deleting an expense
takes two requests within the server's confirmation window.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)

	root.PersistentFlags().StringVar(&opts.addr, "addr", envOr("LEDGER_URL", "http://localhost:8080"), "Server base URL (or set LEDGER_URL)")
	root.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("LEDGER_TOKEN"), "Bearer token from login (or set LEDGER_TOKEN)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(
		newParticipantsCmd(opts),
		newAddCmd(opts),
		newListCmd(opts),
		newBalancesCmd(opts),
		newSplitCmd(opts),
		newDeleteCmd(opts),
		newCancelCmd(opts),
		newLoginCmd(opts),
	)
	return root
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func (o *options) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), o.timeout)
}

func (o *options) ledgerClient() apiconnect.LedgerServiceClient {
	return apiconnect.NewLedgerServiceClient(http.DefaultClient, o.addr,
		connect.WithInterceptors(bearerToken(o.token)))
}

func (o *options) authClient() apiconnect.AuthServiceClient {
	return apiconnect.NewAuthServiceClient(http.DefaultClient, o.addr)
}

// bearerToken attaches the token to outgoing requests when one is set.
func bearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token != "" && req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}
