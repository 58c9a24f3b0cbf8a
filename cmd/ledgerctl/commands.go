package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

func newParticipantsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "participants",
		Short: "List the ledger's participants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().ListParticipants(ctx, connect.NewRequest(&api.ListParticipantsRequest{}))
			if err != nil {
				return err
			}
			for _, p := range resp.Msg.Participants {
				fmt.Fprintln(opts.out, p)
			}
			return nil
		},
	}
}

func newAddCmd(opts *options) *cobra.Command {
	var (
		description string
		amount      string
		payer       string
		shares      []string
		even        bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an expense",
		Long: `Add an expense paid by one participant.

Every participant needs a share, given as --split Name=amount. With --even
the server divides the amount instead.`,
		Example: `  ledgerctl add --desc Dinner --amount 30 --payer Alice --even
  ledgerctl add --desc Taxi --amount 15 --payer Bob --split Alice=0 --split Bob=5 --split Charlie=10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()
			client := opts.ledgerClient()

			req := &api.AddExpenseRequest{
				Description: description,
				Payer:       payer,
			}
			if amount != "" {
				d, err := decimal.NewFromString(amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", amount, err)
				}
				req.Amount = decimal.NewNullDecimal(d)
			}

			switch {
			case even && len(shares) > 0:
				return errors.New("--even and --split cannot be combined")
			case even:
				resp, err := client.CalculateEvenSplit(ctx, connect.NewRequest(&api.CalculateEvenSplitRequest{Amount: req.Amount}))
				if err != nil {
					return err
				}
				req.Split = make(map[string]decimal.NullDecimal, len(resp.Msg.Split))
				for _, s := range resp.Msg.Split {
					req.Split[s.Participant] = decimal.NewNullDecimal(s.Amount)
				}
			case len(shares) > 0:
				split, err := parseShares(shares)
				if err != nil {
					return err
				}
				req.Split = split
			}

			resp, err := client.AddExpense(ctx, connect.NewRequest(req))
			if err != nil {
				if fields := apiconnect.FieldErrors(err); len(fields) > 0 {
					for _, f := range fields {
						fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", f.Field, f.Message)
					}
					return errors.New("expense rejected")
				}
				return err
			}

			e := resp.Msg.Expense
			fmt.Fprintf(opts.out, "Added expense %d: %s %s paid by %s\n",
				e.ID, e.Description, e.Amount.StringFixed(2), e.Payer)
			printBalances(opts, resp.Msg.Balances)
			return nil
		},
	}

	cmd.Flags().StringVarP(&description, "desc", "d", "", "Description")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "Total amount")
	cmd.Flags().StringVarP(&payer, "payer", "p", "", "Participant who paid")
	cmd.Flags().StringArrayVarP(&shares, "split", "s", nil, "Share as Name=amount (repeatable)")
	cmd.Flags().BoolVar(&even, "even", false, "Split the amount evenly")
	return cmd
}

// parseShares reads Name=amount pairs.
func parseShares(pairs []string) (map[string]decimal.NullDecimal, error) {
	split := make(map[string]decimal.NullDecimal, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid share %q: want Name=amount", pair)
		}
		d, err := decimal.NewFromString(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid share %q: %w", pair, err)
		}
		if _, dup := split[name]; dup {
			return nil, fmt.Errorf("share for %s given twice", name)
		}
		split[name] = decimal.NewNullDecimal(d)
	}
	return split, nil
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List expenses in the order they were added",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().ListExpenses(ctx, connect.NewRequest(&api.ListExpensesRequest{}))
			if err != nil {
				return err
			}
			if len(resp.Msg.Expenses) == 0 {
				fmt.Fprintln(opts.out, "No expenses yet.")
				return nil
			}

			w := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tDESCRIPTION\tAMOUNT\tPAYER\tSPLIT\t")
			for _, e := range resp.Msg.Expenses {
				marker := ""
				if resp.Msg.Pending != nil && resp.Msg.Pending.ExpenseID == e.ID {
					marker = "(pending delete)"
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Date.Local().Format("2006-01-02"), e.Description,
					e.Amount.StringFixed(2), e.Payer, formatShares(e.Split), marker)
			}
			return w.Flush()
		},
	}
}

func formatShares(shares []api.Share) string {
	parts := make([]string, len(shares))
	for i, s := range shares {
		parts[i] = s.Participant + "=" + s.Amount.StringFixed(2)
	}
	return strings.Join(parts, " ")
}

func newBalancesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "balances",
		Short: "Show net balances and suggested settle-up transfers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{}))
			if err != nil {
				return err
			}
			printBalances(opts, resp.Msg.Balances)

			if len(resp.Msg.Transfers) == 0 {
				fmt.Fprintln(opts.out, "All settled up.")
				return nil
			}
			fmt.Fprintln(opts.out, "To settle up:")
			for _, t := range resp.Msg.Transfers {
				fmt.Fprintf(opts.out, "  %s pays %s %s\n", t.From, t.To, t.Amount.StringFixed(2))
			}
			return nil
		},
	}
}

func printBalances(opts *options, balances []api.MemberBalance) {
	w := tabwriter.NewWriter(opts.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "PARTICIPANT\tPAID\tOWED\tNET\t")
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			b.Participant, b.Paid.StringFixed(2), b.Owed.StringFixed(2), b.Net.StringFixed(2))
	}
	w.Flush()
}

func newSplitCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "split AMOUNT",
		Short: "Preview an even split of an amount",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := decimal.NewFromString(args[0])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[0], err)
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().CalculateEvenSplit(ctx, connect.NewRequest(&api.CalculateEvenSplitRequest{
				Amount: decimal.NewNullDecimal(d),
			}))
			if err != nil {
				return err
			}
			for _, s := range resp.Msg.Split {
				fmt.Fprintf(opts.out, "%s\t%s\n", s.Participant, s.Amount.StringFixed(2))
			}
			return nil
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Request deletion of an expense; repeat to confirm",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid expense id %q", args[0])
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().RequestDelete(ctx, connect.NewRequest(&api.RequestDeleteRequest{ExpenseID: id}))
			if err != nil {
				return err
			}

			e := resp.Msg.Expense
			if resp.Msg.Status == api.DeleteStatusRemoved {
				fmt.Fprintf(opts.out, "%s: %d %s\n", resp.Msg.Notice, e.ID, e.Description)
				return nil
			}
			fmt.Fprintf(opts.out, "Delete %d %s? Run the same command again", e.ID, e.Description)
			if resp.Msg.ExpiresAt != nil {
				fmt.Fprintf(opts.out, " before %s", resp.Msg.ExpiresAt.Local().Format("15:04:05"))
			}
			fmt.Fprintln(opts.out, " to confirm.")
			return nil
		},
	}
}

func newCancelCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a pending delete",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.ledgerClient().CancelDelete(ctx, connect.NewRequest(&api.CancelDeleteRequest{}))
			if err != nil {
				return err
			}
			if resp.Msg.Cancelled {
				fmt.Fprintln(opts.out, "Delete cancelled.")
			} else {
				fmt.Fprintln(opts.out, "Nothing pending.")
			}
			return nil
		},
	}
}

func newLoginCmd(opts *options) *cobra.Command {
	var passphrase string

	cmd := &cobra.Command{
		Use:   "login PARTICIPANT",
		Short: "Log in and print a token for --token or LEDGER_TOKEN",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if passphrase == "" {
				passphrase = envOr("LEDGER_PASSPHRASE", "")
			}
			if passphrase == "" {
				return errors.New("passphrase required (--passphrase or LEDGER_PASSPHRASE)")
			}

			ctx, cancel := opts.context(cmd)
			defer cancel()

			resp, err := opts.authClient().Login(ctx, connect.NewRequest(&api.LoginRequest{
				Participant: args[0],
				Passphrase:  passphrase,
			}))
			if err != nil {
				return err
			}
			fmt.Fprintln(opts.out, resp.Msg.Token)
			fmt.Fprintf(cmd.ErrOrStderr(), "Token expires %s\n", resp.Msg.ExpiresAt.Local().Format("2006-01-02 15:04"))
			return nil
		},
	}
	cmd.Flags().StringVar(&passphrase, "passphrase", "", "Household passphrase (or set LEDGER_PASSPHRASE)")
	return cmd
}
