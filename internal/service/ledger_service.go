package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/middleware"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/session"
	"github.com/mmynk/splitledger/pkg/api"
	"github.com/mmynk/splitledger/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService on top of a session.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	session *session.Session
}

// NewLedgerService creates a LedgerService. The caller owns the session.
func NewLedgerService(sess *session.Session) *LedgerService {
	return &LedgerService{session: sess}
}

func (s *LedgerService) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return connect.NewResponse(&api.ListParticipantsResponse{
		Participants: s.session.Participants().Strings(),
	}), nil
}

// AddExpense validates and admits an expense. Validation failures come back
// as InvalidArgument with one field error per problem.
func (s *LedgerService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	slog.Info("AddExpense request",
		"description", req.Msg.Description,
		"payer", req.Msg.Payer,
		"participant", middleware.GetParticipant(ctx),
	)

	draft := ledger.Draft{
		Description: req.Msg.Description,
		Amount:      req.Msg.Amount,
		Payer:       models.Participant(strings.TrimSpace(req.Msg.Payer)),
	}
	if req.Msg.Split != nil {
		draft.Split = make(map[models.Participant]decimal.Decimal, len(req.Msg.Split))
		for name, share := range req.Msg.Split {
			// A null share counts as not entered.
			if !share.Valid {
				continue
			}
			draft.Split[models.Participant(name)] = share.Decimal
		}
	}

	expense, summary, err := s.session.AddExpense(ctx, draft)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{
		Expense:  toAPIExpense(s.session.Participants(), expense),
		Balances: toAPIBalances(summary),
	}), nil
}

func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	view, err := s.session.Snapshot(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	participants := s.session.Participants()
	resp := &api.ListExpensesResponse{
		Expenses: make([]api.Expense, 0, len(view.Expenses)),
	}
	for _, e := range view.Expenses {
		resp.Expenses = append(resp.Expenses, toAPIExpense(participants, e))
	}
	if view.Pending != nil {
		resp.Pending = &api.PendingDelete{
			ExpenseID: view.Pending.ExpenseID,
			ExpiresAt: view.Pending.ExpiresAt,
		}
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	view, err := s.session.Snapshot(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}

	transfers := make([]api.Transfer, 0, len(view.Transfers))
	for _, t := range view.Transfers {
		transfers = append(transfers, api.Transfer{
			From:   string(t.From),
			To:     string(t.To),
			Amount: t.Amount,
		})
	}
	return connect.NewResponse(&api.GetBalancesResponse{
		Balances:  toAPIBalances(view.Summary),
		Transfers: transfers,
	}), nil
}

// CalculateEvenSplit returns the even split of an amount. It refuses with
// FailedPrecondition when the amount is missing or not positive.
func (s *LedgerService) CalculateEvenSplit(ctx context.Context, req *connect.Request[api.CalculateEvenSplitRequest]) (*connect.Response[api.CalculateEvenSplitResponse], error) {
	split, err := s.session.EvenSplit(ctx, req.Msg.Amount)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CalculateEvenSplitResponse{
		Split: toAPIShares(s.session.Participants(), split),
	}), nil
}

// RequestDelete arms or confirms the removal of an expense.
func (s *LedgerService) RequestDelete(ctx context.Context, req *connect.Request[api.RequestDeleteRequest]) (*connect.Response[api.RequestDeleteResponse], error) {
	slog.Info("RequestDelete request",
		"expense_id", req.Msg.ExpenseID,
		"participant", middleware.GetParticipant(ctx),
	)

	out, err := s.session.RequestDelete(ctx, req.Msg.ExpenseID)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &api.RequestDeleteResponse{
		Expense: toAPIExpense(s.session.Participants(), out.Expense),
	}
	switch out.Phase {
	case ledger.Removed:
		resp.Status = api.DeleteStatusRemoved
		resp.Notice = out.Notice
	default:
		resp.Status = api.DeleteStatusPending
		expiresAt := out.Slot.ExpiresAt
		resp.ExpiresAt = &expiresAt
	}
	return connect.NewResponse(resp), nil
}

func (s *LedgerService) CancelDelete(ctx context.Context, req *connect.Request[api.CancelDeleteRequest]) (*connect.Response[api.CancelDeleteResponse], error) {
	cancelled, err := s.session.CancelDelete(ctx)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&api.CancelDeleteResponse{Cancelled: cancelled}), nil
}

// toConnectError maps ledger and session errors to Connect codes.
func toConnectError(err error) error {
	var validation ledger.ValidationErrors
	switch {
	case errors.As(err, &validation):
		fields := make([]apiconnect.FieldError, len(validation))
		for i, fe := range validation {
			fields[i] = apiconnect.FieldError{Field: fe.Field, Message: fe.Message}
		}
		return apiconnect.WithFieldErrors(connect.NewError(connect.CodeInvalidArgument, err), fields)
	case errors.Is(err, calculator.ErrEvenSplitNeedsAmount), errors.Is(err, calculator.ErrNoParticipants):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	case errors.Is(err, ledger.ErrExpenseNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, session.ErrClosed):
		return connect.NewError(connect.CodeUnavailable, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	default:
		slog.Error("Ledger operation failed", "error", err)
		return connect.NewError(connect.CodeInternal, err)
	}
}

func toAPIExpense(participants models.ParticipantSet, e models.Expense) api.Expense {
	return api.Expense{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		Payer:       string(e.Payer),
		Date:        e.Date,
		Split:       toAPIShares(participants, e.Split),
	}
}

// toAPIShares lists shares in participant order, skipping absent entries.
func toAPIShares(participants models.ParticipantSet, split map[models.Participant]decimal.Decimal) []api.Share {
	shares := make([]api.Share, 0, len(split))
	for _, p := range participants.Members() {
		amount, ok := split[p]
		if !ok {
			continue
		}
		shares = append(shares, api.Share{Participant: string(p), Amount: amount})
	}
	return shares
}

func toAPIBalances(summary []calculator.MemberBalance) []api.MemberBalance {
	out := make([]api.MemberBalance, len(summary))
	for i, b := range summary {
		out[i] = api.MemberBalance{
			Participant: string(b.Participant),
			Net:         b.Net,
			Paid:        b.Paid,
			Owed:        b.Owed,
		}
	}
	return out
}
