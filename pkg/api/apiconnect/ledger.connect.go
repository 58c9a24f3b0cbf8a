package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/pkg/api"
)

const (
	// LedgerServiceName is the fully-qualified name of the LedgerService service.
	LedgerServiceName = "splitledger.v1.LedgerService"
	// AuthServiceName is the fully-qualified name of the AuthService service.
	AuthServiceName = "splitledger.v1.AuthService"
)

// Procedure names, as they appear in the HTTP request path.
const (
	LedgerServiceListParticipantsProcedure   = "/splitledger.v1.LedgerService/ListParticipants"
	LedgerServiceAddExpenseProcedure         = "/splitledger.v1.LedgerService/AddExpense"
	LedgerServiceListExpensesProcedure       = "/splitledger.v1.LedgerService/ListExpenses"
	LedgerServiceGetBalancesProcedure        = "/splitledger.v1.LedgerService/GetBalances"
	LedgerServiceCalculateEvenSplitProcedure = "/splitledger.v1.LedgerService/CalculateEvenSplit"
	LedgerServiceRequestDeleteProcedure      = "/splitledger.v1.LedgerService/RequestDelete"
	LedgerServiceCancelDeleteProcedure       = "/splitledger.v1.LedgerService/CancelDelete"
	AuthServiceLoginProcedure                = "/splitledger.v1.AuthService/Login"
)

// LedgerServiceClient is a client for the splitledger.v1.LedgerService service.
type LedgerServiceClient interface {
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	CalculateEvenSplit(context.Context, *connect.Request[api.CalculateEvenSplitRequest]) (*connect.Response[api.CalculateEvenSplitResponse], error)
	RequestDelete(context.Context, *connect.Request[api.RequestDeleteRequest]) (*connect.Response[api.RequestDeleteResponse], error)
	CancelDelete(context.Context, *connect.Request[api.CancelDeleteRequest]) (*connect.Response[api.CancelDeleteResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService. The JSON
// codec is installed ahead of any caller options.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &ledgerServiceClient{
		listParticipants: connect.NewClient[api.ListParticipantsRequest, api.ListParticipantsResponse](
			httpClient, baseURL+LedgerServiceListParticipantsProcedure, opts...),
		addExpense: connect.NewClient[api.AddExpenseRequest, api.AddExpenseResponse](
			httpClient, baseURL+LedgerServiceAddExpenseProcedure, opts...),
		listExpenses: connect.NewClient[api.ListExpensesRequest, api.ListExpensesResponse](
			httpClient, baseURL+LedgerServiceListExpensesProcedure, opts...),
		getBalances: connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](
			httpClient, baseURL+LedgerServiceGetBalancesProcedure, opts...),
		calculateEvenSplit: connect.NewClient[api.CalculateEvenSplitRequest, api.CalculateEvenSplitResponse](
			httpClient, baseURL+LedgerServiceCalculateEvenSplitProcedure, opts...),
		requestDelete: connect.NewClient[api.RequestDeleteRequest, api.RequestDeleteResponse](
			httpClient, baseURL+LedgerServiceRequestDeleteProcedure, opts...),
		cancelDelete: connect.NewClient[api.CancelDeleteRequest, api.CancelDeleteResponse](
			httpClient, baseURL+LedgerServiceCancelDeleteProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	listParticipants   *connect.Client[api.ListParticipantsRequest, api.ListParticipantsResponse]
	addExpense         *connect.Client[api.AddExpenseRequest, api.AddExpenseResponse]
	listExpenses       *connect.Client[api.ListExpensesRequest, api.ListExpensesResponse]
	getBalances        *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	calculateEvenSplit *connect.Client[api.CalculateEvenSplitRequest, api.CalculateEvenSplitResponse]
	requestDelete      *connect.Client[api.RequestDeleteRequest, api.RequestDeleteResponse]
	cancelDelete       *connect.Client[api.CancelDeleteRequest, api.CancelDeleteResponse]
}

func (c *ledgerServiceClient) ListParticipants(ctx context.Context, req *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return c.listParticipants.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return c.addExpense.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return c.listExpenses.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CalculateEvenSplit(ctx context.Context, req *connect.Request[api.CalculateEvenSplitRequest]) (*connect.Response[api.CalculateEvenSplitResponse], error) {
	return c.calculateEvenSplit.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) RequestDelete(ctx context.Context, req *connect.Request[api.RequestDeleteRequest]) (*connect.Response[api.RequestDeleteResponse], error) {
	return c.requestDelete.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) CancelDelete(ctx context.Context, req *connect.Request[api.CancelDeleteRequest]) (*connect.Response[api.CancelDeleteResponse], error) {
	return c.cancelDelete.CallUnary(ctx, req)
}

// LedgerServiceHandler is an implementation of the splitledger.v1.LedgerService service.
type LedgerServiceHandler interface {
	ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error)
	AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error)
	ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	CalculateEvenSplit(context.Context, *connect.Request[api.CalculateEvenSplitRequest]) (*connect.Response[api.CalculateEvenSplitResponse], error)
	RequestDelete(context.Context, *connect.Request[api.RequestDeleteRequest]) (*connect.Response[api.RequestDeleteResponse], error)
	CancelDelete(context.Context, *connect.Request[api.CancelDeleteRequest]) (*connect.Response[api.CancelDeleteResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service
// implementation. It returns the path on which to mount the handler and the
// handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	mux := http.NewServeMux()
	mux.Handle(LedgerServiceListParticipantsProcedure, connect.NewUnaryHandler(
		LedgerServiceListParticipantsProcedure, svc.ListParticipants, opts...))
	mux.Handle(LedgerServiceAddExpenseProcedure, connect.NewUnaryHandler(
		LedgerServiceAddExpenseProcedure, svc.AddExpense, opts...))
	mux.Handle(LedgerServiceListExpensesProcedure, connect.NewUnaryHandler(
		LedgerServiceListExpensesProcedure, svc.ListExpenses, opts...))
	mux.Handle(LedgerServiceGetBalancesProcedure, connect.NewUnaryHandler(
		LedgerServiceGetBalancesProcedure, svc.GetBalances, opts...))
	mux.Handle(LedgerServiceCalculateEvenSplitProcedure, connect.NewUnaryHandler(
		LedgerServiceCalculateEvenSplitProcedure, svc.CalculateEvenSplit, opts...))
	mux.Handle(LedgerServiceRequestDeleteProcedure, connect.NewUnaryHandler(
		LedgerServiceRequestDeleteProcedure, svc.RequestDelete, opts...))
	mux.Handle(LedgerServiceCancelDeleteProcedure, connect.NewUnaryHandler(
		LedgerServiceCancelDeleteProcedure, svc.CancelDelete, opts...))
	return "/" + LedgerServiceName + "/", mux
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) ListParticipants(context.Context, *connect.Request[api.ListParticipantsRequest]) (*connect.Response[api.ListParticipantsResponse], error) {
	return nil, unimplemented(LedgerServiceListParticipantsProcedure)
}

func (UnimplementedLedgerServiceHandler) AddExpense(context.Context, *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	return nil, unimplemented(LedgerServiceAddExpenseProcedure)
}

func (UnimplementedLedgerServiceHandler) ListExpenses(context.Context, *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	return nil, unimplemented(LedgerServiceListExpensesProcedure)
}

func (UnimplementedLedgerServiceHandler) GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return nil, unimplemented(LedgerServiceGetBalancesProcedure)
}

func (UnimplementedLedgerServiceHandler) CalculateEvenSplit(context.Context, *connect.Request[api.CalculateEvenSplitRequest]) (*connect.Response[api.CalculateEvenSplitResponse], error) {
	return nil, unimplemented(LedgerServiceCalculateEvenSplitProcedure)
}

func (UnimplementedLedgerServiceHandler) RequestDelete(context.Context, *connect.Request[api.RequestDeleteRequest]) (*connect.Response[api.RequestDeleteResponse], error) {
	return nil, unimplemented(LedgerServiceRequestDeleteProcedure)
}

func (UnimplementedLedgerServiceHandler) CancelDelete(context.Context, *connect.Request[api.CancelDeleteRequest]) (*connect.Response[api.CancelDeleteResponse], error) {
	return nil, unimplemented(LedgerServiceCancelDeleteProcedure)
}

// AuthServiceClient is a client for the splitledger.v1.AuthService service.
type AuthServiceClient interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

// NewAuthServiceClient constructs a client for the AuthService.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &authServiceClient{
		login: connect.NewClient[api.LoginRequest, api.LoginResponse](
			httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

type authServiceClient struct {
	login *connect.Client[api.LoginRequest, api.LoginResponse]
}

func (c *authServiceClient) Login(ctx context.Context, req *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

// AuthServiceHandler is an implementation of the splitledger.v1.AuthService service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[api.LoginRequest]) (*connect.Response[api.LoginResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler from the service implementation.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
	return AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...)
}

func unimplemented(procedure string) error {
	return connect.NewError(connect.CodeUnimplemented, errors.New(procedure+" is not implemented"))
}
