package app

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/domain/model"
	"github.com/payneu/gateway/internal/usecase"
)

type ChainProvider interface {
	Confirmations(ctx context.Context, tx common.Hash) (uint64, error)
}

type GatewayFacade struct {
	auth     *usecase.AuthUseCase
	invoices *usecase.InvoiceUseCase
	tokens   *usecase.TokenUseCase
	payments *usecase.PaymentUseCase
	chain    ChainProvider
}

func NewGatewayFacade(auth *usecase.AuthUseCase, invoices *usecase.InvoiceUseCase, tokens *usecase.TokenUseCase, payments *usecase.PaymentUseCase, chain ChainProvider) *GatewayFacade {
	return &GatewayFacade{auth: auth, invoices: invoices, tokens: tokens, payments: payments, chain: chain}
}

func (f *GatewayFacade) Register(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Register(ctx, login, password)
	return token, err
}

func (f *GatewayFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *GatewayFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *GatewayFacade) WalletAddress() string {
	return f.payments.WalletAddress()
}

func (f *GatewayFacade) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	return f.invoices.Invoice(ctx, id)
}

func (f *GatewayFacade) Invoices(ctx context.Context) ([]model.Invoice, error) {
	return f.invoices.List(ctx)
}

func (f *GatewayFacade) CreateInvoice(ctx context.Context, details string, merchantID, tokenID int64, amount float64) (*model.Invoice, error) {
	return f.invoices.Create(ctx, details, merchantID, tokenID, amount)
}

func (f *GatewayFacade) Eligibility(ctx context.Context, invoiceID int64, address string) (*model.Invoice, *model.Eligibility, model.PaymentPath, error) {
	return f.payments.Eligibility(ctx, invoiceID, address)
}

func (f *GatewayFacade) InitiatePayment(ctx context.Context, invoiceID int64, payer string) (*model.PaymentAttempt, error) {
	return f.payments.Initiate(ctx, invoiceID, payer)
}

func (f *GatewayFacade) PaymentAttempt(invoiceID int64) (model.PaymentAttempt, bool) {
	return f.payments.Attempt(invoiceID)
}

func (f *GatewayFacade) RecentPayments(ctx context.Context, limit int) ([]model.PaymentAttempt, error) {
	return f.payments.RecentAttempts(ctx, limit)
}

func (f *GatewayFacade) Tokens(ctx context.Context) ([]model.Token, error) {
	return f.tokens.List(ctx)
}

func (f *GatewayFacade) RegisterToken(ctx context.Context, address, name string) error {
	return f.tokens.Register(ctx, address, name)
}

func (f *GatewayFacade) Mint(ctx context.Context, to string, amount float64, tokenAddress string) error {
	return f.tokens.Mint(ctx, to, amount, tokenAddress)
}

func (f *GatewayFacade) AttemptsAwaitingConfirmation(limit int) []model.PaymentAttempt {
	return f.payments.AttemptsAwaitingConfirmation(limit)
}

func (f *GatewayFacade) CheckConfirmations(ctx context.Context, txHash string) (uint64, error) {
	return f.chain.Confirmations(ctx, common.HexToHash(txHash))
}

func (f *GatewayFacade) ObserveConfirmation(ctx context.Context, invoiceID int64, count uint64) error {
	return f.payments.ObserveConfirmation(ctx, invoiceID, count)
}

func (f *GatewayFacade) AbortAttempt(ctx context.Context, invoiceID int64, cause error) {
	f.payments.Abort(ctx, invoiceID, cause)
}
