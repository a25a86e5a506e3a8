package handlers

import (
	"context"

	"github.com/payneu/gateway/internal/domain/model"
)

// AuthFacade describes authentication capabilities required by handlers.
type AuthFacade interface {
	Register(ctx context.Context, login, password string) (string, error)
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// InvoiceFacade encapsulates invoice operations exposed via HTTP.
type InvoiceFacade interface {
	Invoice(ctx context.Context, id int64) (*model.Invoice, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	CreateInvoice(ctx context.Context, details string, merchantID, tokenID int64, amount float64) (*model.Invoice, error)
}

// PaymentFacade provides payment orchestration operations.
type PaymentFacade interface {
	WalletAddress() string
	Eligibility(ctx context.Context, invoiceID int64, address string) (*model.Invoice, *model.Eligibility, model.PaymentPath, error)
	InitiatePayment(ctx context.Context, invoiceID int64, payer string) (*model.PaymentAttempt, error)
	PaymentAttempt(invoiceID int64) (model.PaymentAttempt, bool)
	RecentPayments(ctx context.Context, limit int) ([]model.PaymentAttempt, error)
}

// TokenFacade provides accepted-token administration and the faucet.
type TokenFacade interface {
	Tokens(ctx context.Context) ([]model.Token, error)
	RegisterToken(ctx context.Context, address, name string) error
	Mint(ctx context.Context, to string, amount float64, tokenAddress string) error
}

// GatewayFacade aggregates the full set of operations used across handlers.
type GatewayFacade interface {
	AuthFacade
	InvoiceFacade
	PaymentFacade
	TokenFacade
}
