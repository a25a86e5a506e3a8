package test

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/adapter/directory"
	"github.com/payneu/gateway/internal/domain/model"
)

// DirectoryClientStub simulates the invoice directory backend.
type DirectoryClientStub struct {
	InvoiceFn       func(context.Context, int64) (*model.Invoice, error)
	InvoicesFn      func(context.Context) ([]model.Invoice, error)
	CreateInvoiceFn func(context.Context, directory.CreateInvoice) (*model.Invoice, error)
	EligibilityFn   func(context.Context, string, int64) (*model.Eligibility, error)
	SendStableFn    func(context.Context, string, int64) (*directory.SettlementReceipt, error)
	ConvertFn       func(context.Context, string, int64, string) (*directory.SettlementReceipt, error)
	TokensFn        func(context.Context) ([]model.Token, error)
	RegisterTokenFn func(context.Context, directory.CreateToken) error
	MintFn          func(context.Context, string, float64, string) error
}

// Invoice returns a default open invoice unless overridden.
func (s DirectoryClientStub) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	if s.InvoiceFn != nil {
		return s.InvoiceFn(ctx, id)
	}
	return &model.Invoice{ID: id, Amount: 100, TokenID: model.TokenMUSD, Status: model.InvoiceStatusOpen}, nil
}

// Invoices returns configured invoice list.
func (s DirectoryClientStub) Invoices(ctx context.Context) ([]model.Invoice, error) {
	if s.InvoicesFn != nil {
		return s.InvoicesFn(ctx)
	}
	return []model.Invoice{{ID: 1, Status: model.InvoiceStatusOpen}}, nil
}

// CreateInvoice echoes the request unless overridden.
func (s DirectoryClientStub) CreateInvoice(ctx context.Context, req directory.CreateInvoice) (*model.Invoice, error) {
	if s.CreateInvoiceFn != nil {
		return s.CreateInvoiceFn(ctx, req)
	}
	return &model.Invoice{ID: 1, Description: req.Details, TokenID: model.TokenID(req.TokenID), Amount: req.Amount, Status: model.InvoiceStatusOpen}, nil
}

// PayerEligibility reports a usable invoice token unless overridden.
func (s DirectoryClientStub) PayerEligibility(ctx context.Context, address string, invoiceID int64) (*model.Eligibility, error) {
	if s.EligibilityFn != nil {
		return s.EligibilityFn(ctx, address, invoiceID)
	}
	return &model.Eligibility{InvoiceTokenUsable: true, Status: model.InvoiceStatusOpen}, nil
}

// SendStablePayment acknowledges settlement unless overridden.
func (s DirectoryClientStub) SendStablePayment(ctx context.Context, payer string, invoiceID int64) (*directory.SettlementReceipt, error) {
	if s.SendStableFn != nil {
		return s.SendStableFn(ctx, payer, invoiceID)
	}
	return &directory.SettlementReceipt{Status: "paid"}, nil
}

// ConvertThenSendStable acknowledges fallback settlement unless overridden.
func (s DirectoryClientStub) ConvertThenSendStable(ctx context.Context, payer string, invoiceID int64, assetAddress string) (*directory.SettlementReceipt, error) {
	if s.ConvertFn != nil {
		return s.ConvertFn(ctx, payer, invoiceID, assetAddress)
	}
	return &directory.SettlementReceipt{Status: "paid"}, nil
}

// Tokens returns configured accepted tokens.
func (s DirectoryClientStub) Tokens(ctx context.Context) ([]model.Token, error) {
	if s.TokensFn != nil {
		return s.TokensFn(ctx)
	}
	return []model.Token{{ID: 1, Symbol: "mUSD", Name: "Mock USD"}}, nil
}

// RegisterToken executes configured registration handler.
func (s DirectoryClientStub) RegisterToken(ctx context.Context, req directory.CreateToken) error {
	if s.RegisterTokenFn != nil {
		return s.RegisterTokenFn(ctx, req)
	}
	return nil
}

// Mint executes configured faucet handler.
func (s DirectoryClientStub) Mint(ctx context.Context, to string, amount float64, tokenAddress string) error {
	if s.MintFn != nil {
		return s.MintFn(ctx, to, amount, tokenAddress)
	}
	return nil
}

// ChainGatewayStub simulates the chain gateway for facade and DI tests.
type ChainGatewayStub struct {
	Account         common.Address
	ApproveFn       func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error)
	ConfirmationsFn func(context.Context, common.Hash) (uint64, error)
	PingErr         error
}

// Address returns the configured gateway account.
func (s ChainGatewayStub) Address() common.Address {
	if s.Account == (common.Address{}) {
		return common.HexToAddress("0x1111111111111111111111111111111111111111")
	}
	return s.Account
}

// ApproveSpend returns a deterministic tx hash unless overridden.
func (s ChainGatewayStub) ApproveSpend(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	if s.ApproveFn != nil {
		return s.ApproveFn(ctx, token, spender, amount)
	}
	return common.HexToHash("0xabc"), nil
}

// Confirmations reports the configured depth.
func (s ChainGatewayStub) Confirmations(ctx context.Context, tx common.Hash) (uint64, error) {
	if s.ConfirmationsFn != nil {
		return s.ConfirmationsFn(ctx, tx)
	}
	return 2, nil
}

// Ping reports configured reachability.
func (s ChainGatewayStub) Ping(context.Context) error {
	return s.PingErr
}
