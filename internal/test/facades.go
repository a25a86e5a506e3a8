package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/domain/model"
)

// InvoiceFacadeStub provides controllable behaviour for invoice endpoints.
type InvoiceFacadeStub struct {
	InvoiceFn  func(context.Context, int64) (*model.Invoice, error)
	InvoicesFn func(context.Context) ([]model.Invoice, error)
	CreateFn   func(context.Context, string, int64, int64, float64) (*model.Invoice, error)
}

// Invoice delegates to the override or returns a default open invoice.
func (s InvoiceFacadeStub) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	if s.InvoiceFn != nil {
		return s.InvoiceFn(ctx, id)
	}
	return &model.Invoice{ID: id, Amount: 100, TokenID: model.TokenMUSD, Status: model.InvoiceStatusOpen}, nil
}

// Invoices returns predefined invoices.
func (s InvoiceFacadeStub) Invoices(ctx context.Context) ([]model.Invoice, error) {
	if s.InvoicesFn != nil {
		return s.InvoicesFn(ctx)
	}
	return []model.Invoice{{ID: 1, Status: model.InvoiceStatusOpen}}, nil
}

// CreateInvoice delegates to the override or echoes a created invoice.
func (s InvoiceFacadeStub) CreateInvoice(ctx context.Context, details string, merchantID, tokenID int64, amount float64) (*model.Invoice, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, details, merchantID, tokenID, amount)
	}
	return &model.Invoice{ID: 1, Description: details, TokenID: model.TokenID(tokenID), Amount: amount, Status: model.InvoiceStatusOpen}, nil
}

// PaymentFacadeStub simulates payment orchestration for HTTP layer tests.
type PaymentFacadeStub struct {
	WalletFn      func() string
	EligibilityFn func(context.Context, int64, string) (*model.Invoice, *model.Eligibility, model.PaymentPath, error)
	InitiateFn    func(context.Context, int64, string) (*model.PaymentAttempt, error)
	AttemptFn     func(int64) (model.PaymentAttempt, bool)
	RecentFn      func(context.Context, int) ([]model.PaymentAttempt, error)
}

// WalletAddress returns configured or default gateway account.
func (s PaymentFacadeStub) WalletAddress() string {
	if s.WalletFn != nil {
		return s.WalletFn()
	}
	return "0x1111111111111111111111111111111111111111"
}

// Eligibility delegates to the override or reports a payable invoice.
func (s PaymentFacadeStub) Eligibility(ctx context.Context, invoiceID int64, address string) (*model.Invoice, *model.Eligibility, model.PaymentPath, error) {
	if s.EligibilityFn != nil {
		return s.EligibilityFn(ctx, invoiceID, address)
	}
	invoice := &model.Invoice{ID: invoiceID, Amount: 100, TokenID: model.TokenMUSD, Status: model.InvoiceStatusOpen}
	eligibility := &model.Eligibility{InvoiceTokenUsable: true, Status: model.InvoiceStatusOpen}
	return invoice, eligibility, model.PathStable, nil
}

// InitiatePayment delegates to the override or returns a confirming attempt.
func (s PaymentFacadeStub) InitiatePayment(ctx context.Context, invoiceID int64, payer string) (*model.PaymentAttempt, error) {
	if s.InitiateFn != nil {
		return s.InitiateFn(ctx, invoiceID, payer)
	}
	return &model.PaymentAttempt{
		ID:        "attempt-1",
		InvoiceID: invoiceID,
		Payer:     payer,
		Path:      model.PathStable,
		State:     model.AttemptStateApprovalConfirming,
		StartedAt: time.Unix(0, 0),
		UpdatedAt: time.Unix(0, 0),
	}, nil
}

// PaymentAttempt returns configured attempt state.
func (s PaymentFacadeStub) PaymentAttempt(invoiceID int64) (model.PaymentAttempt, bool) {
	if s.AttemptFn != nil {
		return s.AttemptFn(invoiceID)
	}
	return model.PaymentAttempt{}, false
}

// RecentPayments returns configured journal history.
func (s PaymentFacadeStub) RecentPayments(ctx context.Context, limit int) ([]model.PaymentAttempt, error) {
	if s.RecentFn != nil {
		return s.RecentFn(ctx, limit)
	}
	return nil, nil
}

// TokenFacadeStub simulates token administration operations.
type TokenFacadeStub struct {
	TokensFn   func(context.Context) ([]model.Token, error)
	RegisterFn func(context.Context, string, string) error
	MintFn     func(context.Context, string, float64, string) error
}

// Tokens returns predefined accepted tokens.
func (s TokenFacadeStub) Tokens(ctx context.Context) ([]model.Token, error) {
	if s.TokensFn != nil {
		return s.TokensFn(ctx)
	}
	return []model.Token{{ID: 1, Symbol: "mUSD", Name: "Mock USD"}}, nil
}

// RegisterToken executes configured registration handler.
func (s TokenFacadeStub) RegisterToken(ctx context.Context, address, name string) error {
	if s.RegisterFn != nil {
		return s.RegisterFn(ctx, address, name)
	}
	return nil
}

// Mint executes configured faucet handler.
func (s TokenFacadeStub) Mint(ctx context.Context, to string, amount float64, tokenAddress string) error {
	if s.MintFn != nil {
		return s.MintFn(ctx, to, amount, tokenAddress)
	}
	return nil
}

// ConfirmationCall stores information about ObserveConfirmation invocations.
type ConfirmationCall struct {
	InvoiceID int64
	Count     uint64
}

// WatcherFacadeStub mimics watcher interactions with the payment facade.
type WatcherFacadeStub struct {
	Pending          [][]model.PaymentAttempt
	PendingFn        func(int) []model.PaymentAttempt
	CheckFn          func(context.Context, string) (uint64, error)
	ObserveFn        func(context.Context, int64, uint64) error
	AbortFn          func(context.Context, int64, error)
	Observed         []ConfirmationCall
	Aborted          []int64
	mu               sync.Mutex
	pendingCallCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WatcherFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WatcherFacadeStub) Unlock() { s.mu.Unlock() }

// AttemptsAwaitingConfirmation returns batches from configured queue.
func (s *WatcherFacadeStub) AttemptsAwaitingConfirmation(limit int) []model.PaymentAttempt {
	if s.PendingFn != nil {
		return s.PendingFn(limit)
	}
	call := atomic.AddInt32(&s.pendingCallCount, 1)
	if int(call) <= len(s.Pending) {
		return s.Pending[call-1]
	}
	time.Sleep(10 * time.Millisecond)
	return nil
}

// CheckConfirmations returns configured confirmation depth.
func (s *WatcherFacadeStub) CheckConfirmations(ctx context.Context, txHash string) (uint64, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, txHash)
	}
	return 2, nil
}

// ObserveConfirmation records observation requests.
func (s *WatcherFacadeStub) ObserveConfirmation(ctx context.Context, invoiceID int64, count uint64) error {
	if s.ObserveFn != nil {
		return s.ObserveFn(ctx, invoiceID, count)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Observed = append(s.Observed, ConfirmationCall{InvoiceID: invoiceID, Count: count})
	return nil
}

// AbortAttempt records abort requests.
func (s *WatcherFacadeStub) AbortAttempt(ctx context.Context, invoiceID int64, cause error) {
	if s.AbortFn != nil {
		s.AbortFn(ctx, invoiceID, cause)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Aborted = append(s.Aborted, invoiceID)
}

// ChainProviderStub reports confirmation depth for lifecycle and facade tests.
type ChainProviderStub struct {
	ConfirmationsFn func(context.Context, common.Hash) (uint64, error)
	Depth           uint64
	Err             error
}

// Confirmations returns configured depth or error.
func (s ChainProviderStub) Confirmations(ctx context.Context, tx common.Hash) (uint64, error) {
	if s.ConfirmationsFn != nil {
		return s.ConfirmationsFn(ctx, tx)
	}
	if s.Err != nil {
		return 0, s.Err
	}
	return s.Depth, nil
}
