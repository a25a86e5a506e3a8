package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/adapter/directory"
	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

type stubDirectory struct {
	invoiceFn     func(context.Context, int64) (*model.Invoice, error)
	eligibilityFn func(context.Context, string, int64) (*model.Eligibility, error)
	sendStableFn  func(context.Context, string, int64) (*directory.SettlementReceipt, error)
	convertFn     func(context.Context, string, int64, string) (*directory.SettlementReceipt, error)
}

func (s stubDirectory) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	return s.invoiceFn(ctx, id)
}

func (s stubDirectory) PayerEligibility(ctx context.Context, address string, invoiceID int64) (*model.Eligibility, error) {
	return s.eligibilityFn(ctx, address, invoiceID)
}

func (s stubDirectory) SendStablePayment(ctx context.Context, payer string, invoiceID int64) (*directory.SettlementReceipt, error) {
	if s.sendStableFn == nil {
		panic("send stable not expected")
	}
	return s.sendStableFn(ctx, payer, invoiceID)
}

func (s stubDirectory) ConvertThenSendStable(ctx context.Context, payer string, invoiceID int64, assetAddress string) (*directory.SettlementReceipt, error) {
	if s.convertFn == nil {
		panic("convert not expected")
	}
	return s.convertFn(ctx, payer, invoiceID, assetAddress)
}

type stubChain struct {
	address   common.Address
	approveFn func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error)
}

func (s stubChain) Address() common.Address { return s.address }

func (s stubChain) ApproveSpend(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
	return s.approveFn(ctx, token, spender, amount)
}

type stubJournal struct {
	mu      sync.Mutex
	records []model.PaymentAttempt
	err     error
}

func (s *stubJournal) Record(_ context.Context, attempt model.PaymentAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, attempt)
	return s.err
}

func (s *stubJournal) ListRecent(context.Context, int) ([]model.PaymentAttempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.PaymentAttempt(nil), s.records...), nil
}

func (s *stubJournal) ListByInvoice(context.Context, int64) ([]model.PaymentAttempt, error) {
	return nil, nil
}

var (
	testPayer     = "0x1111111111111111111111111111111111111111"
	testAddresses = Addresses{
		PaymentContract: common.HexToAddress("0x00c8c529ad8c6Dc36934927252c69df1C003F797"),
		StableToken:     common.HexToAddress("0x35435120c2cf51f7f122f2b37bda3bbc686831de"),
		FallbackToken:   common.HexToAddress("0x8ec7d893f57b6a7c837bc93cfb4c01b80f58ba6b"),
	}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func openInvoiceDirectory(usable, fallback bool) stubDirectory {
	return stubDirectory{
		invoiceFn: func(context.Context, int64) (*model.Invoice, error) {
			return &model.Invoice{ID: 42, Amount: 100, TokenID: model.TokenMUSD, Status: model.InvoiceStatusOpen}, nil
		},
		eligibilityFn: func(context.Context, string, int64) (*model.Eligibility, error) {
			return &model.Eligibility{InvoiceTokenUsable: usable, FallbackUsable: fallback, Status: model.InvoiceStatusOpen}, nil
		},
	}
}

func approvingChain(t *testing.T, wantToken common.Address, wantAmount string) stubChain {
	t.Helper()
	return stubChain{
		address: common.HexToAddress(testPayer),
		approveFn: func(_ context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error) {
			if token != wantToken {
				t.Fatalf("unexpected approval token %s", token.Hex())
			}
			if spender != testAddresses.PaymentContract {
				t.Fatalf("unexpected spender %s", spender.Hex())
			}
			if amount.String() != wantAmount {
				t.Fatalf("unexpected approval amount %s", amount)
			}
			return common.HexToHash("0xabc"), nil
		},
	}
}

func TestPaymentInitiateStablePath(t *testing.T) {
	dir := openInvoiceDirectory(true, true)
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	journal := &stubJournal{}
	uc := NewPaymentUseCase(dir, chain, journal, testAddresses, 2, discardLogger())

	attempt, err := uc.Initiate(context.Background(), 42, testPayer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempt.State != model.AttemptStateApprovalConfirming {
		t.Fatalf("expected approval confirming state, got %s", attempt.State)
	}
	if attempt.Path != model.PathStable {
		t.Fatalf("expected stable path, got %s", attempt.Path)
	}
	if attempt.ApprovalTx == "" {
		t.Fatal("expected approval tx hash")
	}
	if len(journal.records) != 1 {
		t.Fatalf("expected one journal record, got %d", len(journal.records))
	}
}

func TestPaymentSettlesOnlyAtConfirmationDepth(t *testing.T) {
	settlements := 0
	dir := openInvoiceDirectory(true, false)
	dir.sendStableFn = func(_ context.Context, payer string, invoiceID int64) (*directory.SettlementReceipt, error) {
		settlements++
		if payer != testPayer || invoiceID != 42 {
			t.Fatalf("unexpected settlement arguments: %s %d", payer, invoiceID)
		}
		return &directory.SettlementReceipt{TxHash: "0xdef", Status: "paid"}, nil
	}
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	uc := NewPaymentUseCase(dir, chain, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	if err := uc.ObserveConfirmation(context.Background(), 42, 1); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if settlements != 0 {
		t.Fatal("settlement fired before confirmation depth")
	}
	attempt, _ := uc.Attempt(42)
	if attempt.Confirmations != 1 {
		t.Fatalf("expected confirmation count 1, got %d", attempt.Confirmations)
	}

	if err := uc.ObserveConfirmation(context.Background(), 42, 2); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if settlements != 1 {
		t.Fatalf("expected exactly one settlement, got %d", settlements)
	}
	attempt, _ = uc.Attempt(42)
	if attempt.State != model.AttemptStateSucceeded {
		t.Fatalf("expected succeeded state, got %s", attempt.State)
	}

	// Late duplicate observation must not settle again.
	if err := uc.ObserveConfirmation(context.Background(), 42, 3); err != nil {
		t.Fatalf("observe: %v", err)
	}
	if settlements != 1 {
		t.Fatalf("expected exactly one settlement, got %d", settlements)
	}
}

func TestPaymentAssetFallbackPath(t *testing.T) {
	dir := openInvoiceDirectory(false, true)
	dir.convertFn = func(_ context.Context, payer string, invoiceID int64, assetAddress string) (*directory.SettlementReceipt, error) {
		if assetAddress != testAddresses.FallbackToken.Hex() {
			t.Fatalf("unexpected asset address %s", assetAddress)
		}
		return &directory.SettlementReceipt{Status: "paid"}, nil
	}
	chain := approvingChain(t, testAddresses.FallbackToken, "1000000000000000000000")
	uc := NewPaymentUseCase(dir, chain, &stubJournal{}, testAddresses, 2, discardLogger())

	attempt, err := uc.Initiate(context.Background(), 42, testPayer)
	if err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if attempt.Path != model.PathAssetFallback {
		t.Fatalf("expected asset fallback path, got %s", attempt.Path)
	}

	if err := uc.ObserveConfirmation(context.Background(), 42, 2); err != nil {
		t.Fatalf("observe: %v", err)
	}
	final, _ := uc.Attempt(42)
	if final.State != model.AttemptStateSucceeded {
		t.Fatalf("expected succeeded state, got %s", final.State)
	}
}

func TestPaymentInitiateRejectsClosedInvoice(t *testing.T) {
	dir := openInvoiceDirectory(true, true)
	dir.invoiceFn = func(context.Context, int64) (*model.Invoice, error) {
		return &model.Invoice{ID: 42, Amount: 100, Status: model.InvoiceStatusPaid}, nil
	}
	dir.eligibilityFn = func(context.Context, string, int64) (*model.Eligibility, error) {
		return &model.Eligibility{InvoiceTokenUsable: true, Status: model.InvoiceStatusPaid}, nil
	}
	uc := NewPaymentUseCase(dir, stubChain{address: common.HexToAddress(testPayer)}, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); !errors.Is(err, domainErrors.ErrInvoiceClosed) {
		t.Fatalf("expected invoice closed error, got %v", err)
	}
}

func TestPaymentInitiateRejectsWhenNoUsableBalance(t *testing.T) {
	dir := openInvoiceDirectory(false, false)
	uc := NewPaymentUseCase(dir, stubChain{address: common.HexToAddress(testPayer)}, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); !errors.Is(err, domainErrors.ErrPaymentUnavailable) {
		t.Fatalf("expected payment unavailable error, got %v", err)
	}
}

func TestPaymentInitiateUnknownEligibility(t *testing.T) {
	dir := openInvoiceDirectory(true, true)
	dir.eligibilityFn = func(context.Context, string, int64) (*model.Eligibility, error) {
		return nil, domainErrors.ErrNotFound
	}
	uc := NewPaymentUseCase(dir, stubChain{address: common.HexToAddress(testPayer)}, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); !errors.Is(err, domainErrors.ErrPaymentUnavailable) {
		t.Fatalf("expected payment unavailable error, got %v", err)
	}
}

func TestPaymentInitiateApprovalRejectedAllowsRetry(t *testing.T) {
	rejected := errors.New("user rejected")
	dir := openInvoiceDirectory(true, false)
	calls := 0
	chain := stubChain{
		address: common.HexToAddress(testPayer),
		approveFn: func(context.Context, common.Address, common.Address, *big.Int) (common.Hash, error) {
			calls++
			if calls == 1 {
				return common.Hash{}, rejected
			}
			return common.HexToHash("0xabc"), nil
		},
	}
	journal := &stubJournal{}
	uc := NewPaymentUseCase(dir, chain, journal, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); !errors.Is(err, rejected) {
		t.Fatalf("expected rejection error, got %v", err)
	}
	if len(journal.records) != 1 || journal.records[0].State != model.AttemptStateFailed {
		t.Fatal("expected failed attempt to be journaled")
	}

	// A fresh attempt re-runs the full flow, new approval included.
	attempt, err := uc.Initiate(context.Background(), 42, testPayer)
	if err != nil {
		t.Fatalf("retry initiate: %v", err)
	}
	if attempt.State != model.AttemptStateApprovalConfirming {
		t.Fatalf("expected approval confirming state, got %s", attempt.State)
	}
	if calls != 2 {
		t.Fatalf("expected two approval submissions, got %d", calls)
	}
}

func TestPaymentInitiateRejectsConcurrentAttempt(t *testing.T) {
	dir := openInvoiceDirectory(true, false)
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	uc := NewPaymentUseCase(dir, chain, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if _, err := uc.Initiate(context.Background(), 42, testPayer); !errors.Is(err, domainErrors.ErrAttemptInFlight) {
		t.Fatalf("expected attempt in flight error, got %v", err)
	}
}

func TestPaymentSettlementFailureMarksAttemptFailed(t *testing.T) {
	dir := openInvoiceDirectory(true, false)
	dir.sendStableFn = func(context.Context, string, int64) (*directory.SettlementReceipt, error) {
		return nil, domainErrors.ErrSettlementFailed
	}
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	journal := &stubJournal{}
	uc := NewPaymentUseCase(dir, chain, journal, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	if err := uc.ObserveConfirmation(context.Background(), 42, 2); !errors.Is(err, domainErrors.ErrSettlementFailed) {
		t.Fatalf("expected settlement failed error, got %v", err)
	}
	attempt, _ := uc.Attempt(42)
	if attempt.State != model.AttemptStateFailed {
		t.Fatalf("expected failed state, got %s", attempt.State)
	}
}

func TestPaymentAbortFailsInFlightAttempt(t *testing.T) {
	dir := openInvoiceDirectory(true, false)
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	uc := NewPaymentUseCase(dir, chain, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate: %v", err)
	}
	uc.Abort(context.Background(), 42, errors.New("approval reverted"))

	attempt, _ := uc.Attempt(42)
	if attempt.State != model.AttemptStateFailed {
		t.Fatalf("expected failed state, got %s", attempt.State)
	}
	if attempt.Error != "approval reverted" {
		t.Fatalf("unexpected attempt error %q", attempt.Error)
	}

	// Aborted attempt no longer blocks a new one.
	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate after abort: %v", err)
	}
}

func TestPaymentAttemptsAwaitingConfirmation(t *testing.T) {
	dir := openInvoiceDirectory(true, false)
	chain := approvingChain(t, testAddresses.StableToken, "100000000000000000000")
	uc := NewPaymentUseCase(dir, chain, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, testPayer); err != nil {
		t.Fatalf("initiate: %v", err)
	}

	pending := uc.AttemptsAwaitingConfirmation(10)
	if len(pending) != 1 || pending[0].InvoiceID != 42 {
		t.Fatalf("unexpected pending attempts: %+v", pending)
	}
}

func TestPaymentEligibilityUnknownRecord(t *testing.T) {
	dir := openInvoiceDirectory(true, false)
	dir.eligibilityFn = func(context.Context, string, int64) (*model.Eligibility, error) {
		return nil, domainErrors.ErrNotFound
	}
	uc := NewPaymentUseCase(dir, stubChain{address: common.HexToAddress(testPayer)}, &stubJournal{}, testAddresses, 2, discardLogger())

	invoice, eligibility, path, err := uc.Eligibility(context.Background(), 42, testPayer)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if invoice == nil || eligibility != nil {
		t.Fatal("expected invoice with unknown eligibility")
	}
	if path != model.PathUnavailable {
		t.Fatalf("expected unavailable path, got %s", path)
	}
}

func TestPaymentInitiateRequiresWallet(t *testing.T) {
	uc := NewPaymentUseCase(openInvoiceDirectory(true, false), stubChain{}, &stubJournal{}, testAddresses, 2, discardLogger())

	if _, err := uc.Initiate(context.Background(), 42, ""); !errors.Is(err, domainErrors.ErrWalletNotConnected) {
		t.Fatalf("expected wallet not connected error, got %v", err)
	}
}
