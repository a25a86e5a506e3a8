package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/payneu/gateway/internal/adapter/directory"
	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
	testhelpers "github.com/payneu/gateway/internal/test"
	"github.com/payneu/gateway/internal/usecase"
)

func testAddresses() usecase.Addresses {
	return usecase.Addresses{}
}

func newFacade(directoryStub testhelpers.DirectoryClientStub, chainStub testhelpers.ChainGatewayStub) (*GatewayFacade, *testhelpers.UserRepositoryStub, *testhelpers.AttemptRepositoryStub) {
	userRepo := testhelpers.NewUserRepositoryStub()
	strategy := testhelpers.StrategyStub{ParseFn: func(string) (int64, error) { return 99, nil }}
	authUC := usecase.NewAuthUseCase(userRepo, testhelpers.HasherStub{}, strategy)

	invoiceUC := usecase.NewInvoiceUseCase(directoryStub)
	tokenUC := usecase.NewTokenUseCase(directoryStub)

	journal := &testhelpers.AttemptRepositoryStub{}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	paymentUC := usecase.NewPaymentUseCase(directoryStub, chainStub, journal, testAddresses(), 2, logger)

	facade := NewGatewayFacade(authUC, invoiceUC, tokenUC, paymentUC, chainStub)
	return facade, userRepo, journal
}

func TestGatewayFacadeAuth(t *testing.T) {
	facade, users, _ := newFacade(testhelpers.DirectoryClientStub{}, testhelpers.ChainGatewayStub{})

	token, err := facade.Register(context.Background(), "admin", "pass")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	stored, err := users.GetByLogin(context.Background(), "admin")
	if err != nil {
		t.Fatalf("user not stored: %v", err)
	}
	if stored.Login != "admin" {
		t.Fatalf("unexpected stored login %q", stored.Login)
	}

	token, err = facade.Authenticate(context.Background(), "admin", "pass")
	if err != nil {
		t.Fatalf("authenticate returned error: %v", err)
	}
	if token != "token" {
		t.Fatalf("unexpected token %q", token)
	}

	id, err := facade.ParseToken("anything")
	if err != nil {
		t.Fatalf("parse token returned error: %v", err)
	}
	if id != 99 {
		t.Fatalf("expected id 99, got %d", id)
	}
}

func TestGatewayFacadeInvoices(t *testing.T) {
	facade, _, _ := newFacade(testhelpers.DirectoryClientStub{
		InvoicesFn: func(context.Context) ([]model.Invoice, error) {
			return []model.Invoice{{ID: 1}, {ID: 2}}, nil
		},
	}, testhelpers.ChainGatewayStub{})

	invoice, err := facade.Invoice(context.Background(), 5)
	if err != nil || invoice.ID != 5 {
		t.Fatalf("unexpected invoice result: %v err=%v", invoice, err)
	}

	listed, err := facade.Invoices(context.Background())
	if err != nil || len(listed) != 2 {
		t.Fatalf("expected two invoices, got %v err=%v", listed, err)
	}

	created, err := facade.CreateInvoice(context.Background(), "coffee", 1, 1, 100)
	if err != nil || created == nil {
		t.Fatalf("unexpected create result: %v err=%v", created, err)
	}
}

func TestGatewayFacadePaymentFlow(t *testing.T) {
	facade, _, journal := newFacade(testhelpers.DirectoryClientStub{}, testhelpers.ChainGatewayStub{})

	if addr := facade.WalletAddress(); addr == "" {
		t.Fatal("expected wallet address")
	}

	attempt, err := facade.InitiatePayment(context.Background(), 42, "")
	if err != nil {
		t.Fatalf("initiate returned error: %v", err)
	}
	if attempt.State != model.AttemptStateApprovalConfirming {
		t.Fatalf("unexpected attempt state %s", attempt.State)
	}

	pending := facade.AttemptsAwaitingConfirmation(10)
	if len(pending) != 1 {
		t.Fatalf("expected one pending attempt, got %d", len(pending))
	}

	count, err := facade.CheckConfirmations(context.Background(), attempt.ApprovalTx)
	if err != nil || count != 2 {
		t.Fatalf("unexpected confirmation result: %d err=%v", count, err)
	}

	if err := facade.ObserveConfirmation(context.Background(), 42, count); err != nil {
		t.Fatalf("observe returned error: %v", err)
	}

	final, ok := facade.PaymentAttempt(42)
	if !ok || final.State != model.AttemptStateSucceeded {
		t.Fatalf("expected succeeded attempt, got %+v ok=%v", final, ok)
	}

	recent, err := facade.RecentPayments(context.Background(), 10)
	if err != nil || len(recent) == 0 {
		t.Fatalf("expected journaled attempts, got %v err=%v", recent, err)
	}
	if len(journal.Records) == 0 {
		t.Fatal("expected journal records")
	}
}

func TestGatewayFacadeAbort(t *testing.T) {
	facade, _, _ := newFacade(testhelpers.DirectoryClientStub{}, testhelpers.ChainGatewayStub{})

	if _, err := facade.InitiatePayment(context.Background(), 7, ""); err != nil {
		t.Fatalf("initiate returned error: %v", err)
	}
	facade.AbortAttempt(context.Background(), 7, errors.New("reverted"))

	attempt, ok := facade.PaymentAttempt(7)
	if !ok || attempt.State != model.AttemptStateFailed {
		t.Fatalf("expected failed attempt, got %+v", attempt)
	}
}

func TestGatewayFacadeTokens(t *testing.T) {
	registered := false
	facade, _, _ := newFacade(testhelpers.DirectoryClientStub{
		RegisterTokenFn: func(context.Context, directory.CreateToken) error {
			registered = true
			return nil
		},
	}, testhelpers.ChainGatewayStub{})

	tokens, err := facade.Tokens(context.Background())
	if err != nil || len(tokens) == 0 {
		t.Fatalf("unexpected tokens result: %v err=%v", tokens, err)
	}

	if err := facade.RegisterToken(context.Background(), "0x35435120c2cf51f7f122f2b37bda3bbc686831de", "Example"); err != nil {
		t.Fatalf("register token returned error: %v", err)
	}
	if !registered {
		t.Fatal("expected registration to reach directory")
	}

	if err := facade.Mint(context.Background(), "bad", 1, "bad"); !errors.Is(err, domainErrors.ErrInvalidAddress) {
		t.Fatalf("expected invalid address error, got %v", err)
	}
}
