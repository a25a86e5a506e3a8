package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"

	"github.com/payneu/gateway/internal/adapter/directory"
	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
	"github.com/payneu/gateway/internal/domain/repository"
)

// Directory is the subset of the invoice directory the orchestrator consumes.
type Directory interface {
	Invoice(ctx context.Context, id int64) (*model.Invoice, error)
	PayerEligibility(ctx context.Context, address string, invoiceID int64) (*model.Eligibility, error)
	SendStablePayment(ctx context.Context, payer string, invoiceID int64) (*directory.SettlementReceipt, error)
	ConvertThenSendStable(ctx context.Context, payer string, invoiceID int64, assetAddress string) (*directory.SettlementReceipt, error)
}

// ChainApprover is the subset of the chain gateway the orchestrator consumes.
type ChainApprover interface {
	Address() common.Address
	ApproveSpend(ctx context.Context, token, spender common.Address, amount *big.Int) (common.Hash, error)
}

// PaymentUseCase drives a payer's invoice settlement: fetch invoice and
// eligibility, choose the path, request the ERC-20 approval, wait out the
// confirmation depth, then trigger the directory-mediated settlement call.
//
// One attempt is in flight per invoice at a time. Attempt state advances only
// through discrete events (Initiate, ObserveConfirmation, Abort), so
// settlement can never run before the confirmation depth is reached.
type PaymentUseCase struct {
	directory Directory
	chain     ChainApprover
	journal   repository.AttemptRepository
	addresses Addresses
	depth     uint64
	logger    *slog.Logger

	mu       sync.Mutex
	attempts map[int64]*model.PaymentAttempt
}

// NewPaymentUseCase constructs the payment orchestrator.
func NewPaymentUseCase(dir Directory, chain ChainApprover, journal repository.AttemptRepository, addresses Addresses, depth uint64, logger *slog.Logger) *PaymentUseCase {
	if depth == 0 {
		depth = 2
	}
	return &PaymentUseCase{
		directory: dir,
		chain:     chain,
		journal:   journal,
		addresses: addresses,
		depth:     depth,
		logger:    logger,
		attempts:  make(map[int64]*model.PaymentAttempt),
	}
}

// WalletAddress returns the connected gateway account.
func (u *PaymentUseCase) WalletAddress() string {
	return u.chain.Address().Hex()
}

// Eligibility fetches the invoice together with the payer's eligibility and
// the resulting path decision. A missing eligibility record is reported as a
// nil record ("unknown"), not as an error.
func (u *PaymentUseCase) Eligibility(ctx context.Context, invoiceID int64, address string) (*model.Invoice, *model.Eligibility, model.PaymentPath, error) {
	invoice, err := u.directory.Invoice(ctx, invoiceID)
	if err != nil {
		return nil, nil, "", err
	}

	var eligibility *model.Eligibility
	if address != "" {
		eligibility, err = u.directory.PayerEligibility(ctx, address, invoiceID)
		if err != nil && !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, nil, "", err
		}
	}

	return invoice, eligibility, DeterminePaymentPath(invoice, eligibility), nil
}

// Initiate starts a payment attempt for the invoice. It validates
// preconditions, computes the approval amount for the decided path, and
// submits the ERC-20 approve. The returned attempt is in
// approval-confirming state; the confirmation watcher advances it from there.
func (u *PaymentUseCase) Initiate(ctx context.Context, invoiceID int64, payer string) (*model.PaymentAttempt, error) {
	if payer == "" {
		payer = u.chain.Address().Hex()
	}
	if payer == "" || payer == (common.Address{}).Hex() {
		return nil, domainErrors.ErrWalletNotConnected
	}

	// Reserve the in-flight slot before any network call so a concurrent
	// initiation is rejected without submitting a second approval.
	reservation := &model.PaymentAttempt{
		ID:        uuid.NewString(),
		InvoiceID: invoiceID,
		Payer:     payer,
		State:     model.AttemptStateApprovalPending,
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	u.mu.Lock()
	if existing, ok := u.attempts[invoiceID]; ok && !existing.State.Terminal() {
		u.mu.Unlock()
		return nil, domainErrors.ErrAttemptInFlight
	}
	u.attempts[invoiceID] = reservation
	u.mu.Unlock()

	attempt, err := u.prepareAndApprove(ctx, reservation)
	if err != nil {
		u.mu.Lock()
		delete(u.attempts, invoiceID)
		u.mu.Unlock()
		return nil, err
	}
	return attempt, nil
}

func (u *PaymentUseCase) prepareAndApprove(ctx context.Context, attempt *model.PaymentAttempt) (*model.PaymentAttempt, error) {
	invoice, err := u.directory.Invoice(ctx, attempt.InvoiceID)
	if err != nil {
		return nil, err
	}

	eligibility, err := u.directory.PayerEligibility(ctx, attempt.Payer, attempt.InvoiceID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, fmt.Errorf("payer eligibility unknown: %w", domainErrors.ErrPaymentUnavailable)
		}
		return nil, err
	}

	path := DeterminePaymentPath(invoice, eligibility)
	switch path {
	case model.PathClosed:
		return nil, domainErrors.ErrInvoiceClosed
	case model.PathUnavailable:
		return nil, domainErrors.ErrPaymentUnavailable
	}

	amount, err := ApprovalAmount(invoice.Amount, path)
	if err != nil {
		return nil, err
	}

	token := u.approvalToken(path, invoice.TokenID)

	u.mu.Lock()
	attempt.Path = path
	attempt.ApprovalAmount = amount
	attempt.UpdatedAt = time.Now()
	u.mu.Unlock()

	txHash, err := u.chain.ApproveSpend(ctx, token, u.addresses.PaymentContract, amount)
	if err != nil {
		// Wallet declined or RPC failed before broadcast: abort straight
		// back to idle, nothing to watch.
		u.recordTerminal(ctx, attempt, model.AttemptStateFailed, err.Error())
		u.logger.Warn("approval submission failed",
			slog.Int64("invoice", attempt.InvoiceID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	u.mu.Lock()
	attempt.ApprovalTx = txHash.Hex()
	attempt.State = model.AttemptStateApprovalConfirming
	attempt.UpdatedAt = time.Now()
	snapshot := *attempt
	u.mu.Unlock()

	u.record(ctx, snapshot)
	u.logger.Info("payment attempt started",
		slog.Int64("invoice", attempt.InvoiceID),
		slog.String("path", string(attempt.Path)),
		slog.String("approval_tx", attempt.ApprovalTx),
	)
	return &snapshot, nil
}

// ObserveConfirmation feeds a confirmation count for the invoice's in-flight
// approval. Settlement fires exactly once, when the observed depth first
// reaches the policy target.
func (u *PaymentUseCase) ObserveConfirmation(ctx context.Context, invoiceID int64, count uint64) error {
	u.mu.Lock()
	attempt, ok := u.attempts[invoiceID]
	if !ok || attempt.State != model.AttemptStateApprovalConfirming {
		u.mu.Unlock()
		return nil
	}
	attempt.Confirmations = count
	attempt.UpdatedAt = time.Now()
	if count < u.depth {
		u.mu.Unlock()
		return nil
	}
	attempt.State = model.AttemptStateSettling
	settling := *attempt
	u.mu.Unlock()

	return u.settle(ctx, settling)
}

func (u *PaymentUseCase) settle(ctx context.Context, attempt model.PaymentAttempt) error {
	var err error
	switch attempt.Path {
	case model.PathAssetFallback:
		_, err = u.directory.ConvertThenSendStable(ctx, attempt.Payer, attempt.InvoiceID, u.addresses.FallbackToken.Hex())
	default:
		_, err = u.directory.SendStablePayment(ctx, attempt.Payer, attempt.InvoiceID)
	}

	u.mu.Lock()
	live, ok := u.attempts[attempt.InvoiceID]
	u.mu.Unlock()
	if !ok {
		return nil
	}

	if err != nil {
		u.recordTerminal(ctx, live, model.AttemptStateFailed, err.Error())
		u.logger.Error("settlement failed",
			slog.Int64("invoice", attempt.InvoiceID),
			slog.String("path", string(attempt.Path)),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("%w: %v", domainErrors.ErrSettlementFailed, err)
	}

	u.recordTerminal(ctx, live, model.AttemptStateSucceeded, "")
	u.logger.Info("payment settled",
		slog.Int64("invoice", attempt.InvoiceID),
		slog.String("path", string(attempt.Path)),
		slog.String("approval_tx", attempt.ApprovalTx),
	)
	return nil
}

// Abort fails the in-flight attempt, typically because the approval
// transaction reverted on-chain.
func (u *PaymentUseCase) Abort(ctx context.Context, invoiceID int64, cause error) {
	u.mu.Lock()
	attempt, ok := u.attempts[invoiceID]
	if !ok || attempt.State.Terminal() {
		u.mu.Unlock()
		return
	}
	u.mu.Unlock()

	message := "aborted"
	if cause != nil {
		message = cause.Error()
	}
	u.recordTerminal(ctx, attempt, model.AttemptStateFailed, message)
	u.logger.Warn("payment attempt aborted",
		slog.Int64("invoice", invoiceID),
		slog.String("error", message),
	)
}

// Attempt returns a copy of the invoice's current attempt, if any.
func (u *PaymentUseCase) Attempt(invoiceID int64) (model.PaymentAttempt, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	attempt, ok := u.attempts[invoiceID]
	if !ok {
		return model.PaymentAttempt{}, false
	}
	return *attempt, true
}

// AttemptsAwaitingConfirmation snapshots attempts whose approval is being
// watched, for the confirmation poller.
func (u *PaymentUseCase) AttemptsAwaitingConfirmation(limit int) []model.PaymentAttempt {
	u.mu.Lock()
	defer u.mu.Unlock()

	var pending []model.PaymentAttempt
	for _, attempt := range u.attempts {
		if attempt.State != model.AttemptStateApprovalConfirming {
			continue
		}
		pending = append(pending, *attempt)
		if limit > 0 && len(pending) >= limit {
			break
		}
	}
	return pending
}

// RecentAttempts lists journaled attempts for the admin payments view.
func (u *PaymentUseCase) RecentAttempts(ctx context.Context, limit int) ([]model.PaymentAttempt, error) {
	return u.journal.ListRecent(ctx, limit)
}

func (u *PaymentUseCase) approvalToken(path model.PaymentPath, tokenID model.TokenID) common.Address {
	if path == model.PathAssetFallback {
		return u.addresses.FallbackToken
	}
	return u.addresses.ForSymbol(tokenID.Symbol())
}

func (u *PaymentUseCase) recordTerminal(ctx context.Context, attempt *model.PaymentAttempt, state model.AttemptState, message string) {
	u.mu.Lock()
	attempt.State = state
	attempt.Error = message
	attempt.UpdatedAt = time.Now()
	snapshot := *attempt
	u.mu.Unlock()

	u.record(ctx, snapshot)
}

// record journals the attempt snapshot; journal failures are logged, never
// fatal to the payment flow.
func (u *PaymentUseCase) record(ctx context.Context, attempt model.PaymentAttempt) {
	if u.journal == nil {
		return
	}
	if err := u.journal.Record(ctx, attempt); err != nil {
		u.logger.Error("journal attempt failed",
			slog.String("attempt", attempt.ID),
			slog.String("error", err.Error()),
		)
	}
}
