package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the watcher.
type PaymentFacade interface {
	AttemptsAwaitingConfirmation(limit int) []model.PaymentAttempt
	CheckConfirmations(ctx context.Context, txHash string) (uint64, error)
	ObserveConfirmation(ctx context.Context, invoiceID int64, count uint64) error
	AbortAttempt(ctx context.Context, invoiceID int64, cause error)
}

// ConfirmationWatcher polls the chain for approval confirmations and advances
// in-flight payment attempts concurrently.
type ConfirmationWatcher struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.PaymentAttempt
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewConfirmationWatcher constructs confirmation watcher worker pool.
func NewConfirmationWatcher(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *ConfirmationWatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &ConfirmationWatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.PaymentAttempt, batchSize*workers),
	}
}

// Start launches background polling.
func (w *ConfirmationWatcher) Start(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.worker(runCtx)
	}

	w.wg.Add(1)
	go w.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (w *ConfirmationWatcher) Stop() {
	w.mu.Lock()
	if w.cancel != nil {
		w.cancel()
		w.cancel = nil
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *ConfirmationWatcher) dispatch(ctx context.Context) {
	defer w.wg.Done()
	defer close(w.jobs)
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.fetchAndDispatch(ctx)
		}
	}
}

func (w *ConfirmationWatcher) fetchAndDispatch(ctx context.Context) {
	attempts := w.facade.AttemptsAwaitingConfirmation(w.batchSize)
	for _, attempt := range attempts {
		select {
		case <-ctx.Done():
			return
		case w.jobs <- attempt:
		}
	}
}

func (w *ConfirmationWatcher) worker(ctx context.Context) {
	defer w.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case attempt, ok := <-w.jobs:
			if !ok {
				return
			}
			w.handleAttempt(ctx, attempt)
		}
	}
}

func (w *ConfirmationWatcher) handleAttempt(ctx context.Context, attempt model.PaymentAttempt) {
	count, err := w.facade.CheckConfirmations(ctx, attempt.ApprovalTx)
	if err != nil {
		if errors.Is(err, domainErrors.ErrApprovalRejected) {
			w.facade.AbortAttempt(ctx, attempt.InvoiceID, err)
			return
		}
		w.logger.Error("confirmation check failed",
			slog.String("tx", attempt.ApprovalTx),
			slog.String("error", err.Error()),
		)
		return
	}

	if err := w.facade.ObserveConfirmation(ctx, attempt.InvoiceID, count); err != nil {
		w.logger.Error("confirmation observation failed",
			slog.Int64("invoice", attempt.InvoiceID),
			slog.String("error", err.Error()),
		)
	}
}
