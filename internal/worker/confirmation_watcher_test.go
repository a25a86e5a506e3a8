package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
	testhelpers "github.com/payneu/gateway/internal/test"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestNewConfirmationWatcherDefaults(t *testing.T) {
	watcher := NewConfirmationWatcher(&testhelpers.WatcherFacadeStub{}, time.Second, 0, 0, testLogger())
	if watcher.batchSize != 1 {
		t.Fatalf("expected batch size default to 1, got %d", watcher.batchSize)
	}
	if watcher.workers != 1 {
		t.Fatalf("expected workers default to 1, got %d", watcher.workers)
	}
}

func TestConfirmationWatcherObservesDepth(t *testing.T) {
	facade := &testhelpers.WatcherFacadeStub{
		Pending: [][]model.PaymentAttempt{{{InvoiceID: 42, ApprovalTx: "0xabc", State: model.AttemptStateApprovalConfirming}}},
		CheckFn: func(_ context.Context, txHash string) (uint64, error) {
			if txHash != "0xabc" {
				t.Fatalf("unexpected tx hash %s", txHash)
			}
			return 2, nil
		},
	}
	watcher := NewConfirmationWatcher(facade, 10*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		observed := len(facade.Observed) > 0
		facade.Unlock()
		if observed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for confirmation observation")
		case <-time.After(10 * time.Millisecond):
		}
	}

	watcher.Stop()
	facade.Lock()
	defer facade.Unlock()
	if facade.Observed[0].InvoiceID != 42 || facade.Observed[0].Count != 2 {
		t.Fatalf("unexpected observation: %+v", facade.Observed[0])
	}
}

func TestConfirmationWatcherAbortsRevertedApproval(t *testing.T) {
	facade := &testhelpers.WatcherFacadeStub{
		Pending: [][]model.PaymentAttempt{{{InvoiceID: 7, ApprovalTx: "0xbad", State: model.AttemptStateApprovalConfirming}}},
		CheckFn: func(context.Context, string) (uint64, error) {
			return 0, domainErrors.ErrApprovalRejected
		},
	}
	watcher := NewConfirmationWatcher(facade, 10*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	deadline := time.After(500 * time.Millisecond)
	for {
		facade.Lock()
		aborted := len(facade.Aborted) > 0
		facade.Unlock()
		if aborted {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for abort")
		case <-time.After(10 * time.Millisecond):
		}
	}

	watcher.Stop()
	facade.Lock()
	defer facade.Unlock()
	if facade.Aborted[0] != 7 {
		t.Fatalf("expected invoice 7 aborted, got %d", facade.Aborted[0])
	}
	if len(facade.Observed) != 0 {
		t.Fatal("expected no observation after rejected approval")
	}
}

func TestConfirmationWatcherKeepsPollingOnTransientError(t *testing.T) {
	calls := 0
	facade := &testhelpers.WatcherFacadeStub{
		Pending: [][]model.PaymentAttempt{
			{{InvoiceID: 1, ApprovalTx: "0x1", State: model.AttemptStateApprovalConfirming}},
			{{InvoiceID: 1, ApprovalTx: "0x1", State: model.AttemptStateApprovalConfirming}},
		},
		CheckFn: func(context.Context, string) (uint64, error) {
			calls++
			if calls == 1 {
				return 0, domainErrors.ErrUnavailable
			}
			return 2, nil
		},
	}
	watcher := NewConfirmationWatcher(facade, 5*time.Millisecond, 1, 1, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	watcher.Start(ctx)

	deadline := time.After(time.Second)
	for {
		facade.Lock()
		observed := len(facade.Observed) > 0
		facade.Unlock()
		if observed {
			break
		}
		select {
		case <-deadline:
			t.Fatal("timeout waiting for retry after transient error")
		case <-time.After(10 * time.Millisecond):
		}
	}
	watcher.Stop()
}
