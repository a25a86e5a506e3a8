package repository

import (
	"context"

	"github.com/payneu/gateway/internal/domain/model"
)

// AttemptRepository records the outcome journal of payment attempts. The live
// attempt state stays in memory; rows here are audit history for the admin
// payments view.
type AttemptRepository interface {
	Record(ctx context.Context, attempt model.PaymentAttempt) error
	ListRecent(ctx context.Context, limit int) ([]model.PaymentAttempt, error)
	ListByInvoice(ctx context.Context, invoiceID int64) ([]model.PaymentAttempt, error)
}
