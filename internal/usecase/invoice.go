package usecase

import (
	"context"

	"github.com/payneu/gateway/internal/adapter/directory"
	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

// InvoiceUseCase covers invoice listing and creation against the directory.
type InvoiceUseCase struct {
	directory directory.Client
}

// NewInvoiceUseCase constructs InvoiceUseCase.
func NewInvoiceUseCase(dir directory.Client) *InvoiceUseCase {
	return &InvoiceUseCase{directory: dir}
}

// Invoice fetches a single invoice.
func (u *InvoiceUseCase) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	return u.directory.Invoice(ctx, id)
}

// List fetches all invoices known to the directory.
func (u *InvoiceUseCase) List(ctx context.Context) ([]model.Invoice, error) {
	return u.directory.Invoices(ctx)
}

// Create opens a new invoice for a merchant.
func (u *InvoiceUseCase) Create(ctx context.Context, details string, merchantID, tokenID int64, amount float64) (*model.Invoice, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if details == "" {
		details = "invoice"
	}
	return u.directory.CreateInvoice(ctx, directory.CreateInvoice{
		Details:    details,
		MerchantID: merchantID,
		TokenID:    tokenID,
		Amount:     amount,
	})
}
