package dto

import (
	"time"

	"github.com/payneu/gateway/internal/domain/model"
)

// InvoiceResponse represents an invoice as served to the UI.
type InvoiceResponse struct {
	ID            int64     `json:"id"`
	Merchant      string    `json:"merchant"`
	Amount        float64   `json:"amount"`
	TokenID       int64     `json:"token_id"`
	TokenSymbol   string    `json:"token_symbol"`
	Description   string    `json:"description"`
	Status        string    `json:"status"`
	PaymentTxHash string    `json:"payment_tx_hash,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewInvoiceResponse maps a domain invoice to its wire form.
func NewInvoiceResponse(invoice model.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            invoice.ID,
		Merchant:      invoice.MerchantName,
		Amount:        invoice.Amount,
		TokenID:       int64(invoice.TokenID),
		TokenSymbol:   invoice.TokenID.Symbol(),
		Description:   invoice.Description,
		Status:        string(invoice.Status),
		PaymentTxHash: invoice.PaymentTxHash,
		CreatedAt:     invoice.CreatedAt,
	}
}

// CreateInvoiceRequest describes the admin invoice creation payload.
type CreateInvoiceRequest struct {
	Details    string  `json:"details"`
	MerchantID int64   `json:"merchant_id"`
	TokenID    int64   `json:"token_id" binding:"required"`
	Amount     float64 `json:"amount" binding:"required"`
}
