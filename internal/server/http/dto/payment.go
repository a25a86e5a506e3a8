package dto

import (
	"time"

	"github.com/payneu/gateway/internal/domain/model"
)

// WalletResponse reports the gateway's connected account.
type WalletResponse struct {
	Address string `json:"address"`
}

// PayRequest starts a payment attempt; address defaults to the gateway wallet.
type PayRequest struct {
	Address string `json:"address"`
}

// EligibilityResponse combines the invoice with the payer's path decision.
type EligibilityResponse struct {
	Invoice            InvoiceResponse `json:"invoice"`
	InvoiceTokenUsable bool            `json:"invoice_token_usable"`
	FallbackUsable     bool            `json:"fallback_usable"`
	Path               string          `json:"path"`
}

// AttemptResponse represents a payment attempt's observable state.
type AttemptResponse struct {
	ID             string    `json:"id"`
	InvoiceID      int64     `json:"invoice_id"`
	Payer          string    `json:"payer"`
	Path           string    `json:"path"`
	State          string    `json:"state"`
	ApprovalTx     string    `json:"approval_tx,omitempty"`
	ApprovalAmount string    `json:"approval_amount,omitempty"`
	Confirmations  uint64    `json:"confirmations"`
	Error          string    `json:"error,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewAttemptResponse maps a payment attempt to its wire form.
func NewAttemptResponse(attempt model.PaymentAttempt) AttemptResponse {
	resp := AttemptResponse{
		ID:            attempt.ID,
		InvoiceID:     attempt.InvoiceID,
		Payer:         attempt.Payer,
		Path:          string(attempt.Path),
		State:         string(attempt.State),
		ApprovalTx:    attempt.ApprovalTx,
		Confirmations: attempt.Confirmations,
		Error:         attempt.Error,
		StartedAt:     attempt.StartedAt,
		UpdatedAt:     attempt.UpdatedAt,
	}
	if attempt.ApprovalAmount != nil {
		resp.ApprovalAmount = attempt.ApprovalAmount.String()
	}
	return resp
}
