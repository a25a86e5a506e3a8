package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrUnavailable        = errors.New("temporarily unavailable")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidAddress     = errors.New("invalid address")

	// Orchestrator preconditions.
	ErrWalletNotConnected = errors.New("wallet not connected")
	ErrAttemptInFlight    = errors.New("payment attempt already in flight")
	ErrInvoiceClosed      = errors.New("invoice closed for payment")
	ErrPaymentUnavailable = errors.New("no usable token balance for payment")

	// Orchestrator outcomes.
	ErrApprovalRejected = errors.New("token approval rejected")
	ErrSettlementFailed = errors.New("settlement failed")
)
