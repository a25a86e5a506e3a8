package model

import (
	"math/big"
	"time"
)

// PaymentPath identifies which settlement route an invoice payment takes.
type PaymentPath string

const (
	// PathStable pays directly in the invoice's own token.
	PathStable PaymentPath = "stable"
	// PathAssetFallback pays with the fallback asset token, converted by the
	// payment contract at a fixed rate.
	PathAssetFallback PaymentPath = "asset"
	// PathClosed means the invoice no longer accepts payment.
	PathClosed PaymentPath = "closed"
	// PathUnavailable means neither token balance suffices.
	PathUnavailable PaymentPath = "unavailable"
)

// AttemptState describes the lifecycle of a single payment attempt.
type AttemptState string

const (
	AttemptStateIdle               AttemptState = "idle"
	AttemptStateApprovalPending    AttemptState = "approval_pending"
	AttemptStateApprovalConfirming AttemptState = "approval_confirming"
	AttemptStateSettling           AttemptState = "settling"
	AttemptStateSucceeded          AttemptState = "succeeded"
	AttemptStateFailed             AttemptState = "failed"
)

// Terminal reports whether the state ends the attempt.
func (s AttemptState) Terminal() bool {
	return s == AttemptStateSucceeded || s == AttemptStateFailed
}

// PaymentAttempt is the ephemeral state of one payment initiation. At most one
// attempt is in flight per invoice; the orchestrator owns it exclusively.
type PaymentAttempt struct {
	ID             string
	InvoiceID      int64
	Payer          string
	Path           PaymentPath
	State          AttemptState
	ApprovalTx     string
	ApprovalAmount *big.Int
	Confirmations  uint64
	Error          string
	StartedAt      time.Time
	UpdatedAt      time.Time
}
