package model

// Eligibility captures whether a payer can settle an invoice, derived by the
// directory from on-chain balances at fetch time. It is recomputed on every
// fetch and never cached across sessions.
type Eligibility struct {
	InvoiceTokenUsable bool
	FallbackUsable     bool
	Status             InvoiceStatus
}
