package model

import "time"

// InvoiceStatus describes invoice lifecycle as reported by the directory.
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOpen    InvoiceStatus = "open"
	InvoiceStatusPaid    InvoiceStatus = "paid"
)

// Invoice describes a payment request owned by the directory backend.
type Invoice struct {
	ID            int64
	MerchantName  string
	Amount        float64
	TokenID       TokenID
	Description   string
	Status        InvoiceStatus
	PaymentTxHash string
	CreatedAt     time.Time
}

// Payable reports whether the invoice still accepts payment.
// Both "open" and "pending" count as payable.
func (i Invoice) Payable() bool {
	return i.Status == InvoiceStatusOpen || i.Status == InvoiceStatusPending
}
