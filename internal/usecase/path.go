package usecase

import "github.com/payneu/gateway/internal/domain/model"

// DeterminePaymentPath decides how an invoice can be settled for a payer. It
// is a pure function of the invoice and the payer's eligibility record.
//
// The decision table, in priority order:
//  1. invoice not open/pending           -> Closed
//  2. neither token balance sufficient   -> Unavailable
//  3. invoice token short, fallback okay -> AssetFallback
//  4. otherwise                          -> Stable
//
// A nil eligibility means the directory has not produced a record yet;
// payment stays unavailable until it does.
func DeterminePaymentPath(invoice *model.Invoice, eligibility *model.Eligibility) model.PaymentPath {
	if invoice == nil {
		return model.PathClosed
	}

	// The payer-status record carries a fresher invoice status than the
	// invoice fetch itself; prefer it when present.
	status := invoice.Status
	if eligibility != nil && eligibility.Status != "" {
		status = eligibility.Status
	}
	if status != model.InvoiceStatusOpen && status != model.InvoiceStatusPending {
		return model.PathClosed
	}

	if eligibility == nil {
		return model.PathUnavailable
	}

	switch {
	case !eligibility.InvoiceTokenUsable && !eligibility.FallbackUsable:
		return model.PathUnavailable
	case !eligibility.InvoiceTokenUsable && eligibility.FallbackUsable:
		return model.PathAssetFallback
	default:
		return model.PathStable
	}
}
