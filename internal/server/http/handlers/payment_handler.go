package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/server/http/dto"
)

// PaymentHandler serves the payer-facing invoice and payment endpoints.
type PaymentHandler struct {
	invoices InvoiceFacade
	payments PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(invoices InvoiceFacade, payments PaymentFacade) *PaymentHandler {
	return &PaymentHandler{invoices: invoices, payments: payments}
}

// Wallet handles GET /api/wallet.
func (h *PaymentHandler) Wallet(c *gin.Context) {
	c.JSON(http.StatusOK, dto.WalletResponse{Address: h.payments.WalletAddress()})
}

// Invoice handles GET /api/invoices/:id.
func (h *PaymentHandler) Invoice(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	invoice, err := h.invoices.Invoice(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrUnavailable):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusOK, dto.NewInvoiceResponse(*invoice))
}

// Eligibility handles GET /api/invoices/:id/eligibility.
func (h *PaymentHandler) Eligibility(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}
	address := c.Query("address")
	if address == "" {
		address = h.payments.WalletAddress()
	}

	invoice, eligibility, path, err := h.payments.Eligibility(c.Request.Context(), id, address)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrUnavailable):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	resp := dto.EligibilityResponse{
		Invoice: dto.NewInvoiceResponse(*invoice),
		Path:    string(path),
	}
	if eligibility != nil {
		resp.InvoiceTokenUsable = eligibility.InvoiceTokenUsable
		resp.FallbackUsable = eligibility.FallbackUsable
	}
	c.JSON(http.StatusOK, resp)
}

// Pay handles POST /api/invoices/:id/pay.
func (h *PaymentHandler) Pay(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	var req dto.PayRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.Status(http.StatusBadRequest)
			return
		}
	}

	attempt, err := h.payments.InitiatePayment(c.Request.Context(), id, req.Address)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrAttemptInFlight):
			c.Status(http.StatusConflict)
		case errors.Is(err, domainErrors.ErrInvoiceClosed), errors.Is(err, domainErrors.ErrPaymentUnavailable), errors.Is(err, domainErrors.ErrInvalidAmount):
			c.Status(http.StatusUnprocessableEntity)
		case errors.Is(err, domainErrors.ErrWalletNotConnected):
			c.Status(http.StatusPreconditionFailed)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrUnavailable):
			c.Status(http.StatusBadGateway)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	c.JSON(http.StatusAccepted, dto.NewAttemptResponse(*attempt))
}

// PaymentStatus handles GET /api/invoices/:id/payment.
func (h *PaymentHandler) PaymentStatus(c *gin.Context) {
	id, ok := invoiceID(c)
	if !ok {
		return
	}

	attempt, found := h.payments.PaymentAttempt(id)
	if !found {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.NewAttemptResponse(attempt))
}

func invoiceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return 0, false
	}
	return id, true
}
