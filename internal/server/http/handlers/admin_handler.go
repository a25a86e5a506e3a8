package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/server/http/dto"
)

const defaultRecentPayments = 50

// AdminHandler serves the operator endpoints behind authentication.
type AdminHandler struct {
	invoices InvoiceFacade
	tokens   TokenFacade
	payments PaymentFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(invoices InvoiceFacade, tokens TokenFacade, payments PaymentFacade) *AdminHandler {
	return &AdminHandler{invoices: invoices, tokens: tokens, payments: payments}
}

// Invoices handles GET /api/admin/invoices.
func (h *AdminHandler) Invoices(c *gin.Context) {
	invoices, err := h.invoices.Invoices(c.Request.Context())
	if err != nil {
		directoryStatus(c, err)
		return
	}

	resp := make([]dto.InvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		resp = append(resp, dto.NewInvoiceResponse(invoice))
	}
	c.JSON(http.StatusOK, resp)
}

// CreateInvoice handles POST /api/admin/invoices.
func (h *AdminHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	invoice, err := h.invoices.CreateInvoice(c.Request.Context(), req.Details, req.MerchantID, req.TokenID, req.Amount)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidAmount) {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		directoryStatus(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewInvoiceResponse(*invoice))
}

// Tokens handles GET /api/admin/tokens.
func (h *AdminHandler) Tokens(c *gin.Context) {
	tokens, err := h.tokens.Tokens(c.Request.Context())
	if err != nil {
		directoryStatus(c, err)
		return
	}

	resp := make([]dto.TokenResponse, 0, len(tokens))
	for _, token := range tokens {
		resp = append(resp, dto.NewTokenResponse(token))
	}
	c.JSON(http.StatusOK, resp)
}

// RegisterToken handles POST /api/admin/tokens.
func (h *AdminHandler) RegisterToken(c *gin.Context) {
	var req dto.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.tokens.RegisterToken(c.Request.Context(), req.Address, req.Name); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidAddress) {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		directoryStatus(c, err)
		return
	}

	c.Status(http.StatusCreated)
}

// Mint handles POST /api/admin/faucet.
func (h *AdminHandler) Mint(c *gin.Context) {
	var req dto.MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if err := h.tokens.Mint(c.Request.Context(), req.To, req.Amount, req.TokenAddress); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidAddress) || errors.Is(err, domainErrors.ErrInvalidAmount) {
			c.Status(http.StatusUnprocessableEntity)
			return
		}
		directoryStatus(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// Payments handles GET /api/admin/payments.
func (h *AdminHandler) Payments(c *gin.Context) {
	limit := defaultRecentPayments
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.Status(http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	attempts, err := h.payments.RecentPayments(c.Request.Context(), limit)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if len(attempts) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	resp := make([]dto.AttemptResponse, 0, len(attempts))
	for _, attempt := range attempts {
		resp = append(resp, dto.NewAttemptResponse(attempt))
	}
	c.JSON(http.StatusOK, resp)
}

func directoryStatus(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		c.Status(http.StatusNotFound)
	case errors.Is(err, domainErrors.ErrUnavailable):
		c.Status(http.StatusBadGateway)
	default:
		c.Status(http.StatusInternalServerError)
	}
}
