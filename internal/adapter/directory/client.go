package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

// CreateInvoice carries the fields the directory needs to open an invoice.
type CreateInvoice struct {
	Details    string  `json:"details"`
	MerchantID int64   `json:"merchant_id"`
	TokenID    int64   `json:"token_id"`
	Amount     float64 `json:"amount"`
}

// CreateToken registers a new accepted ERC-20 token with the directory.
type CreateToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
}

// SettlementReceipt is the directory's acknowledgement of a recorded payment.
type SettlementReceipt struct {
	TxHash string `json:"tx_hash"`
	Status string `json:"status"`
}

// Client exposes operations against the invoice directory backend.
type Client interface {
	Invoice(ctx context.Context, id int64) (*model.Invoice, error)
	Invoices(ctx context.Context) ([]model.Invoice, error)
	CreateInvoice(ctx context.Context, req CreateInvoice) (*model.Invoice, error)
	PayerEligibility(ctx context.Context, address string, invoiceID int64) (*model.Eligibility, error)
	SendStablePayment(ctx context.Context, payer string, invoiceID int64) (*SettlementReceipt, error)
	ConvertThenSendStable(ctx context.Context, payer string, invoiceID int64, assetAddress string) (*SettlementReceipt, error)
	Tokens(ctx context.Context) ([]model.Token, error)
	RegisterToken(ctx context.Context, req CreateToken) error
	Mint(ctx context.Context, to string, amount float64, tokenAddress string) error
}

// HTTPClient implements Client via the directory's REST API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// invoicePayload mirrors the directory's invoice JSON.
type invoicePayload struct {
	ID            int64     `json:"id"`
	Amount        float64   `json:"amount"`
	TokenID       int64     `json:"token_id"`
	Details       string    `json:"details"`
	Status        string    `json:"status"`
	PaymentTxHash string    `json:"payment_tx_hash"`
	CreatedAt     time.Time `json:"created_at"`
	Merchant      struct {
		Name string `json:"name"`
	} `json:"merchant"`
}

// payerStatusPayload mirrors the directory's payer-status JSON. The nested ui
// block is what the original consumer rendered from.
type payerStatusPayload struct {
	UI struct {
		Status  string `json:"status"`
		Options struct {
			InvoiceToken bool `json:"invoiceToken"`
			TokenOptions struct {
				Bazed bool `json:"bazed"`
			} `json:"tokenOptions"`
		} `json:"options"`
	} `json:"ui"`
}

type tokenPayload struct {
	ID      int64     `json:"id"`
	Address string    `json:"address"`
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"created_at"`
}

// NewHTTPClient creates HTTP directory client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse directory url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("directory url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

// Invoice fetches a single invoice by id.
func (c *HTTPClient) Invoice(ctx context.Context, id int64) (*model.Invoice, error) {
	var payload invoicePayload
	if err := c.getJSON(ctx, c.endpoint("/invoice/"+strconv.FormatInt(id, 10), nil), &payload); err != nil {
		return nil, err
	}
	invoice := toInvoice(payload)
	return &invoice, nil
}

// Invoices fetches all invoices known to the directory.
func (c *HTTPClient) Invoices(ctx context.Context) ([]model.Invoice, error) {
	var payload []invoicePayload
	if err := c.getJSON(ctx, c.endpoint("/invoice", nil), &payload); err != nil {
		return nil, err
	}
	invoices := make([]model.Invoice, 0, len(payload))
	for _, p := range payload {
		invoices = append(invoices, toInvoice(p))
	}
	return invoices, nil
}

// CreateInvoice opens a new invoice on behalf of a merchant.
func (c *HTTPClient) CreateInvoice(ctx context.Context, req CreateInvoice) (*model.Invoice, error) {
	var payload invoicePayload
	if err := c.postJSON(ctx, c.endpoint("/invoice", nil), req, &payload); err != nil {
		return nil, err
	}
	invoice := toInvoice(payload)
	return &invoice, nil
}

// PayerEligibility asks the directory whether the payer's balances can settle
// the invoice. Absence of a record surfaces as ErrNotFound, which callers
// treat as "eligibility unknown" rather than a hard failure.
func (c *HTTPClient) PayerEligibility(ctx context.Context, address string, invoiceID int64) (*model.Eligibility, error) {
	query := url.Values{}
	query.Set("address", address)
	query.Set("invoiceId", strconv.FormatInt(invoiceID, 10))

	var payload payerStatusPayload
	if err := c.getJSON(ctx, c.endpoint("/invoice/payer-status", query), &payload); err != nil {
		return nil, err
	}
	return &model.Eligibility{
		InvoiceTokenUsable: payload.UI.Options.InvoiceToken,
		FallbackUsable:     payload.UI.Options.TokenOptions.Bazed,
		Status:             model.InvoiceStatus(payload.UI.Status),
	}, nil
}

// SendStablePayment triggers settlement in the invoice's own token.
func (c *HTTPClient) SendStablePayment(ctx context.Context, payer string, invoiceID int64) (*SettlementReceipt, error) {
	query := url.Values{}
	query.Set("payer", payer)
	query.Set("invoiceId", strconv.FormatInt(invoiceID, 10))
	return c.settle(ctx, c.endpoint("/invoice/send-payment", query))
}

// ConvertThenSendStable triggers settlement via the fallback asset token.
func (c *HTTPClient) ConvertThenSendStable(ctx context.Context, payer string, invoiceID int64, assetAddress string) (*SettlementReceipt, error) {
	query := url.Values{}
	query.Set("payer", payer)
	query.Set("invoiceId", strconv.FormatInt(invoiceID, 10))
	query.Set("assetAddress", assetAddress)
	return c.settle(ctx, c.endpoint("/invoice/convert-then-send-stable", query))
}

// Tokens lists tokens registered with the directory.
func (c *HTTPClient) Tokens(ctx context.Context) ([]model.Token, error) {
	var payload []tokenPayload
	if err := c.getJSON(ctx, c.endpoint("/token", nil), &payload); err != nil {
		return nil, err
	}
	tokens := make([]model.Token, 0, len(payload))
	for _, p := range payload {
		tokens = append(tokens, model.Token{ID: p.ID, Address: p.Address, Symbol: p.Symbol, Name: p.Name, AddedAt: p.AddedAt})
	}
	return tokens, nil
}

// RegisterToken adds a new accepted token.
func (c *HTTPClient) RegisterToken(ctx context.Context, req CreateToken) error {
	return c.postJSON(ctx, c.endpoint("/token", nil), req, nil)
}

// Mint requests test tokens from the directory's faucet.
func (c *HTTPClient) Mint(ctx context.Context, to string, amount float64, tokenAddress string) error {
	query := url.Values{}
	query.Set("to", to)
	query.Set("amount", strconv.FormatFloat(amount, 'f', -1, 64))
	query.Set("tokenAddress", tokenAddress)
	return c.postJSON(ctx, c.endpoint("/token/faucet", query), nil, nil)
}

func (c *HTTPClient) endpoint(p string, query url.Values) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, p)
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}
	return endpoint.String()
}

func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, out)
}

func (c *HTTPClient) postJSON(ctx context.Context, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.do(req, out)
}

func (c *HTTPClient) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= http.StatusOK && resp.StatusCode < http.StatusMultipleChoices:
		if out == nil {
			return nil
		}
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, out)
	case resp.StatusCode == http.StatusNotFound:
		return domainErrors.ErrNotFound
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("directory request failed",
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("%w: %s", domainErrors.ErrUnavailable, resp.Status)
	}
}

// settle issues a settlement call; any non-success response maps to
// ErrSettlementFailed so the orchestrator can distinguish it from fetch
// failures.
func (c *HTTPClient) settle(ctx context.Context, endpoint string) (*SettlementReceipt, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainErrors.ErrSettlementFailed, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		c.logger.Error("settlement request failed",
			slog.String("path", req.URL.Path),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, fmt.Errorf("%w: %s", domainErrors.ErrSettlementFailed, resp.Status)
	}

	receipt := &SettlementReceipt{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, receipt); err != nil {
			return nil, err
		}
	}
	return receipt, nil
}

func toInvoice(p invoicePayload) model.Invoice {
	status := model.InvoiceStatus(p.Status)
	if status == "" {
		status = model.InvoiceStatusPending
	}
	return model.Invoice{
		ID:            p.ID,
		MerchantName:  p.Merchant.Name,
		Amount:        p.Amount,
		TokenID:       model.TokenID(p.TokenID),
		Description:   p.Details,
		Status:        status,
		PaymentTxHash: p.PaymentTxHash,
		CreatedAt:     p.CreatedAt,
	}
}
