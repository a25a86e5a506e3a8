package dto

import (
	"time"

	"github.com/payneu/gateway/internal/domain/model"
)

// TokenResponse represents an accepted ERC-20 token.
type TokenResponse struct {
	ID      int64     `json:"id"`
	Address string    `json:"address"`
	Symbol  string    `json:"symbol"`
	Name    string    `json:"name"`
	AddedAt time.Time `json:"added_at"`
}

// NewTokenResponse maps a domain token to its wire form.
func NewTokenResponse(token model.Token) TokenResponse {
	return TokenResponse{
		ID:      token.ID,
		Address: token.Address,
		Symbol:  token.Symbol,
		Name:    token.Name,
		AddedAt: token.AddedAt,
	}
}

// RegisterTokenRequest describes the admin token registration payload.
type RegisterTokenRequest struct {
	Address string `json:"address" binding:"required"`
	Name    string `json:"name" binding:"required"`
}

// MintRequest describes the faucet payload.
type MintRequest struct {
	To           string  `json:"to" binding:"required"`
	Amount       float64 `json:"amount" binding:"required"`
	TokenAddress string  `json:"token_address" binding:"required"`
}
