package usecase

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/adapter/directory"
	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

// TokenUseCase covers accepted-token administration and the test faucet.
type TokenUseCase struct {
	directory directory.Client
}

// NewTokenUseCase constructs TokenUseCase.
func NewTokenUseCase(dir directory.Client) *TokenUseCase {
	return &TokenUseCase{directory: dir}
}

// List fetches tokens registered with the directory.
func (u *TokenUseCase) List(ctx context.Context) ([]model.Token, error) {
	return u.directory.Tokens(ctx)
}

// Register adds a new accepted ERC-20 token.
func (u *TokenUseCase) Register(ctx context.Context, address, name string) error {
	address = strings.TrimSpace(address)
	if !common.IsHexAddress(address) {
		return domainErrors.ErrInvalidAddress
	}
	if strings.TrimSpace(name) == "" {
		return domainErrors.ErrInvalidAddress
	}
	return u.directory.RegisterToken(ctx, directory.CreateToken{
		Address: common.HexToAddress(address).Hex(),
		Name:    strings.TrimSpace(name),
	})
}

// Mint requests test tokens from the faucet.
func (u *TokenUseCase) Mint(ctx context.Context, to string, amount float64, tokenAddress string) error {
	if !common.IsHexAddress(to) || !common.IsHexAddress(tokenAddress) {
		return domainErrors.ErrInvalidAddress
	}
	if amount <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return u.directory.Mint(ctx, common.HexToAddress(to).Hex(), amount, common.HexToAddress(tokenAddress).Hex())
}
