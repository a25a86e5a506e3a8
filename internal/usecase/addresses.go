package usecase

import (
	"github.com/ethereum/go-ethereum/common"

	"github.com/payneu/gateway/internal/config"
)

// Addresses holds the fixed contract addresses the orchestrator approves
// against.
type Addresses struct {
	PaymentContract common.Address
	StableToken     common.Address
	FallbackToken   common.Address
}

// NewAddresses resolves contract addresses from configuration.
func NewAddresses(cfg *config.Config) Addresses {
	return Addresses{
		PaymentContract: common.HexToAddress(cfg.PaymentContractAddress),
		StableToken:     common.HexToAddress(cfg.StableTokenAddress),
		FallbackToken:   common.HexToAddress(cfg.FallbackTokenAddress),
	}
}

// ForSymbol resolves a token symbol to its contract address. Unrecognized
// symbols resolve to the invoice token address.
func (a Addresses) ForSymbol(symbol string) common.Address {
	if symbol == "BAZE" {
		return a.FallbackToken
	}
	return a.StableToken
}
