package model

import "time"

// TokenID enumerates tokens known to the directory.
type TokenID int64

const (
	TokenMUSD TokenID = 1
	TokenBAZE TokenID = 2
	TokenNEU  TokenID = 3
)

// SymbolUnknown is the canonical symbol for unrecognized token identifiers.
const SymbolUnknown = "Unknown"

// Symbol maps token identifier to its display symbol.
func (id TokenID) Symbol() string {
	switch id {
	case TokenMUSD:
		return "mUSD"
	case TokenBAZE:
		return "BAZE"
	case TokenNEU:
		return "NEU"
	default:
		return SymbolUnknown
	}
}

// Token describes an ERC-20 token registered with the directory.
type Token struct {
	ID      int64
	Address string
	Symbol  string
	Name    string
	AddedAt time.Time
}
