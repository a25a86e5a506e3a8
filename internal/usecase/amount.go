package usecase

import (
	"math"
	"math/big"
	"strconv"

	domainErrors "github.com/payneu/gateway/internal/domain/errors"
	"github.com/payneu/gateway/internal/domain/model"
)

// tokenDecimals is the fractional precision of every accepted token.
const tokenDecimals = 18

// fallbackExchangeRate prices the fallback token against the invoice token:
// 1 invoice token = 10 fallback units.
var fallbackExchangeRate = big.NewRat(1, 10)

var baseUnitsPerToken = new(big.Int).Exp(big.NewInt(10), big.NewInt(tokenDecimals), nil)

// ApprovalAmount converts an invoice amount to the smallest-unit integer the
// ERC-20 approve call expects. The asset-fallback path divides by the fixed
// exchange rate before scaling.
func ApprovalAmount(amount float64, path model.PaymentPath) (*big.Int, error) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return nil, domainErrors.ErrInvalidAmount
	}

	rat, ok := new(big.Rat).SetString(strconv.FormatFloat(amount, 'f', -1, 64))
	if !ok {
		return nil, domainErrors.ErrInvalidAmount
	}

	if path == model.PathAssetFallback {
		rat.Quo(rat, fallbackExchangeRate)
	}

	rat.Mul(rat, new(big.Rat).SetInt(baseUnitsPerToken))
	return new(big.Int).Quo(rat.Num(), rat.Denom()), nil
}
