package naming

import (
	"github.com/collinsville22/pingmart/internal/domain"
	"github.com/shopspring/decimal"
)

// ProcessingFeeUSD is added on top of every base price.
var ProcessingFeeUSD = decimal.NewFromInt(1)

// BasePrice returns the static USD list price for one registration term.
// Short labels carry premium pricing on most chains.
func BasePrice(chain domain.Chain, label string) decimal.Decimal {
	n := len(label)
	switch chain {
	case domain.ChainEthereum:
		switch {
		case n <= 3:
			return decimal.NewFromInt(640)
		case n == 4:
			return decimal.NewFromInt(160)
		default:
			return decimal.NewFromInt(8)
		}
	case domain.ChainSolana:
		switch {
		case n <= 1:
			return decimal.NewFromInt(750)
		case n == 2:
			return decimal.NewFromInt(700)
		case n == 3:
			return decimal.NewFromInt(640)
		case n == 4:
			return decimal.NewFromInt(160)
		default:
			return decimal.NewFromInt(20)
		}
	case domain.ChainNear:
		return decimal.NewFromFloat(0.5)
	case domain.ChainBase:
		switch {
		case n <= 3:
			return decimal.NewFromInt(100)
		case n == 4:
			return decimal.NewFromInt(10)
		default:
			return decimal.NewFromFloat(0.1)
		}
	case domain.ChainArbitrum:
		switch {
		case n <= 3:
			return decimal.NewFromInt(640)
		case n == 4:
			return decimal.NewFromInt(160)
		default:
			return decimal.NewFromInt(8)
		}
	}
	return decimal.Zero
}

// Price returns the buyer-facing quote: base price plus processing fee.
func Price(chain domain.Chain, label string) decimal.Decimal {
	return BasePrice(chain, label).Add(ProcessingFeeUSD)
}
