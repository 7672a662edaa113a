package types

import "github.com/shopspring/decimal"

// Instrument is the static per-book trading configuration: who owns
// the book, the tick/lot precisions, and the minimum resting size.
type Instrument struct {
	Owner         Address `json:"owner"`
	PriceDecimals uint8   `json:"price_decimals"`
	SizeDecimals  uint8   `json:"size_decimals"`
	MinSizeAmount Uint64  `json:"min_size_amount"`
	BaseDecimals  uint8   `json:"base_decimals"`
	QuoteDecimals uint8   `json:"quote_decimals"`
}

// QuotePrice converts a price in ticks to quote-coin units.
func (in Instrument) QuotePrice(ticks uint64) decimal.Decimal {
	return decimal.New(int64(ticks), -int32(in.PriceDecimals))
}

// BaseSize converts a size in lots to base-coin units.
func (in Instrument) BaseSize(lots uint64) decimal.Decimal {
	return decimal.New(int64(lots), -int32(in.SizeDecimals))
}

// MinBaseSize returns the minimum order size in base-coin units.
func (in Instrument) MinBaseSize() decimal.Decimal {
	return in.BaseSize(uint64(in.MinSizeAmount))
}
