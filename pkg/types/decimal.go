package types

import "github.com/shopspring/decimal"

// Fixed scales for persisted decimals. Rounding is half-up.
const (
	QuantityScale = 3
	MoneyScale    = 2
)

func RoundQuantity(d decimal.Decimal) decimal.Decimal {
	return d.Round(QuantityScale)
}

func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyScale)
}

// Subtotal is qty x price rounded to cents; an absent price yields zero.
func Subtotal(qty decimal.Decimal, price decimal.NullDecimal) decimal.Decimal {
	if !price.Valid {
		return decimal.Zero
	}
	return RoundMoney(qty.Mul(price.Decimal))
}
