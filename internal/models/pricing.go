package models

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// EffectivePrice is price × (1 − discount/100), rounded to cents.
func EffectivePrice(price, discount float64) decimal.Decimal {
	p := decimal.NewFromFloat(price)
	d := decimal.NewFromFloat(discount)
	return p.Mul(hundred.Sub(d)).Div(hundred).Round(2)
}

func (p *Product) EffectivePrice() decimal.Decimal {
	return EffectivePrice(p.Price, p.Discount)
}

func LineTotal(unit float64, quantity int) decimal.Decimal {
	return decimal.NewFromFloat(unit).Mul(decimal.NewFromInt(int64(quantity)))
}

// SumItems totals order lines from their snapshotted prices.
func SumItems(items []OrderItem) float64 {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineTotal(it.PriceAtPurchase, it.Quantity))
	}
	return total.Round(2).InexactFloat64()
}
