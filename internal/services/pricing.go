package services

import (
	"furniro_back_end/internal/config"
	"furniro_back_end/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// UnitPrice calcule price * (100 - discount) / 100, arrondi au centime.
func UnitPrice(price, discount float64) float64 {
	return discounted(decimal.NewFromFloat(price), decimal.NewFromFloat(discount)).InexactFloat64()
}

func discounted(price, discount decimal.Decimal) decimal.Decimal {
	discount = clampPercent(discount)
	return price.Mul(hundred.Sub(discount)).Div(hundred).Round(2)
}

func clampPercent(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	if d.GreaterThan(hundred) {
		return hundred
	}
	return d
}

// CheckoutUnitPrice retourne le prix d'une ligne à facturer, avec une remise
// supplémentaire éventuelle (relance). Sans remise supplémentaire le prix figé
// de la ligne est utilisé tel quel.
func CheckoutUnitPrice(line models.OrderLine, extra float64, policy string) decimal.Decimal {
	frozen := decimal.NewFromFloat(line.UnitPrice)
	if extra <= 0 {
		return frozen
	}
	extraD := decimal.NewFromFloat(extra)

	// Ligne sans instantané du catalogue : la remise s'applique au prix figé
	if line.ListPrice <= 0 {
		return discounted(frozen, extraD)
	}

	list := decimal.NewFromFloat(line.ListPrice)
	own := decimal.NewFromFloat(line.Discount)
	switch policy {
	case config.DiscountSupersede:
		return discounted(list, decimal.Max(own, extraD))
	default:
		return discounted(list, own.Add(extraD))
	}
}

// ToCents convertit un montant en centimes pour Stripe.
func ToCents(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

// OrderTotal somme les lignes au prix figé.
func OrderTotal(o *models.Order) decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Items {
		total = total.Add(decimal.NewFromFloat(l.UnitPrice).Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total
}
