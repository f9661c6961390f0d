package services

import (
	"testing"

	"furniro_back_end/internal/config"
	"furniro_back_end/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestUnitPrice(t *testing.T) {
	cases := []struct {
		price, discount, want float64
	}{
		{100, 10, 90},
		{100, 0, 100},
		{100, 100, 0},
		{19.99, 15, 16.99},
		{250, 33.5, 166.25},
		{0, 50, 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, UnitPrice(tc.price, tc.discount), "%v @ %v%%", tc.price, tc.discount)
	}
}

func TestCheckoutUnitPrice(t *testing.T) {
	line := models.OrderLine{Quantity: 1, ListPrice: 100, Discount: 10, UnitPrice: 90}

	t.Run("sans remise supplémentaire, prix figé", func(t *testing.T) {
		changed := line
		changed.ListPrice = 500 // ne doit jamais être relu
		assert.True(t, decimal.NewFromInt(90).Equal(CheckoutUnitPrice(changed, 0, config.DiscountStack)))
	})

	t.Run("cumul", func(t *testing.T) {
		got := CheckoutUnitPrice(line, 3, config.DiscountStack)
		assert.True(t, decimal.NewFromInt(87).Equal(got), got.String())
	})

	t.Run("cumul plafonné à 100%", func(t *testing.T) {
		l := models.OrderLine{ListPrice: 100, Discount: 99, UnitPrice: 1}
		got := CheckoutUnitPrice(l, 3, config.DiscountStack)
		assert.True(t, got.IsZero(), got.String())
	})

	t.Run("remplacement par la plus forte remise", func(t *testing.T) {
		got := CheckoutUnitPrice(line, 3, config.DiscountSupersede)
		assert.True(t, decimal.NewFromInt(90).Equal(got), got.String())

		got = CheckoutUnitPrice(line, 25, config.DiscountSupersede)
		assert.True(t, decimal.NewFromInt(75).Equal(got), got.String())
	})

	t.Run("ligne sans instantané", func(t *testing.T) {
		l := models.OrderLine{UnitPrice: 200}
		got := CheckoutUnitPrice(l, 3, config.DiscountStack)
		assert.True(t, decimal.NewFromInt(194).Equal(got), got.String())
	})
}

func TestToCents(t *testing.T) {
	assert.Equal(t, int64(1699), ToCents(decimal.NewFromFloat(16.99)))
	assert.Equal(t, int64(9000), ToCents(decimal.NewFromInt(90)))
	assert.Equal(t, int64(1), ToCents(decimal.RequireFromString("0.005")))
}

func TestOrderTotal(t *testing.T) {
	o := &models.Order{Items: []models.OrderLine{
		{Quantity: 2, UnitPrice: 16.99},
		{Quantity: 1, UnitPrice: 90},
	}}
	assert.Equal(t, "123.98", OrderTotal(o).StringFixed(2))
}
