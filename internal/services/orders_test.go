package services

import (
	"context"
	"testing"

	"furniro_back_end/internal/apperr"
	"furniro_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func seedProduct(t *testing.T, products *memProducts, name string, price, discount float64) models.Product {
	t.Helper()
	p := &models.Product{Name: name, Price: price, Discount: discount, Category: primitive.NewObjectID()}
	require.NoError(t, products.Create(context.Background(), p))
	return *p
}

func orderInput(items ...models.OrderItemInput) models.OrderInput {
	return models.OrderInput{
		Items:       items,
		FirstName:   "Jane",
		LastName:    "Doe",
		Country:     "Belgique",
		City:        "Bruxelles",
		Address:     "Rue Neuve 12",
		PostalCode:  "1000",
		PhoneNumber: "+32 470 12 34 56",
		Email:       "Jane.Doe@furniro.test",
	}
}

func TestOrderService_CreateFreezesUnitPrice(t *testing.T) {
	ctx := context.Background()
	products, orders, audit := newMemProducts(), newMemOrders(), &recordingAudit{}
	svc := NewOrderService(orders, products, audit)
	a := seedProduct(t, products, "Syltherine", 100, 10)

	order, err := svc.Create(ctx, orderInput(models.OrderItemInput{Product: a.ID.Hex(), Quantity: 1}))
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 90.0, order.Items[0].UnitPrice)
	assert.Equal(t, 100.0, order.Items[0].ListPrice)
	assert.Equal(t, 10.0, order.Items[0].Discount)
	assert.False(t, order.Paid)
	assert.False(t, order.ReminderSent)
	assert.Equal(t, "jane.doe@furniro.test", order.Email)

	// Le catalogue change, la commande non
	_, err = products.Update(ctx, a.ID, bson.M{"price": 200.0, "discount": 0.0})
	require.NoError(t, err)

	again, err := svc.Get(ctx, order.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, 90.0, again.Items[0].UnitPrice)

	assert.Equal(t, []string{models.ActionOrderCreate}, audit.actions())
}

func TestOrderService_CreateErrors(t *testing.T) {
	ctx := context.Background()
	products := newMemProducts()
	svc := NewOrderService(newMemOrders(), products, NoopAudit{})
	a := seedProduct(t, products, "Leviosa", 150, 0)

	cases := []struct {
		name string
		in   models.OrderInput
		kind apperr.Kind
	}{
		{"produit inexistant", orderInput(models.OrderItemInput{Product: primitive.NewObjectID().Hex(), Quantity: 1}), apperr.KindNotFound},
		{"id produit invalide", orderInput(models.OrderItemInput{Product: "abc", Quantity: 1}), apperr.KindValidation},
		{"panier vide", orderInput(), apperr.KindValidation},
		{"quantité nulle", orderInput(models.OrderItemInput{Product: a.ID.Hex(), Quantity: 0}), apperr.KindValidation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, tc.in)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperr.KindOf(err))
		})
	}

	t.Run("code postal", func(t *testing.T) {
		in := orderInput(models.OrderItemInput{Product: a.ID.Hex(), Quantity: 1})
		in.PostalCode = "75001"
		_, err := svc.Create(ctx, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})

	t.Run("téléphone", func(t *testing.T) {
		in := orderInput(models.OrderItemInput{Product: a.ID.Hex(), Quantity: 1})
		in.PhoneNumber = "12-34"
		_, err := svc.Create(ctx, in)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
	})
}

func TestOrderService_MarkPaidIsIdempotent(t *testing.T) {
	ctx := context.Background()
	orders, audit := newMemOrders(), &recordingAudit{}
	svc := NewOrderService(orders, newMemProducts(), audit)
	o := orders.put(models.Order{Email: "a@b.test"})

	changed, err := svc.MarkPaid(ctx, o.ID.Hex(), "session=cs_1")
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = svc.MarkPaid(ctx, o.ID.Hex(), "session=cs_1")
	require.NoError(t, err)
	assert.False(t, changed)

	assert.True(t, orders.get(o.ID).Paid)
	assert.Equal(t, 1, orders.paidUpdates)
	assert.Equal(t, []string{models.ActionOrderPaid}, audit.actions())
}

func TestOrderService_Delete(t *testing.T) {
	ctx := context.Background()
	orders, audit := newMemOrders(), &recordingAudit{}
	svc := NewOrderService(orders, newMemProducts(), audit)
	o := orders.put(models.Order{})

	require.NoError(t, svc.Delete(ctx, o.ID.Hex()))
	assert.True(t, apperr.Is(svc.Delete(ctx, o.ID.Hex()), apperr.KindNotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, "zzz"), apperr.KindValidation))
	assert.Equal(t, []string{models.ActionOrderDelete}, audit.actions())
}
