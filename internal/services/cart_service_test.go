package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/domain"
	"storefront/internal/repos"
	"storefront/internal/services"
)

func TestCart_AddUpdateFlowIntoCheckout(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	addProduct(t, db, "p1", "Tee", 100, domain.SizeStock{Size: "M", Stock: 5}, domain.SizeStock{Size: "L", Stock: 5})
	addUser(t, db, "u1")
	svc := services.NewCartService(repos.NewCartRepo(db), repos.NewProductRepo(db))

	require.NoError(t, svc.Add(ctx, "u1", "p1", "M"))
	require.NoError(t, svc.Add(ctx, "u1", "p1", "M"))
	require.NoError(t, svc.Add(ctx, "u1", "p1", "L"))
	require.NoError(t, svc.Update(ctx, "u1", "p1", "L", 3))

	cart, err := svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"p1": {"M": 2, "L": 3}}, cart)
	assert.Equal(t, 5, cart.Count())

	require.NoError(t, svc.Update(ctx, "u1", "p1", "L", 0))
	cart, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Cart{"p1": {"M": 2}}, cart)

	assert.ErrorIs(t, svc.Add(ctx, "u1", "p1", "XXL"), domain.ErrSizeNotFound)
	assert.ErrorIs(t, svc.Add(ctx, "u1", "ghost", "M"), domain.ErrProductNotFound)
	var ve *services.ValidationError
	assert.True(t, errors.As(svc.Add(ctx, "u1", "p1", " "), &ve))

	// checkout from the cart snapshot
	orders, _, _ := newOrderSvc(db)
	var lines []services.LineRequest
	for pid, sizes := range cart {
		for size, qty := range sizes {
			lines = append(lines, services.LineRequest{ProductID: pid, Size: string(size), Quantity: qty})
		}
	}
	_, err = orders.Place(ctx, placeReq("u1", 210, lines...))
	require.NoError(t, err)

	cart, err = svc.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cart)
}
