//go:build integration

package repos_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"storefront/internal/domain"
	"storefront/internal/repos"
)

func setupPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pg, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("shop"),
		postgres.WithPassword("shop"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := repos.OpenDB("postgres", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPostgres_SeedAndConcurrentSell(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	require.NoError(t, repos.SeedDemo(db))

	inv := repos.NewInventoryRepo(db)
	// p-jacket-001 size L starts with 3 units
	var wg sync.WaitGroup
	var mu sync.Mutex
	sold, short := 0, 0
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := inv.DecrementAndSell(ctx, "p-jacket-001", "L", 1)
			mu.Lock()
			defer mu.Unlock()
			var ise *domain.InsufficientStockError
			switch {
			case err == nil:
				sold++
			case errors.As(err, &ise):
				short++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 3, sold)
	assert.Equal(t, 5, short)

	ss, err := inv.SizeStock(ctx, "p-jacket-001")
	require.NoError(t, err)
	assert.Equal(t, domain.SizeStock{Size: "L", Stock: 0, Sold: 3}, ss[0])
}

func TestPostgres_OrdersRoundTrip(t *testing.T) {
	db := setupPostgres(t)
	ctx := context.Background()
	or := repos.NewOrderRepo(db)

	o := &domain.Order{ID: "o1", UserID: "u1", Amount: 20, PaymentMethod: domain.PaymentCOD,
		Status: domain.StatusPlaced, CreatedAt: time.Now().UnixMilli()}
	require.NoError(t, or.Create(ctx, o))
	require.NoError(t, or.InsertItem(ctx, "o1", 0, domain.OrderItem{ProductID: "p1", Name: "Tee", Size: "M", Quantity: 2, Price: 5}))

	got, err := or.Get(ctx, "o1")
	require.NoError(t, err)
	assert.False(t, got.Payment)
	assert.Equal(t, 10.0, got.ItemsTotal())
	require.NoError(t, or.UpdatePayment(ctx, "o1", true))
}
