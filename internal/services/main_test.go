package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repos"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("database/sql.(*DB).connectionOpener"))
}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func addProduct(t *testing.T, db *sqlx.DB, id, name string, price float64, sizes ...domain.SizeStock) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repos.NewProductRepo(db).Create(ctx, &domain.Product{
		ID: id, Name: name, Price: price, Category: "Women", SubCategory: "Topwear",
		Images: []string{"a.png"}, CreatedAt: time.Now().UnixMilli(),
	}))
	require.NoError(t, repos.NewInventoryRepo(db).ReplaceSizeStock(ctx, id, sizes))
}

func addUser(t *testing.T, db *sqlx.DB, id string) {
	t.Helper()
	require.NoError(t, repos.NewUserRepo(db).Create(context.Background(), &domain.User{
		ID: id, Email: id + "@example.test", Name: id, Hash: "x", Role: domain.RoleUser,
	}))
}

func countOrders(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM orders`))
	var items int
	require.NoError(t, db.Get(&items, `SELECT COUNT(*) FROM order_items`))
	if n == 0 {
		require.Zero(t, items, "orphan order items")
	}
	return n
}

func ledger(t *testing.T, db *sqlx.DB, productID string) []domain.SizeStock {
	t.Helper()
	ss, err := repos.NewInventoryRepo(db).SizeStock(context.Background(), productID)
	require.NoError(t, err)
	return ss
}

type fakeCache struct {
	mu          sync.Mutex
	stored      []domain.Product
	gen         int64
	gets, sets  int
	invalidated int
}

func (f *fakeCache) Get(context.Context) ([]domain.Product, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.stored == nil {
		return nil, f.gen, cache.ErrCacheMiss
	}
	return f.stored, f.gen, nil
}

func (f *fakeCache) Set(_ context.Context, gen int64, ps []domain.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	if gen == f.gen {
		f.stored = ps
	}
	return nil
}

func (f *fakeCache) Invalidate(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated++
	f.gen++
	f.stored = nil
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	orders []domain.Order
	err    error
}

func (f *fakePublisher) PublishOrderPlaced(_ context.Context, o domain.Order) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.orders = append(f.orders, o)
	return nil
}

func (f *fakePublisher) Close() error { return nil }
