package repos

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

//go:embed migrations
var migrationsFS embed.FS

// OpenDB connects to the configured engine and migrates it to the latest
// schema. driver is "sqlite" (modernc) or "postgres" (pgx stdlib).
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	switch driver {
	case "", "sqlite":
		return openSQLite(dsn)
	case "postgres":
		return openPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func openSQLite(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection: sqlite serializes writers anyway and ":memory:"
	// databases exist per connection. Anything run inside a tx must use the tx.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		db.Close()
		return nil, err
	}
	drv, err := sqlite.WithInstance(db.DB, &sqlite.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate driver: %w", err)
	}
	// The sqlite driver's Close would close db, so m is left open.
	if _, err := migrateUp("sqlite", drv); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openPostgres(dsn string) (*sqlx.DB, error) {
	// Migrations run on their own pool; the postgres driver pins a connection
	// and closes its *sql.DB on Close.
	mdb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	drv, err := postgres.WithInstance(mdb, &postgres.Config{})
	if err != nil {
		mdb.Close()
		return nil, fmt.Errorf("migrate driver: %w", err)
	}
	m, err := migrateUp("postgres", drv)
	if m != nil {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			log.Printf("[migrate] close: source=%v db=%v", srcErr, dbErr)
		}
	} else {
		mdb.Close()
	}
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetConnMaxIdleTime(5 * time.Minute)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func migrateUp(dialect string, drv database.Driver) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations/"+dialect)
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, dialect, drv)
	if err != nil {
		return nil, fmt.Errorf("migrate init: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return m, fmt.Errorf("migrate up: %w", err)
	}
	v, dirty, _ := m.Version()
	log.Printf("[migrate] %s schema at version %d (dirty=%v)", dialect, v, dirty)
	return m, nil
}

// SeedDemo loads a small catalog and one customer account into an empty
// database. Safe to call on every start.
func SeedDemo(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n == 0 {
		if err := seedProducts(db); err != nil {
			return err
		}
	}
	return seedUsers(db)
}

func seedProducts(db *sqlx.DB) error {
	log.Println("[seed] inserting demo products/size stock")

	type sz struct {
		size        string
		stock, sold int
	}
	type p struct {
		id, name, desc, cat, sub string
		price                    float64
		best                     bool
		img                      string
		sizes                    []sz
	}
	now := time.Now().UnixMilli()
	products := []p{
		{"p-tee-001", "Women Round Neck Cotton Top", "A lightweight, breathable cotton top.", "Women", "Topwear", 100, true,
			`["products/p-tee-001/main.png"]`, []sz{{"S", 12, 0}, {"M", 8, 0}, {"L", 5, 0}}},
		{"p-shirt-001", "Men Slim Fit Casual Shirt", "Slim fit shirt in brushed cotton.", "Men", "Topwear", 150, false,
			`["products/p-shirt-001/main.png"]`, []sz{{"M", 10, 0}, {"L", 10, 0}, {"XL", 4, 0}}},
		{"p-jog-001", "Kid Tapered Slim Fit Trouser", "Stretch trousers for everyday wear.", "Kids", "Bottomwear", 60, false,
			`["products/p-jog-001/main.png"]`, []sz{{"S", 6, 0}, {"M", 6, 0}}},
		{"p-jacket-001", "Men Printed Winter Jacket", "Padded jacket with a printed lining.", "Men", "Winterwear", 220, true,
			`["products/p-jacket-001/main.png"]`, []sz{{"L", 3, 0}, {"XL", 2, 0}, {"XXL", 0, 0}}},
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for i, x := range products {
		if _, err := tx.Exec(tx.Rebind(`
			INSERT INTO products(id,name,description,price,category,sub_category,bestseller,images_json,created_at)
			VALUES(?,?,?,?,?,?,?,?,?)
		`), x.id, x.name, x.desc, x.price, x.cat, x.sub, x.best, x.img, now+int64(i)); err != nil {
			return err
		}
		for pos, s := range x.sizes {
			if _, err := tx.Exec(tx.Rebind(`
				INSERT INTO product_sizes(product_id,size,position,stock,sold) VALUES(?,?,?,?,?)
			`), x.id, s.size, pos, s.stock, s.sold); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// seedUsers ensures the demo customer exists (idempotent).
func seedUsers(db *sqlx.DB) error {
	h, err := bcrypt.GenerateFromPassword([]byte("Passw0rd!"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = db.Exec(db.Rebind(`
		INSERT INTO users(id,email,name,password_hash,role,created_at)
		VALUES(?,?,?,?,?,?)
		ON CONFLICT DO NOTHING
	`), "u-demo", "demo@storefront.test", "Demo Customer", string(h), "USER", time.Now().UnixMilli())
	return err
}
