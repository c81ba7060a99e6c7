package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jmoiron/sqlx"

	"storefront/internal/cache"
	"storefront/internal/config"
	"storefront/internal/events"
	"storefront/internal/http/handlers"
	"storefront/internal/media"
	"storefront/internal/repos"
	"storefront/web"
)

const (
	adminEmail = "admin@storefront.test"
	adminPass  = "s3cret-admin-pass"
	demoEmail  = "demo@storefront.test"
	demoPass   = "Passw0rd!"
)

type harness struct {
	app   *fiber.App
	db    *sqlx.DB
	store *media.Store
}

// newHarness builds the full app over a seeded in-memory database.
func newHarness(t *testing.T) *harness {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := repos.SeedDemo(db); err != nil {
		t.Fatalf("seed: %v", err)
	}
	store, err := media.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("media: %v", err)
	}
	cfg := config.Config{
		AdminEmail:     adminEmail,
		AdminPassword:  adminPass,
		SessionTTL:     time.Hour,
		DeliveryCharge: 10,
	}
	app := fiber.New(fiber.Config{Views: web.Engine(), ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	handlers.Mount(app, handlers.NewDeps(db, cfg, cache.Noop{}, events.Noop{}, store))
	return &harness{app: app, db: db, store: store}
}

// call sends a JSON request and decodes the JSON envelope if there is one.
func (h *harness) call(t *testing.T, method, path, token string, body any) (int, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return h.do(t, req)
}

func newJSONRequest(t *testing.T, method, path string, body []byte) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (h *harness) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	out := map[string]any{}
	if len(raw) > 0 && raw[0] == '{' {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode %s: %v", raw, err)
		}
	} else {
		out["raw"] = string(raw)
	}
	return resp.StatusCode, out
}

func (h *harness) login(t *testing.T, email, pass string) string {
	t.Helper()
	code, body := h.call(t, "POST", "/api/user/login", "", map[string]string{"email": email, "password": pass})
	if code != 200 || body["success"] != true {
		t.Fatalf("login %s: %d %v", email, code, body)
	}
	return body["token"].(string)
}

func (h *harness) adminToken(t *testing.T) string {
	t.Helper()
	code, body := h.call(t, "POST", "/api/user/admin", "", map[string]string{"email": adminEmail, "password": adminPass})
	if code != 200 {
		t.Fatalf("admin login: %d %v", code, body)
	}
	return body["token"].(string)
}

func (h *harness) stock(t *testing.T, productID, size string) (stock, sold int) {
	t.Helper()
	row := h.db.QueryRow(`SELECT stock, sold FROM product_sizes WHERE product_id = ? AND size = ?`, productID, size)
	if err := row.Scan(&stock, &sold); err != nil {
		t.Fatalf("stock %s/%s: %v", productID, size, err)
	}
	return stock, sold
}

func (h *harness) orderCount(t *testing.T) int {
	t.Helper()
	var n int
	if err := h.db.Get(&n, `SELECT COUNT(*) FROM orders`); err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	Err    string         `json:"err"`
	Fields map[string]any `json:"fields"`
}

// captureLogs swaps the standard logger output for the duration of fn.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW, oldFlags := log.Writer(), log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e logEntry
		if err := json.Unmarshal([]byte(strings.TrimSpace(line)), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

func findLog(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}

func address() map[string]string {
	return map[string]string{
		"firstName": "Ada", "lastName": "L", "email": "ada@example.test", "street": "1 Main St",
		"city": "Springfield", "state": "IL", "zipcode": "62701", "country": "US", "phone": "5550100",
	}
}
