package log

import (
	"bytes"
	"encoding/json"
	"errors"
	stdlog "log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"storefront/internal/domain"
)

func capture(t *testing.T, fn func()) []entry {
	t.Helper()
	var buf bytes.Buffer
	oldW, oldFlags := stdlog.Writer(), stdlog.Flags()
	stdlog.SetOutput(&buf)
	stdlog.SetFlags(0)
	defer func() {
		stdlog.SetOutput(oldW)
		stdlog.SetFlags(oldFlags)
	}()

	fn()

	var out []entry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var e entry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			out = append(out, e)
		}
	}
	return out
}

func TestWriteWithoutContext(t *testing.T) {
	entries := capture(t, func() {
		Error(nil, "order.abort.fail", errors.New("conn reset"), map[string]any{"order_id": "o1"})
	})
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "error" || e.Action != "order.abort.fail" || e.Err != "conn reset" {
		t.Fatalf("unexpected entry: %+v", e)
	}
	if e.Fields["order_id"] != "o1" {
		t.Fatalf("fields lost: %+v", e.Fields)
	}
}

func TestWriteCarriesRequestFields(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("user", &domain.User{ID: "u-1"})
		Audit(c, "thing.done", nil)
		return c.SendStatus(fiber.StatusNoContent)
	})

	entries := capture(t, func() {
		if _, err := app.Test(httptest.NewRequest("GET", "/x", nil)); err != nil {
			t.Fatal(err)
		}
	})
	if len(entries) != 1 {
		t.Fatalf("want 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Level != "audit" || e.Path != "/x" || e.Method != "GET" {
		t.Fatalf("request fields missing: %+v", e)
	}
	if e.ReqID == "" || e.UserID != "u-1" {
		t.Fatalf("req id / user id missing: %+v", e)
	}
}

func TestSecretFieldsRedacted(t *testing.T) {
	entries := capture(t, func() {
		Security(nil, "auth.login.fail", map[string]any{"password": "hunter2", "Session_Token": "abc", "reason": "bad"})
	})
	f := entries[0].Fields
	if f["password"] != "[redacted]" || f["Session_Token"] != "[redacted]" {
		t.Fatalf("secrets leaked: %+v", f)
	}
	if f["reason"] != "bad" {
		t.Fatalf("plain field lost: %+v", f)
	}
}

func TestTimingAndRole(t *testing.T) {
	app := fiber.New()
	app.Use(Timing())
	app.Get("/x", func(c *fiber.Ctx) error {
		c.Locals("session", domain.Session{ID: "s1", Role: domain.RoleAdmin})
		time.Sleep(2 * time.Millisecond)
		Info(c, "slow.thing", nil)
		return c.SendStatus(fiber.StatusOK)
	})
	entries := capture(t, func() {
		if _, err := app.Test(httptest.NewRequest("GET", "/x", nil)); err != nil {
			t.Fatal(err)
		}
	})
	if entries[0].Role != domain.RoleAdmin || entries[0].LatencyMs < 1 {
		t.Fatalf("role/latency missing: %+v", entries[0])
	}
}
