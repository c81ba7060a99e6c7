package log

import (
	"encoding/json"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelAudit Level = "audit"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

type entry struct {
	TS        string         `json:"ts"`
	Level     Level          `json:"level"`
	ReqID     string         `json:"req_id,omitempty"`
	IP        string         `json:"ip,omitempty"`
	Method    string         `json:"method,omitempty"`
	Path      string         `json:"path,omitempty"`
	UserID    string         `json:"user_id,omitempty"`
	Role      string         `json:"role,omitempty"`
	Action    string         `json:"action,omitempty"`
	Status    int            `json:"status,omitempty"`
	LatencyMs int64          `json:"latency_ms,omitempty"`
	Err       string         `json:"err,omitempty"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// keys never written verbatim
var secretKeys = []string{"password", "token", "authorization", "secret"}

// Timing stamps the request start so entries can carry latency_ms.
func Timing() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("started", time.Now())
		return c.Next()
	}
}

func fromRequest(e *entry, c *fiber.Ctx) {
	e.IP = c.IP()
	e.Method = c.Method()
	e.Path = c.Path()
	e.Status = c.Response().StatusCode()
	if rid, ok := c.Locals("requestid").(string); ok {
		e.ReqID = rid
	}
	if u, ok := c.Locals("user").(*domain.User); ok && u != nil {
		e.UserID = u.ID
	}
	if s, ok := c.Locals("session").(domain.Session); ok {
		e.Role = s.Role
	}
	if start, ok := c.Locals("started").(time.Time); ok {
		e.LatencyMs = time.Since(start).Milliseconds()
	}
}

func redact(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return nil
	}
	out := make(map[string]any, len(fields))
	for k, v := range fields {
		out[k] = v
		lk := strings.ToLower(k)
		for _, s := range secretKeys {
			if strings.Contains(lk, s) {
				out[k] = "[redacted]"
				break
			}
		}
	}
	return out
}

// emit writes one JSON line through the std logger. c may be nil for work
// outside a request (publisher, after-commit hooks).
func emit(level Level, c *fiber.Ctx, action string, err error, fields map[string]any) {
	e := entry{
		TS:     time.Now().UTC().Format(time.RFC3339Nano),
		Level:  level,
		Action: action,
		Fields: redact(fields),
	}
	if c != nil {
		fromRequest(&e, c)
	}
	if err != nil {
		e.Err = err.Error()
	}
	b, _ := json.Marshal(e)
	log.Println(string(b))
}

func Info(c *fiber.Ctx, action string, fields map[string]any)  { emit(LevelInfo, c, action, nil, fields) }
func Audit(c *fiber.Ctx, action string, fields map[string]any) { emit(LevelAudit, c, action, nil, fields) }

// Security records denied access, throttling and rejected input.
func Security(c *fiber.Ctx, action string, fields map[string]any) {
	emit(LevelWarn, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	emit(LevelError, c, action, err, fields)
}
