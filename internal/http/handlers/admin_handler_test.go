package handlers_test

import "testing"

func TestAdminDeleteUserKeepsOrders(t *testing.T) {
	h := newHarness(t)
	user := h.login(t, demoEmail, demoPass)
	if code, body := h.call(t, "POST", "/api/order/place", user, placeBody("p-jog-001", "S", 1, 70)); code != 200 {
		t.Fatalf("place: %d %v", code, body)
	}
	admin := h.adminToken(t)

	var code int
	entries := captureLogs(t, func() {
		code, _ = h.call(t, "POST", "/api/admin/users/delete", admin, map[string]string{"userId": "u-demo"})
	})
	if code != 200 {
		t.Fatalf("delete: %d", code)
	}
	if e, ok := findLog(entries, "admin.users.delete"); !ok || e.Level != "audit" || e.Fields["target_user_id"] != "u-demo" {
		t.Fatalf("expected audit log, got %+v", entries)
	}

	if code, _ := h.call(t, "POST", "/api/cart/get", user, map[string]any{}); code != 401 {
		t.Fatalf("deleted user's token should fail, got %d", code)
	}
	if n := h.orderCount(t); n != 1 {
		t.Fatalf("orders must survive account deletion, got %d", n)
	}
	if code, _ := h.call(t, "POST", "/api/admin/users/delete", admin, map[string]string{"userId": "u-demo"}); code != 404 {
		t.Fatalf("second delete: want 404, got %d", code)
	}
	if code, body := h.call(t, "POST", "/api/admin/sessions/purge", admin, map[string]any{}); code != 200 || body["removed"] != float64(0) {
		t.Fatalf("purge: %d %v", code, body)
	}
}

func TestAdminDeleteUserMalformedBody(t *testing.T) {
	h := newHarness(t)
	admin := h.adminToken(t)

	req := newJSONRequest(t, "POST", "/api/admin/users/delete", []byte(`{"userId": "u-demo"`))
	req.Header.Set("Authorization", "Bearer "+admin)
	var code int
	var body map[string]any
	entries := captureLogs(t, func() {
		code, body = h.do(t, req)
	})
	if code != 400 || body["type"] != "INVALID_REQUEST" || body["message"] != "invalid request body" {
		t.Fatalf("want 400 INVALID_REQUEST, got %d %v", code, body)
	}
	e, ok := findLog(entries, "validation.fail")
	if !ok || e.Level != "warn" || e.Fields["reason"] != "body" || e.Fields["action"] != "admin.users.delete" {
		t.Fatalf("expected validation.fail log for the body, got %+v", entries)
	}

	// the account is untouched
	if code, _ := h.call(t, "POST", "/api/cart/get", h.login(t, demoEmail, demoPass), map[string]any{}); code != 200 {
		t.Fatalf("user should still exist, got %d", code)
	}
}
