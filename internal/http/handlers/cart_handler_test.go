package handlers_test

import "testing"

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	tok := h.login(t, demoEmail, demoPass)

	for i := 0; i < 2; i++ {
		if code, body := h.call(t, "POST", "/api/cart/add", tok, map[string]string{"itemId": "p-jog-001", "size": "S"}); code != 200 {
			t.Fatalf("add: %d %v", code, body)
		}
	}
	h.call(t, "POST", "/api/cart/add", tok, map[string]string{"itemId": "p-jog-001", "size": "M"})

	_, body := h.call(t, "POST", "/api/cart/get", tok, map[string]any{})
	jog := body["cartData"].(map[string]any)["p-jog-001"].(map[string]any)
	if jog["S"] != float64(2) || jog["M"] != float64(1) {
		t.Fatalf("unexpected cart: %v", body)
	}

	h.call(t, "POST", "/api/cart/update", tok, map[string]any{"itemId": "p-jog-001", "size": "S", "quantity": 5})
	h.call(t, "POST", "/api/cart/update", tok, map[string]any{"itemId": "p-jog-001", "size": "M", "quantity": 0})
	_, body = h.call(t, "POST", "/api/cart/get", tok, map[string]any{})
	jog = body["cartData"].(map[string]any)["p-jog-001"].(map[string]any)
	if jog["S"] != float64(5) || len(jog) != 1 {
		t.Fatalf("update should set S and drop M: %v", body)
	}
}

func TestCartRejectsUnknownItems(t *testing.T) {
	h := newHarness(t)
	tok := h.login(t, demoEmail, demoPass)

	cases := []struct {
		name string
		body map[string]string
		code int
	}{
		{"unknown product", map[string]string{"itemId": "ghost", "size": "M"}, 404},
		{"size not offered", map[string]string{"itemId": "p-jog-001", "size": "XL"}, 400},
		{"missing size", map[string]string{"itemId": "p-jog-001"}, 400},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if code, body := h.call(t, "POST", "/api/cart/add", tok, tc.body); code != tc.code {
				t.Fatalf("want %d, got %d %v", tc.code, code, body)
			}
		})
	}
	if code, _ := h.call(t, "POST", "/api/cart/get", "", map[string]any{}); code != 401 {
		t.Fatalf("anonymous cart: want 401, got %d", code)
	}
}
