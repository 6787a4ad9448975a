package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"signal-desk/internal/domain"
)

func TestGetSettingsReturnsDefaults(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, userEmail, userPassword)

	w := env.do(t, http.MethodGet, "/api/settings", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp struct {
		Settings domain.Settings `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if resp.Settings != domain.DefaultSettings() {
		t.Fatalf("unexpected settings: %+v", resp.Settings)
	}
}

func TestPutSettingsAdminOnly(t *testing.T) {
	env := newTestEnv(t)
	token := env.login(t, userEmail, userPassword)

	w := env.do(t, http.MethodPut, "/api/settings", token, domain.Settings{MinimumSignalQuality: 10, IndicatorSensitivity: 1})
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
	if msg := decodeError(t, w); msg != "Forbidden" {
		t.Fatalf("unexpected error %q", msg)
	}
	if env.gate.Read() != domain.DefaultSettings() {
		t.Fatalf("settings changed by non-admin: %+v", env.gate.Read())
	}
}

func TestPutSettingsAnonymousIsForbidden(t *testing.T) {
	env := newTestEnv(t)

	for _, token := range []string{"", "expired-or-forged"} {
		w := env.do(t, http.MethodPut, "/api/settings", token, domain.Settings{MinimumSignalQuality: 10, IndicatorSensitivity: 1})
		if w.Code != http.StatusForbidden {
			t.Fatalf("token %q: expected 403, got %d", token, w.Code)
		}
		if msg := decodeError(t, w); msg != "Forbidden" {
			t.Fatalf("token %q: unexpected error %q", token, msg)
		}
	}
	if env.gate.Read() != domain.DefaultSettings() {
		t.Fatalf("settings changed without an admin: %+v", env.gate.Read())
	}

	// reads still require a session
	if w := env.do(t, http.MethodGet, "/api/settings", "", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous read, got %d", w.Code)
	}
}

func TestPutSettingsAppliesToQueries(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, adminEmail, adminPassword)
	env.record("EUR/USD", 50)

	w := env.do(t, http.MethodPut, "/api/settings", admin, domain.Settings{MinimumSignalQuality: 40, IndicatorSensitivity: 1.5})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Settings domain.Settings `json:"settings"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if resp.Settings.MinimumSignalQuality != 40 || resp.Settings.IndicatorSensitivity != 1.5 {
		t.Fatalf("unexpected settings: %+v", resp.Settings)
	}

	w = env.do(t, http.MethodGet, "/api/signals", admin, nil)
	var list struct {
		Signals []domain.Signal `json:"signals"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(list.Signals) != 1 {
		t.Fatalf("lowered threshold should expose the stored signal, got %+v", list.Signals)
	}
}

func TestPutSettingsRejectsInvalid(t *testing.T) {
	env := newTestEnv(t)
	admin := env.login(t, adminEmail, adminPassword)

	bodies := []any{
		domain.Settings{MinimumSignalQuality: 101, IndicatorSensitivity: 1},
		domain.Settings{MinimumSignalQuality: 50, IndicatorSensitivity: 0.1},
		map[string]any{"minimumSignalQuality": 50},
		map[string]any{"minimumSignalQuality": "high", "indicatorSensitivity": 1},
	}
	for _, body := range bodies {
		w := env.do(t, http.MethodPut, "/api/settings", admin, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%+v: expected 400, got %d", body, w.Code)
		}
	}
	if env.gate.Read() != domain.DefaultSettings() {
		t.Fatalf("invalid writes must not change settings: %+v", env.gate.Read())
	}
}
