package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func corsHandler(frontendURL string, isDev bool) http.Handler {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return CORS(frontendURL, isDev)(next)
}

func TestCORSDevAllowsAnyOrigin(t *testing.T) {
	t.Parallel()

	h := corsHandler("", true)

	req := httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("unexpected Allow-Origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "" {
		t.Errorf("credentials must not be allowed for a wildcard-matched origin, got %q", got)
	}
}

func TestCORSProductionAllowsOnlyFrontend(t *testing.T) {
	t.Parallel()

	h := corsHandler("https://chat.example.com", false)

	req := httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://chat.example.com" {
		t.Errorf("unexpected Allow-Origin %q", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("expected credentials for the explicit front-end origin, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/speakers", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unexpected Allow-Origin %q for a foreign origin", got)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	t.Parallel()

	h := corsHandler("https://chat.example.com", false)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://chat.example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", w.Code, http.StatusOK)
	}
	if got := w.Header().Get("Access-Control-Allow-Methods"); got == "" {
		t.Error("expected Allow-Methods on preflight response")
	}
}
