// Package middleware provides HTTP middleware for the chat API.
package middleware

import "net/http"

// CORS returns middleware enforcing the same origin policy as the websocket
// handler: in development any origin may call the API, otherwise only the
// configured front-end origin. Credentials are only allowed for the explicit
// front-end origin; echoing a wildcard-matched origin with credentials
// enables CSRF.
func CORS(frontendURL string, isDev bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			explicit := origin != "" && origin == frontendURL
			if origin != "" && (isDev || explicit) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				if explicit {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
