package mcp

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"signal-desk/internal/domain"

	"github.com/rs/zerolog/log"
)

// Tool arguments are a pair and a limit; anything near this size is not a real request.
const maxRequestBytes int64 = 64 << 10

// requireSession accepts the same bearer session tokens the REST API issues.
func requireSession(next http.Handler, sessions SessionVerifier) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(strings.TrimSpace(r.Header.Get("Authorization")), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || sessions == nil {
			writeUnauthorized(w)
			return
		}
		user, err := sessions.Authenticate(r.Context(), token)
		if err != nil {
			if !errors.Is(err, domain.ErrAuthorization) {
				log.Error().Err(err).Msg("mcp session lookup failed")
			}
			writeUnauthorized(w)
			return
		}
		log.Debug().Str("user", user.Email).Str("method", r.Method).Msg("mcp request")
		next.ServeHTTP(w, r)
	})
}

func limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": "Unauthorized"})
}
