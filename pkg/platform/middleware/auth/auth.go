// Package auth resolves the caller identity for downstream services.
// Two credentials exist: bearer tokens carrying a wallet address, and the
// authority API key that acts as the authority address directly.
package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	id "chainpass/pkg/domain"
	"chainpass/pkg/requestcontext"
)

// TokenValidator validates a bearer token and yields the caller's address.
type TokenValidator interface {
	ValidateToken(tokenString string) (id.Address, error)
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireIdentity rejects requests without a valid bearer token. Handlers
// behind it can rely on requestcontext.Caller being non-zero.
func RequireIdentity(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			// Earlier middleware (the authority key) may have resolved the
			// caller already.
			if !requestcontext.Caller(ctx).IsZero() {
				next.ServeHTTP(w, r)
				return
			}
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix)
			if !ok {
				if logger != nil {
					logger.WarnContext(ctx, "unauthorized access - missing token",
						"request_id", requestcontext.RequestID(ctx),
						"client_ip", requestcontext.ClientIP(ctx),
						"user_agent", requestcontext.UserAgent(ctx))
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "unauthorized access - invalid token",
						"error", err,
						"request_id", requestcontext.RequestID(ctx),
						"client_ip", requestcontext.ClientIP(ctx),
						"user_agent", requestcontext.UserAgent(ctx))
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, caller)))
		})
	}
}

// AuthorityKeyHeader carries the authority API key on registry writes.
const AuthorityKeyHeader = "X-Authority-Key"

// AuthorityKey lets the project authority act without a wallet token. When
// the presented key matches the stored bcrypt hash the caller becomes the
// authority address; otherwise the request continues unresolved and the
// service's own authority gate rejects it.
func AuthorityKey(keyHash []byte, authority id.Address, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := r.Header.Get(AuthorityKeyHeader)
			if key == "" || len(keyHash) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if err := bcrypt.CompareHashAndPassword(keyHash, []byte(key)); err != nil {
				if logger != nil {
					logger.WarnContext(ctx, "authority key mismatch",
						"request_id", requestcontext.RequestID(ctx),
						"client_ip", requestcontext.ClientIP(ctx),
						"user_agent", requestcontext.UserAgent(ctx))
				}
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid authority key")
				return
			}
			next.ServeHTTP(w, r.WithContext(requestcontext.WithCaller(ctx, authority)))
		})
	}
}

// OptionalIdentity resolves the caller when a bearer token is present but
// lets anonymous requests through. Read endpoints use it so public reads
// stay public while logs still name authenticated callers.
func OptionalIdentity(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const bearerPrefix = "Bearer "
			if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), bearerPrefix); ok {
				if caller, err := validator.ValidateToken(token); err == nil {
					r = r.WithContext(requestcontext.WithCaller(r.Context(), caller))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
