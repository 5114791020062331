// Package requestid tags every request with a correlation id. Inbound
// X-Request-ID values are honored so ids survive proxy hops; otherwise a
// fresh UUID is minted.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"chainpass/pkg/requestcontext"
)

const Header = "X-Request-ID"

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(Header, requestID)
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
