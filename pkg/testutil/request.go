// Package testutil holds small helpers shared across test packages.
package testutil

import (
	"net/http"

	id "chainpass/pkg/domain"
	"chainpass/pkg/requestcontext"
)

// AsCaller stamps a request with a caller identity, simulating what the
// auth middleware does for authenticated requests.
func AsCaller(req *http.Request, addr id.Address) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), addr))
}
