package dav

import (
	"net/http"
	"strings"

	"github.com/go-http-utils/headers"
)

// setCORSHeaders decorates every response, the 401 included, so
// browser-based clients can read WebDAV headers across origins.
// Credentialed CORS is deliberately not enabled.
func setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get(headers.Origin)
	if origin == "" {
		origin = "*"
	}
	h := w.Header()
	h.Set(headers.AccessControlAllowOrigin, origin)
	h.Set(headers.AccessControlAllowMethods, strings.Join(Methods, ", "))
	h.Set(headers.AccessControlAllowHeaders, strings.Join(allowedHeaders, ", "))
	h.Set(headers.AccessControlExposeHeaders, strings.Join(exposedHeaders, ", "))
	h.Set(headers.AccessControlMaxAge, "86400")
}
