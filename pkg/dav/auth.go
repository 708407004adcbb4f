package dav

import (
	"crypto/subtle"
	"encoding/base64"
	"net/http"

	"github.com/go-http-utils/headers"
)

// Credentials is the single static user the gateway accepts. Every
// request is compared against the same pair; there are no sessions.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) headerValue() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.Username+":"+c.Password))
}

// authorized reports whether the request carries exactly the expected
// Basic Authorization header. Missing, malformed and wrong credentials
// are indistinguishable to the caller.
func (c Credentials) authorized(r *http.Request) bool {
	got := []byte(r.Header.Get(headers.Authorization))
	want := []byte(c.headerValue())
	return subtle.ConstantTimeCompare(got, want) == 1
}
