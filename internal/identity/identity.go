// Package identity derives the pseudonymous voter token from a request's
// network origin. The token is the join key for both rate limiting and vote
// deduplication; the raw address is never stored.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
)

// Unknown is the sentinel address used when no forwarded header is present.
const Unknown = "unknown"

// ClientAddress extracts the originating client address from the standard
// X-Forwarded-For header, taking the first comma-separated entry. A missing
// or empty header yields the Unknown sentinel rather than an error.
func ClientAddress(r *http.Request) string {
	fwd := r.Header.Get("X-Forwarded-For")
	if fwd == "" {
		return Unknown
	}
	first := fwd
	if i := strings.Index(fwd, ","); i >= 0 {
		first = fwd[:i]
	}
	first = strings.TrimSpace(first)
	if first == "" {
		return Unknown
	}
	return first
}

// Token returns the one-way identity token for an address: a salted SHA-256
// digest as a fixed-length hex string. Deterministic per (salt, address) so
// it can key rate-limit and vote records across stateless instances.
func Token(salt, address string) string {
	sum := sha256.Sum256([]byte(salt + ":" + address))
	return hex.EncodeToString(sum[:])
}

// FromRequest derives the identity token straight from a request.
func FromRequest(salt string, r *http.Request) string {
	return Token(salt, ClientAddress(r))
}
