// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package auth

import (
	"net/http"
)

// AuthError is a failed verification, with a hint how to answer the request that carried the token.
type AuthError interface {
	error

	// SuggestedResponseCode gives a HTTP status code.
	SuggestedResponseCode() int
}

// tokenError implements AuthError.
type tokenError struct {
	reason string
	status int
}

func (e *tokenError) Error() string { return e.reason }

func (e *tokenError) SuggestedResponseCode() int { return e.status }

// malformed is for input that is formally wrong, and can be rejected without looking up any secret.
func malformed(reason string) error {
	return &tokenError{reason: reason, status: http.StatusBadRequest}
}

// Errors returned by Verify.
var (
	errTokenMalformed = malformed("Token is malformed")

	// The client might retry with a token signed by a different key.
	errTokenUnknownKey = &tokenError{"Token has been signed with an unknown key", http.StatusUnauthorized}

	// The token has been tampered with, or is meant for a different transaction.
	errTokenMismatch = &tokenError{"Token does not match", http.StatusForbidden}
	errNoSecret      = &tokenError{"No secret to sign with", http.StatusForbidden}
)
