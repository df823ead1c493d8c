package auth

import "errors"

// The three terminal failure classes of the auth gate. Handlers map each
// class to a response status and nothing else; the wrapped detail (missing
// vs invalid vs expired credential) stays in server logs so the response
// cannot be used as a credential-guessing oracle.
var (
	// ErrUnauthenticated covers missing, unknown, and expired credentials.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden means the credential is valid but the account's role
	// does not satisfy the gate.
	ErrForbidden = errors.New("forbidden")

	// ErrAccountGone means a live session points at a user record that no
	// longer exists. This is store inconsistency, not a bad credential,
	// and is logged loudly.
	ErrAccountGone = errors.New("account for session not found")
)
