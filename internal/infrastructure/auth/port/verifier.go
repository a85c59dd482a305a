package port

import "errors"

// Verification failure kinds. Callers treat any of them as unauthorized; the
// split exists for logging and tests.
var (
	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrExpiredToken   = errors.New("auth: token expired")
	ErrMalformedToken = errors.New("auth: malformed token")
)

// Verifier turns an opaque bearer credential into a trusted subject id. The
// core never inspects credential internals; this is the whole trust boundary.
type Verifier interface {
	Verify(token string) (subjectID string, err error)
}
