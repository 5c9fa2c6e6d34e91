package credential

import "errors"

var (
	// ErrNoSession means there is no signed-in session. It is not a failure.
	ErrNoSession = errors.New("credential: no session")

	// ErrMissingConfig is returned by ClientCredentials for incomplete configuration.
	ErrMissingConfig = errors.New("credential: incomplete client credentials configuration")

	// ErrEmptyToken is returned when a token source yields an empty access token.
	ErrEmptyToken = errors.New("credential: empty access token")
)
