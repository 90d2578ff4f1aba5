package auth

import "errors"

// Domain failures. Handlers translate these to HTTP statuses; nothing
// below the transport layer ever sees a raw storage error.
var (
	// ErrInvalidCredentials deliberately covers unknown email, wrong
	// password, and inactive or deleted accounts, so a failed login
	// never reveals which factor failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrWeakPassword            = errors.New("password must be at least 8 characters")
	ErrInvalidToken            = errors.New("invalid token")
	ErrExpiredToken            = errors.New("token expired")
	ErrWrongTokenType          = errors.New("wrong token type")
	ErrInvalidCredentialFormat = errors.New("malformed credential digest")
	ErrUnauthenticated         = errors.New("unauthenticated")
	ErrForbidden               = errors.New("account inactive")
	ErrNotFound                = errors.New("user not found")
)
