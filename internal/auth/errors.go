package auth

import "errors"

var (
	ErrNotFound     = errors.New("auth: not found")
	ErrEmailTaken   = errors.New("auth: email already registered")
	ErrInvalidInput = errors.New("auth: invalid input")

	// ErrInvalidCredentials covers unknown email and password mismatch alike,
	// so the login response does not reveal which one failed.
	ErrInvalidCredentials = errors.New("auth: invalid credentials")

	// ErrForbidden marks a role or ownership mismatch for an authenticated
	// principal, as opposed to ErrInvalidToken which precedes it.
	ErrForbidden = errors.New("auth: forbidden")
)

// ErrInvalidToken indicates the token failed validation.
var ErrInvalidToken = errors.New("invalid token")
