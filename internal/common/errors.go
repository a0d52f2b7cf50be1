// Package common contains shared constants and sentinel errors used across
// Lumina server components. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal = errors.New("internal error")

	// registration / validation errors; these travel to the client as
	// machine-readable reason codes, never as raw internal messages
	ErrorUsernameInvalid  = errors.New("InvalidChars")
	ErrorUsernameTooShort = errors.New("TooShort")
	ErrorUsernameTooLong  = errors.New("TooLong")
	ErrorUsernameInUse    = errors.New("userExists")
	ErrorEmailInvalid     = errors.New("EmailInvalid")
	ErrorEmailInUse       = errors.New("emailExists")
	ErrorPasswordInvalid  = errors.New("PasswordInvalid")

	// session errors
	ErrorSessionTokenNotFound = errors.New("session token not found")
)
