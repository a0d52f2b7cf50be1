package users

import (
	"strings"
	"unicode"

	"github.com/lumina-social/lumina/internal/common"
)

// disallowedIdentifierRune reports whether a character may never appear in a
// login identifier (username or email typed into the login form).
func disallowedIdentifierRune(r rune) bool {
	switch r {
	case ' ', '\\', '/', '\n', '\r', '\t', '\v', '\'', '"', '(', ')', '`':
		return true
	}
	return false
}

// IdentifierHasInvalidChars reports whether a login identifier contains any
// character from the disallowed set. Used to reject obviously hostile input
// before any storage lookup happens.
func IdentifierHasInvalidChars(identifier string) bool {
	return strings.ContainsFunc(identifier, disallowedIdentifierRune)
}

// UsernameHasInvalidChars applies the registration character rules:
//
//   - no character from the disallowed identifier set;
//   - a '#' is only allowed when the suffix after the first '#' is purely
//     numeric with exactly 4 or 6 digits (a discriminator like "user#1234");
//   - after stripping '_', '-', '.' and the first '#', every remaining
//     character must be alphanumeric.
func UsernameHasInvalidChars(username string) bool {
	if strings.ContainsFunc(username, disallowedIdentifierRune) {
		return true
	}

	if i := strings.IndexByte(username, '#'); i >= 0 {
		suffix := username[i+1:]
		if len(suffix) != 4 && len(suffix) != 6 {
			return true
		}
		for _, r := range suffix {
			if r < '0' || r > '9' {
				return true
			}
		}
	}

	stripped := strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == '.' {
			return -1
		}
		return r
	}, username)
	stripped = strings.Replace(stripped, "#", "", 1)

	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// CheckUsername validates a candidate username against the character rules
// and the configured length bounds. The returned sentinel doubles as the
// machine-readable "Why" code of the precheck endpoint.
func CheckUsername(username string, minLength, maxLength int) error {
	if UsernameHasInvalidChars(username) {
		return common.ErrorUsernameInvalid
	}
	if len(username) < minLength {
		return common.ErrorUsernameTooShort
	}
	if len(username) > maxLength {
		return common.ErrorUsernameTooLong
	}
	return nil
}

// CheckEmail is a structural check, not RFC 5322: an '@' with a non-empty
// local part, and a domain containing a '.' with a final label of 1 to 6
// characters. It rejects obviously malformed addresses and accepts the rest.
func CheckEmail(email string) error {
	at := strings.IndexByte(email, '@')
	if at < 1 {
		return common.ErrorEmailInvalid
	}
	domain := email[at+1:]
	lastDot := strings.LastIndexByte(domain, '.')
	if lastDot <= 0 {
		return common.ErrorEmailInvalid
	}
	label := domain[lastDot+1:]
	if len(label) < 1 || len(label) > 6 {
		return common.ErrorEmailInvalid
	}
	return nil
}

// CheckPassword enforces the registration password policy: 8 to 100
// characters with at least one uppercase letter, one lowercase letter and
// one digit.
func CheckPassword(password string) error {
	if len(password) < 8 || len(password) > 100 {
		return common.ErrorPasswordInvalid
	}
	var upper, lower, digit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !upper || !lower || !digit {
		return common.ErrorPasswordInvalid
	}
	return nil
}
