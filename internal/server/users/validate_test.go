package users

import (
	"errors"
	"testing"

	"github.com/lumina-social/lumina/internal/common"
)

func TestCheckUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     error
	}{
		{"plain", "username", nil},
		{"space rejected", "bad name", common.ErrorUsernameInvalid},
		{"discriminator of four digits", "user#1234", nil},
		{"discriminator of six digits", "user#123456", nil},
		{"discriminator of three digits", "user#123", common.ErrorUsernameInvalid},
		{"discriminator of five digits", "user#12345", common.ErrorUsernameInvalid},
		{"non numeric discriminator", "user#12a4", common.ErrorUsernameInvalid},
		{"separators allowed", "user.name-1", nil},
		{"underscore allowed", "user_name", nil},
		{"at sign rejected", "user@x", common.ErrorUsernameInvalid},
		{"quote rejected", `user"x"`, common.ErrorUsernameInvalid},
		{"backslash rejected", `user\x`, common.ErrorUsernameInvalid},
		{"parens rejected", "user(1)", common.ErrorUsernameInvalid},
		{"unicode letters allowed", "пользователь", nil},
		{"too short", "abc", common.ErrorUsernameTooShort},
		{"too long", "abcdefghijklmnopqrstu", common.ErrorUsernameTooLong},
		{"empty", "", common.ErrorUsernameTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckUsername(tt.username, 4, 20)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckUsername(%q) = %v, want %v", tt.username, err, tt.want)
			}
		})
	}
}

func TestIdentifierHasInvalidChars(t *testing.T) {
	tests := []struct {
		identifier string
		want       bool
	}{
		{"alice", false},
		{"alice@example.com", false},
		{"alice bob", true},
		{"alice'--", true},
		{"alice\n", true},
		{"alice`", true},
		{"ali/ce", true},
	}
	for _, tt := range tests {
		if got := IdentifierHasInvalidChars(tt.identifier); got != tt.want {
			t.Fatalf("IdentifierHasInvalidChars(%q) = %v, want %v", tt.identifier, got, tt.want)
		}
	}
}

func TestCheckEmail(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"alice@example.com", nil},
		{"a@b.co", nil},
		{"alice@sub.example.io", nil},
		{"@example.com", common.ErrorEmailInvalid},
		{"alice", common.ErrorEmailInvalid},
		{"alice@example", common.ErrorEmailInvalid},
		{"alice@.com", common.ErrorEmailInvalid},
		{"alice@example.", common.ErrorEmailInvalid},
		{"alice@example.toolonglabel", common.ErrorEmailInvalid},
	}
	for _, tt := range tests {
		if err := CheckEmail(tt.email); !errors.Is(err, tt.want) {
			t.Fatalf("CheckEmail(%q) = %v, want %v", tt.email, err, tt.want)
		}
	}
}

func TestCheckPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		want     error
	}{
		{"valid", "Secret123", nil},
		{"too short", "Ab1", common.ErrorPasswordInvalid},
		{"no uppercase", "secret123", common.ErrorPasswordInvalid},
		{"no lowercase", "SECRET123", common.ErrorPasswordInvalid},
		{"no digit", "SecretPass", common.ErrorPasswordInvalid},
		{"way too long", "Aa1" + string(make([]byte, 100)), common.ErrorPasswordInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckPassword(tt.password); !errors.Is(err, tt.want) {
				t.Fatalf("CheckPassword(%q) = %v, want %v", tt.password, err, tt.want)
			}
		})
	}
}
