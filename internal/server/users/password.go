package users

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the password-at-rest capability. The gateway stores
// salted one-way hashes; the interface exists so the scheme is an explicit,
// swappable dependency rather than an assumption baked into the
// authenticator.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hashed, candidate string) bool
}

// BcryptHasher hashes passwords with bcrypt at a configurable cost.
type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *BcryptHasher) Compare(hashed, candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(candidate)) == nil
}
