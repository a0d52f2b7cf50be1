package users

import "time"

// User is a locally registered account. PasswordHash is the bcrypt hash of
// the password; it never leaves the server.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
