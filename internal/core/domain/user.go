package domain

import "errors"

// AccountActive is the status assigned to every account at signup.
const AccountActive = "active"

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User models an account holder.
type User struct {
	ID            int64  `db:"user_id"`
	Username      string `db:"username"`
	PasswordHash  string `db:"password_hash"`
	AccountStatus string `db:"acct_status"`
}
