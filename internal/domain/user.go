package domain

import "time"

// User is an account known to the identity layer. IsStaff grants the
// "can manage events" capability.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	IsStaff      bool
	CreatedAt    time.Time
}

// CanManageEvents reports whether u may create events and edit its own.
func (u User) CanManageEvents() bool {
	return u.IsStaff
}
