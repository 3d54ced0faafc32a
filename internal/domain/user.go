package domain

import "time"

// UserRole enumerates access levels.
type UserRole string

const (
	UserRoleReporter UserRole = "REPORTER"
	UserRoleHandler  UserRole = "HANDLER"
	UserRoleAdmin    UserRole = "ADMIN"
)

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is the domain model for anyone who reports or handles issues.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanHandle reports whether the user may act on issues beyond reporting.
func (u *User) CanHandle() bool {
	return u.Role == UserRoleHandler || u.Role == UserRoleAdmin
}
