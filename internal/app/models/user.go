package models

import (
	"time"
)

// Role is the authorization class governing which operations an identity
// may invoke. Exactly one Role row exists per identity in user_roles, and a
// missing row means the identity is role-less, not defaulted.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known classes.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User defines the identity model based on the 'users' table. It also backs
// the student directory (the profile projection: id, full name, email).
type User struct {
	ID            int64     `json:"id" db:"id"`
	Email         string    `json:"email" db:"email"`
	Password      string    `json:"-" db:"password"`
	FullName      string    `json:"fullName" db:"full_name"`
	IsActive      bool      `json:"isActive" db:"is_active"`
	EmailVerified bool      `json:"emailVerified" db:"email_verified"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time `json:"updatedAt" db:"updated_at"`
}

// UserRole defines a durable role record based on the 'user_roles' table.
type UserRole struct {
	UserID    int64     `json:"userId" db:"user_id"`
	Role      Role      `json:"role" db:"role"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}
