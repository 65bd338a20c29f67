package auth

import (
	"fmt"
	"strings"
	"time"
)

// Role determines which operations a principal may invoke.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// ParseRole normalizes and validates a role string.
func ParseRole(s string) (Role, error) {
	switch Role(strings.TrimSpace(strings.ToLower(s))) {
	case RoleAdmin:
		return RoleAdmin, nil
	case RoleTeacher:
		return RoleTeacher, nil
	case RoleStudent:
		return RoleStudent, nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrInvalidInput, s)
}

// SelfRegisterable reports whether the role may be chosen at open
// registration. Admin accounts are never self-registrable.
func (r Role) SelfRegisterable() bool {
	return r == RoleTeacher || r == RoleStudent
}

// User is an account row. The password hash never crosses the JSON boundary.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity derived from a verified token.
// It is rebuilt per request and never persisted.
type Principal struct {
	ID   int64
	Role Role
}

// HasRole reports whether the principal's role is in the allowed set.
func (p Principal) HasRole(allowed ...Role) bool {
	for _, role := range allowed {
		if p.Role == role {
			return true
		}
	}
	return false
}
