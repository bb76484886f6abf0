package model

import (
	"fmt"
	"time"
)

// User represents an account in any of the four roles. Department is set for
// employees and department heads, empty for admin and store accounts.
type User struct {
	ID           int64      `json:"id"`
	EmpID        string     `json:"emp_id"`
	Email        string     `json:"email"`
	Name         string     `json:"name"`
	Department   string     `json:"department,omitempty"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin    = "admin"
	RoleHead     = "head"
	RoleStore    = "store"
	RoleEmployee = "employee"
)

// ValidRole reports whether role is one of the four known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleHead, RoleStore, RoleEmployee:
		return true
	}
	return false
}

// ValidatePassword checks password strength requirements.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}
