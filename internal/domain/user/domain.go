package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("account not found")
	ErrConflict = errors.New("account already exists")

	ErrRoleNotFound = errors.New("role not found")
)

// Account is owned by the account store. PasswordHash never leaves the
// service layer.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	RoleID       string    `json:"roleId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Lookup selects an account by username, email or both. When both are set
// the account must match both.
type Lookup struct {
	Username string
	Email    string
}

func (l Lookup) Empty() bool { return l.Username == "" && l.Email == "" }

type Permission string

const (
	PermissionCreate Permission = "CREATE"
	PermissionRead   Permission = "READ"
	PermissionUpdate Permission = "UPDATE"
	PermissionDelete Permission = "DELETE"
)

type Role struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Permissions []Permission `json:"permissions"`
}
