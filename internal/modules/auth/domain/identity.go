package domain

import "strings"

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// ParseRole is case-insensitive; anything that is not ADMIN is a plain user.
func ParseRole(raw string) Role {
	if strings.EqualFold(strings.TrimSpace(raw), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleUser
}

type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// Grant is what a successful remote login or registration hands back.
type Grant struct {
	Token    string
	Identity Identity
}

// Account is a local directory entry used when offline login is enabled.
type Account struct {
	Identity     Identity
	PasswordHash string
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
