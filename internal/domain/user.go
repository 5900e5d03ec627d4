package domain

import "time"

// Role distinguishes administrators from regular members. It replaces a
// boolean admin flag so policy code can switch over it exhaustively.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// IsAdmin reports whether the role carries administrative capabilities.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is the account model for everyone who can sign in, both ticket
// submitters and administrators.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
}
