package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Config configures the SQLite store.
type Config struct {
	Path        string
	BusyTimeout time.Duration // 0 means default
}

// Organization is one tenant.
type Organization struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// User is a provisioned account. PasswordHash is a bcrypt hash; the
// plaintext never touches the store.
type User struct {
	ID           string
	Email        string
	FullName     string
	PasswordHash string
	CreatedAt    time.Time
}

// Membership binds a user to an organization with a role
// ("admin" or "viewer").
type Membership struct {
	OrgID  string
	UserID string
	Role   string
}

// Invite is a pending account provisioning token. Only the SHA-256 hash
// of the token is stored.
type Invite struct {
	ID        string
	OrgID     string
	Email     string
	Role      string
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	UsedBy    string
	CreatedAt time.Time
}

// Session is a logged-in bearer token (hash only).
type Session struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// PasswordReset is a single-use reset token (hash only).
type PasswordReset struct {
	TokenHash string
	UserID    string
	ExpiresAt time.Time
	UsedAt    *time.Time
}
