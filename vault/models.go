// Package vault implements the secrets-vault domain: credential entries with
// owner/shared access control, single-ADMIN identity bootstrap, token-gated
// onboarding, and password/PIN reset workflows.
package vault

import "time"

// Record kinds in the backing store.
const (
	kindUser          = "user"
	kindRole          = "role"
	kindUserRole      = "user_role"
	kindRoleHolder    = "role_holder"
	kindTempUser      = "temp_user"
	kindCredential    = "credential"
	kindShare         = "share"
	kindCategory      = "category"
	kindPasswordReset = "password_reset"
	kindPinReset      = "pin_reset"
)

// Role names. These double as role record ids; the catalog is immutable.
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User is a fully registered account.
type User struct {
	ID                   string    `json:"user_id"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	PasswordHash         string    `json:"master_password"`
	PinHash              string    `json:"pin_hash"`
	LastCredentialChange time.Time `json:"last_password_change"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Role is an immutable catalog entry.
type Role struct {
	ID   string `json:"role_id"`
	Name string `json:"role_name"`
}

// UserRoleAssignment joins a user to its single active role. Keyed by user id.
type UserRoleAssignment struct {
	UserID string `json:"user_id"`
	RoleID string `json:"role_id"`
}

// roleHolder is the storage-level singleton claiming a role that may be held
// by at most one user system-wide. Only written for ADMIN; the record id is
// the role name, so Create enforces uniqueness atomically.
type roleHolder struct {
	RoleID string `json:"role_id"`
	UserID string `json:"user_id"`
}

// TemporaryUser is a pending account awaiting token-based activation.
type TemporaryUser struct {
	ID               string    `json:"temp_id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	TempPasswordHash string    `json:"temp_password"`
	TempPinHash      string    `json:"temp_pin"`
	RoleID           string    `json:"role_id"`
	Token            string    `json:"token"`
	TokenExpiresAt   time.Time `json:"token_expires_at"`
	CreatedAt        time.Time `json:"created_at"`
}

// CredentialEntry is a stored secret record. The owner is immutable after
// creation and is the sole holder of delete and share-granting rights.
type CredentialEntry struct {
	ID              string    `json:"password_id"`
	OwnerID         string    `json:"user_id"`
	CategoryID      string    `json:"category_id,omitempty"`
	Title           string    `json:"title"`
	Username        string    `json:"username"`
	EncryptedSecret string    `json:"encrypted_password"`
	URL             string    `json:"url"`
	Notes           string    `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// ShareLevel is the permission granted by a share.
type ShareLevel string

const (
	ShareView ShareLevel = "VIEW"
	ShareEdit ShareLevel = "EDIT"
)

// Share grants one other user VIEW or EDIT access to one credential entry.
// At most one share exists per (credential, grantee) pair.
type Share struct {
	ID           string     `json:"share_id"`
	CredentialID string     `json:"password_id"`
	GranterID    string     `json:"shared_by_user_id"`
	GranteeID    string     `json:"shared_with_user_id"`
	Level        ShareLevel `json:"permission_level"`
	SharedAt     time.Time  `json:"shared_at"`
}

// Category is a user-owned tag for credential entries. Not authorization-relevant.
type Category struct {
	ID        string    `json:"category_id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ResetToken is a one-shot, time-boxed token tied to an account email.
// Password and PIN variants live under separate record kinds.
type ResetToken struct {
	ID        string    `json:"reset_id"`
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Token lifetimes.
const (
	ActivationTokenTTL = 24 * time.Hour
	ResetTokenTTL      = 1 * time.Hour
	AdminResetTokenTTL = 15 * time.Minute
	SessionTokenTTL    = 1 * time.Hour
)
