package api

import "time"

// RegisterRequest is the JSON body for POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

// RegisterResponse is returned from POST /auth/register.
type RegisterResponse struct {
	UserID string `json:"user_id"`
}

// LoginRequest is the JSON body for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is returned from POST /auth/login.
type LoginResponse struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ChangeCredentialsRequest is the JSON body for POST /auth/change-credentials.
type ChangeCredentialsRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	NewPin          string `json:"new_pin"`
}

// ActivateRequest is the JSON body for POST /auth/activate.
type ActivateRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
}

// ActivateResponse is returned from POST /auth/activate.
type ActivateResponse struct {
	UserID string `json:"user_id"`
}

// EmailRequest carries a bare email address (reset requests, lookups).
type EmailRequest struct {
	Email string `json:"email"`
}

// ConsumeResetRequest is the JSON body for PUT /resets/password and
// PUT /resets/pin. NewSecret is the new password or PIN respectively.
type ConsumeResetRequest struct {
	Token     string `json:"token"`
	NewSecret string `json:"new_secret"`
}

// CreateCredentialRequest is the JSON body for POST /credentials.
type CreateCredentialRequest struct {
	Title      string `json:"title"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	URL        string `json:"url"`
	CategoryID string `json:"category_id"`
	Notes      string `json:"notes,omitempty"`
}

// CreateCredentialResponse is returned from POST /credentials.
type CreateCredentialResponse struct {
	CredentialID string `json:"credential_id"`
}

// UpdateCredentialRequest is the JSON body for PUT /credentials/{id}.
// Absent fields are left unchanged.
type UpdateCredentialRequest struct {
	Title      *string `json:"title,omitempty"`
	Username   *string `json:"username,omitempty"`
	Password   *string `json:"password,omitempty"`
	URL        *string `json:"url,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// CredentialResponse is returned from GET /credentials/{id}. The only
// response in the API carrying a plaintext secret.
type CredentialResponse struct {
	CredentialID string    `json:"credential_id"`
	Title        string    `json:"title"`
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	URL          string    `json:"url"`
	CategoryID   string    `json:"category_id,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	AccessType   string    `json:"access_type"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// CredentialSummary is one row of GET /credentials. Never carries a secret.
type CredentialSummary struct {
	CredentialID string    `json:"credential_id"`
	Title        string    `json:"title"`
	Username     string    `json:"username"`
	URL          string    `json:"url"`
	CategoryID   string    `json:"category_id,omitempty"`
	AccessType   string    `json:"access_type"`
	SharedBy     string    `json:"shared_by,omitempty"`
	ShareLevel   string    `json:"share_level,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// ListCredentialsResponse is returned from GET /credentials.
type ListCredentialsResponse struct {
	Total       int                 `json:"total"`
	Credentials []CredentialSummary `json:"credentials"`
}

// ShareRequest is the JSON body for POST /credentials/{id}/shares.
type ShareRequest struct {
	UserID string `json:"user_id"`
	Level  string `json:"level"`
}

// ShareResponse is returned from POST /credentials/{id}/shares.
type ShareResponse struct {
	ShareID string `json:"share_id"`
}

// ShareSummary is one row of GET /credentials/{id}/shares.
type ShareSummary struct {
	ShareID  string    `json:"share_id"`
	UserID   string    `json:"user_id"`
	Level    string    `json:"level"`
	SharedBy string    `json:"shared_by"`
	SharedAt time.Time `json:"shared_at"`
}

// CategoryRequest is the JSON body for category create and rename.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse describes one category.
type CategoryResponse struct {
	CategoryID string `json:"category_id"`
	Name       string `json:"name"`
}

// UserSummary is one row of the admin user listing.
type UserSummary struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ListUsersResponse is returned from GET /users.
type ListUsersResponse struct {
	Users      []UserSummary  `json:"users"`
	Pagination PaginationMeta `json:"pagination"`
}

// TemporaryUserSummary is one row of GET /users/temporary.
type TemporaryUserSummary struct {
	TempID         string    `json:"temp_id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           string    `json:"role"`
	TokenExpiresAt time.Time `json:"token_expires_at"`
	CreatedAt      time.Time `json:"created_at"`
}

// ListTemporaryUsersResponse is returned from GET /users/temporary.
type ListTemporaryUsersResponse struct {
	Users      []TemporaryUserSummary `json:"users"`
	Pagination PaginationMeta         `json:"pagination"`
}

// CreateTemporaryUserRequest is the JSON body for POST /users/temporary.
type CreateTemporaryUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Pin      string `json:"pin"`
	Role     string `json:"role"`
}

// CreateTemporaryUserResponse is returned from POST /users/temporary.
type CreateTemporaryUserResponse struct {
	TempID string `json:"temp_id"`
}

// UpdateUserRequest is the JSON body for PUT /users/{id}.
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UserCountsResponse is returned from GET /users/counts.
type UserCountsResponse struct {
	Total  int            `json:"total"`
	ByRole map[string]int `json:"by_role"`
}

// RoleResponse describes one role of the catalog.
type RoleResponse struct {
	RoleID string `json:"role_id"`
	Name   string `json:"name"`
}

// ErrorResponse is returned for all error cases.
type ErrorResponse struct {
	Error string `json:"error"`
}
