package vault

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salapa/vaultd/internal/util"
)

// RegisterAdminInput carries the fields of the one-time ADMIN registration.
type RegisterAdminInput struct {
	Username string
	Email    string
	Password string
	Pin      string
}

// ChangeCredentialsInput carries a password/PIN rotation for a logged-in user.
type ChangeCredentialsInput struct {
	CurrentPassword string
	NewPassword     string
	NewPin          string
}

// RegisterAdmin creates the single ADMIN account. The ADMIN role is claimed
// through an atomic singleton record before the user is written, so two
// concurrent registrations can never both succeed. Later writes compensate
// by deleting what was already written.
func (s *Service) RegisterAdmin(ctx context.Context, in RegisterAdminInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Username) == "" {
		return "", validationErrorf("username is required")
	}
	if !IsValidEmail(in.Email) {
		return "", validationErrorf("invalid email format")
	}
	if err := validateNewSecrets(in.Password, in.Pin); err != nil {
		return "", err
	}

	inUse, err := s.emailInUse(in.Email)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", fmt.Errorf("%w: email already registered", ErrConflict)
	}

	passwordHash, err := util.HashSecret(in.Password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	pinHash, err := util.HashSecret(in.Pin)
	if err != nil {
		return "", fmt.Errorf("hashing PIN: %w", err)
	}

	userID := uuid.NewString()
	holder := roleHolder{RoleID: RoleAdmin, UserID: userID}
	if err := s.createRecord(kindRoleHolder, RoleAdmin, holder); err != nil {
		if errors.Is(err, ErrConflict) {
			return "", fmt.Errorf("%w: ADMIN role is already assigned", ErrForbidden)
		}
		return "", err
	}

	now := s.now()
	user := User{
		ID:                   userID,
		Username:             in.Username,
		Email:                strings.ToLower(strings.TrimSpace(in.Email)),
		PasswordHash:         passwordHash,
		PinHash:              pinHash,
		LastCredentialChange: now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.createRecord(kindUser, userID, user); err != nil {
		if compErr := s.deleteRecord(kindRoleHolder, RoleAdmin); compErr != nil {
			return "", compensationError(err, compErr)
		}
		return "", err
	}

	assignment := UserRoleAssignment{UserID: userID, RoleID: RoleAdmin}
	if err := s.createRecord(kindUserRole, userID, assignment); err != nil {
		if compErr := s.deleteRecord(kindUser, userID); compErr != nil {
			return "", compensationError(err, compErr)
		}
		if compErr := s.deleteRecord(kindRoleHolder, RoleAdmin); compErr != nil {
			return "", compensationError(err, compErr)
		}
		return "", err
	}

	s.logger.Info("admin registered", "user_id", userID)
	return userID, nil
}

// Login verifies an email/password pair and issues a session token. Unknown
// email and wrong password produce the identical error so an attacker cannot
// probe for registered addresses.
func (s *Service) Login(ctx context.Context, email, password string) (string, *User, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	user, err := s.findUserByEmail(email)
	if err != nil {
		return "", nil, err
	}
	if user == nil || !util.CheckSecret(password, user.PasswordHash) {
		return "", nil, fmt.Errorf("%w: invalid email or password", ErrUnauthorized)
	}

	token, err := s.issueSessionToken(user)
	if err != nil {
		return "", nil, err
	}
	s.logger.Info("login", "user_id", user.ID)
	return token, user, nil
}

// VerifySession validates a session token and returns its user. Beyond the
// signature and expiry check, the token's credential version must match the
// stored value: rotating the password or PIN invalidates every token issued
// before the change.
func (s *Service) VerifySession(ctx context.Context, tokenString string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	claims, err := s.parseSessionToken(tokenString)
	if err != nil {
		return nil, err
	}

	var user User
	if err := s.getRecord(kindUser, claims.UserID, &user); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: session user no longer exists", ErrUnauthorized)
		}
		return nil, err
	}
	if claims.CredentialVersion != user.LastCredentialChange.Unix() {
		return nil, fmt.Errorf("%w: session invalidated by credential change", ErrUnauthorized)
	}
	return &user, nil
}

// ChangeCredentials rotates a user's password and PIN after verifying the
// current password. Reusing either current secret is rejected, and the
// credential-change timestamp is bumped so existing sessions die.
func (s *Service) ChangeCredentials(ctx context.Context, userID string, in ChangeCredentialsInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var user User
	if err := s.getRecord(kindUser, userID, &user); err != nil {
		return err
	}
	if !util.CheckSecret(in.CurrentPassword, user.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", ErrUnauthorized)
	}
	if err := validateNewSecrets(in.NewPassword, in.NewPin); err != nil {
		return err
	}
	if util.CheckSecret(in.NewPassword, user.PasswordHash) {
		return validationErrorf("new password must differ from the current password")
	}
	if util.CheckSecret(in.NewPin, user.PinHash) {
		return validationErrorf("new PIN must differ from the current PIN")
	}

	passwordHash, err := util.HashSecret(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	pinHash, err := util.HashSecret(in.NewPin)
	if err != nil {
		return fmt.Errorf("hashing PIN: %w", err)
	}

	now := s.now()
	user.PasswordHash = passwordHash
	user.PinHash = pinHash
	user.LastCredentialChange = now
	user.UpdatedAt = now
	if err := s.putRecord(kindUser, userID, user); err != nil {
		return err
	}

	s.logger.Info("credentials changed", "user_id", userID)
	return nil
}

// findUserByEmail returns the user with the given address, or nil if none.
// Matching is case-insensitive.
func (s *Service) findUserByEmail(email string) (*User, error) {
	users, err := listRecords[User](s, kindUser)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, strings.TrimSpace(email)) {
			return &users[i], nil
		}
	}
	return nil, nil
}

// emailInUse reports whether the address belongs to a registered user or a
// pending temporary user.
func (s *Service) emailInUse(email string) (bool, error) {
	user, err := s.findUserByEmail(email)
	if err != nil {
		return false, err
	}
	if user != nil {
		return true, nil
	}
	temps, err := listRecords[TemporaryUser](s, kindTempUser)
	if err != nil {
		return false, err
	}
	for _, t := range temps {
		if strings.EqualFold(t.Email, strings.TrimSpace(email)) {
			return true, nil
		}
	}
	return false, nil
}
