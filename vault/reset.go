package vault

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/salapa/vaultd/internal/util"
	"github.com/salapa/vaultd/mail"
)

// RequestPasswordReset issues a one-hour reset token for the account with
// the given email and mails its link. A failed send deletes the token again.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	return s.requestReset(ctx, email, kindPasswordReset, ResetTokenTTL,
		"Reset your vault password",
		"A password reset was requested for your account. Use the link below to choose a new password.",
		"reset-password")
}

// RequestAdminPasswordReset is the short-fuse variant for the ADMIN account.
// The email must belong to the current ADMIN holder; the token expires after
// fifteen minutes.
func (s *Service) RequestAdminPasswordReset(ctx context.Context, email string) error {
	user, err := s.findUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: no account with this email", ErrNotFound)
	}

	var holder roleHolder
	if err := s.getRecord(kindRoleHolder, RoleAdmin, &holder); err != nil {
		return err
	}
	if holder.UserID != user.ID {
		return fmt.Errorf("%w: not the administrator account", ErrForbidden)
	}

	return s.requestReset(ctx, email, kindPasswordReset, AdminResetTokenTTL,
		"Reset your administrator password",
		"A password reset was requested for the administrator account. The link below expires shortly.",
		"reset-password")
}

// RequestPinReset issues a one-hour PIN reset token and mails its link.
func (s *Service) RequestPinReset(ctx context.Context, email string) error {
	return s.requestReset(ctx, email, kindPinReset, ResetTokenTTL,
		"Reset your vault PIN",
		"A PIN reset was requested for your account. Use the link below to choose a new PIN.",
		"reset-pin")
}

// ConsumePasswordReset redeems a password reset token. The token is removed
// only after the new hash is stored; a failed update leaves it valid so the
// user can retry with the same link.
func (s *Service) ConsumePasswordReset(ctx context.Context, token, newPassword string) error {
	if !IsValidPassword(newPassword) {
		return validationErrorf("password must be at least 8 characters long and contain an uppercase letter, a lowercase letter, a number, and a special character")
	}
	return s.consumeReset(ctx, kindPasswordReset, token, func(user *User, hash string) {
		user.PasswordHash = hash
	}, newPassword)
}

// ConsumePinReset redeems a PIN reset token.
func (s *Service) ConsumePinReset(ctx context.Context, token, newPin string) error {
	if !IsValidPin(newPin) {
		return validationErrorf("invalid PIN format")
	}
	return s.consumeReset(ctx, kindPinReset, token, func(user *User, hash string) {
		user.PinHash = hash
	}, newPin)
}

func (s *Service) requestReset(ctx context.Context, email, kind string, ttl time.Duration, subject, description, linkPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	user, err := s.findUserByEmail(email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: no account with this email", ErrNotFound)
	}

	token, err := util.NewOpaqueToken()
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	now := s.now()
	reset := ResetToken{
		ID:        uuid.NewString(),
		Email:     user.Email,
		Token:     token,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.createRecord(kind, reset.ID, reset); err != nil {
		return err
	}

	msg := mail.Message{
		Recipient:     user.Email,
		RecipientName: user.Username,
		Subject:       subject,
		Description:   description,
		Link:          fmt.Sprintf("%s/%s/%s", s.baseURL, linkPath, token),
		ValidityHours: int(ttl.Hours()),
	}
	if err := s.sendMail(ctx, msg); err != nil {
		cause := fmt.Errorf("%w: sending reset email: %v", ErrDependency, err)
		if compErr := s.deleteRecord(kind, reset.ID); compErr != nil {
			return compensationError(cause, compErr)
		}
		return cause
	}

	s.logger.Info("reset token issued", "kind", kind, "user_id", user.ID)
	return nil
}

// consumeReset looks up an unexpired token of the given kind, stores the new
// hash through apply, and deletes the token last.
func (s *Service) consumeReset(ctx context.Context, kind, token string, apply func(*User, string), newSecret string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	reset, err := s.findResetToken(kind, token)
	if err != nil {
		return err
	}
	if reset == nil {
		return validationErrorf("invalid or expired token")
	}

	user, err := s.findUserByEmail(reset.Email)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("%w: account for this token no longer exists", ErrNotFound)
	}

	hash, err := util.HashSecret(newSecret)
	if err != nil {
		return fmt.Errorf("hashing secret: %w", err)
	}

	now := s.now()
	apply(user, hash)
	user.LastCredentialChange = now
	user.UpdatedAt = now
	if err := s.putRecord(kindUser, user.ID, *user); err != nil {
		// Token stays in place so the same link can be retried.
		return err
	}

	if err := s.deleteRecord(kind, reset.ID); err != nil {
		return err
	}

	s.logger.Info("reset token consumed", "kind", kind, "user_id", user.ID)
	return nil
}

func (s *Service) findResetToken(kind, token string) (*ResetToken, error) {
	if token == "" {
		return nil, nil
	}
	resets, err := listRecords[ResetToken](s, kind)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range resets {
		if resets[i].Token == token && resets[i].ExpiresAt.After(now) {
			return &resets[i], nil
		}
	}
	return nil, nil
}
