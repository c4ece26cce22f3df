package vault

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/salapa/vaultd/internal/util"
	"github.com/salapa/vaultd/mail"
)

// CreateTemporaryUserInput carries the fields an admin supplies when
// inviting a new user.
type CreateTemporaryUserInput struct {
	Username     string
	Email        string
	TempPassword string
	TempPin      string
	RoleID       string
}

// CreateTemporaryUser records a pending account and emails its activation
// link. The temporary record is only allowed to survive if the mail went
// out: a failed send rolls the record back and reports a dependency failure,
// so no orphaned invitation can ever be activated.
func (s *Service) CreateTemporaryUser(ctx context.Context, in CreateTemporaryUserInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(in.Username) == "" {
		return "", validationErrorf("username is required")
	}
	if !IsValidEmail(in.Email) {
		return "", validationErrorf("invalid email format")
	}
	if err := validateNewSecrets(in.TempPassword, in.TempPin); err != nil {
		return "", err
	}

	var role Role
	if err := s.getRecord(kindRole, in.RoleID, &role); err != nil {
		return "", err
	}

	inUse, err := s.emailInUse(in.Email)
	if err != nil {
		return "", err
	}
	if inUse {
		return "", fmt.Errorf("%w: email already registered", ErrConflict)
	}

	passwordHash, err := util.HashSecret(in.TempPassword)
	if err != nil {
		return "", fmt.Errorf("hashing temporary password: %w", err)
	}
	pinHash, err := util.HashSecret(in.TempPin)
	if err != nil {
		return "", fmt.Errorf("hashing temporary PIN: %w", err)
	}

	token, err := util.NewOpaqueToken()
	if err != nil {
		return "", fmt.Errorf("generating activation token: %w", err)
	}

	now := s.now()
	temp := TemporaryUser{
		ID:               uuid.NewString(),
		Username:         in.Username,
		Email:            strings.ToLower(strings.TrimSpace(in.Email)),
		TempPasswordHash: passwordHash,
		TempPinHash:      pinHash,
		RoleID:           role.ID,
		Token:            token,
		TokenExpiresAt:   now.Add(ActivationTokenTTL),
		CreatedAt:        now,
	}
	if err := s.createRecord(kindTempUser, temp.ID, temp); err != nil {
		return "", err
	}

	msg := mail.Message{
		Recipient:     temp.Email,
		RecipientName: temp.Username,
		Subject:       "Activate your vault account",
		Description:   "An account has been created for you. Use the link below to choose your password and PIN.",
		Link:          fmt.Sprintf("%s/activate/%s", s.baseURL, token),
		ValidityHours: int(ActivationTokenTTL.Hours()),
	}
	if err := s.sendMail(ctx, msg); err != nil {
		cause := fmt.Errorf("%w: sending activation email: %v", ErrDependency, err)
		if compErr := s.deleteRecord(kindTempUser, temp.ID); compErr != nil {
			return "", compensationError(cause, compErr)
		}
		return "", cause
	}

	s.logger.Info("temporary user created", "temp_id", temp.ID, "role_id", role.ID)
	return temp.ID, nil
}

// Activate turns a pending invitation into a registered account. The token
// must be unexpired and unconsumed; the caller chooses the permanent
// password and PIN. The three writes are individually committed, so each
// later failure undoes the earlier writes before reporting.
func (s *Service) Activate(ctx context.Context, token, password, pin string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	temp, err := s.findTemporaryUserByToken(token)
	if err != nil {
		return "", err
	}
	if temp == nil {
		return "", validationErrorf("invalid or expired token")
	}
	if err := validateNewSecrets(password, pin); err != nil {
		return "", err
	}

	passwordHash, err := util.HashSecret(password)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	pinHash, err := util.HashSecret(pin)
	if err != nil {
		return "", fmt.Errorf("hashing PIN: %w", err)
	}

	now := s.now()
	user := User{
		ID:                   uuid.NewString(),
		Username:             temp.Username,
		Email:                temp.Email,
		PasswordHash:         passwordHash,
		PinHash:              pinHash,
		LastCredentialChange: now,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.createRecord(kindUser, user.ID, user); err != nil {
		return "", err
	}

	assignment := UserRoleAssignment{UserID: user.ID, RoleID: temp.RoleID}
	if err := s.createRecord(kindUserRole, user.ID, assignment); err != nil {
		if compErr := s.deleteRecord(kindUser, user.ID); compErr != nil {
			return "", compensationError(err, compErr)
		}
		return "", err
	}

	if err := s.deleteRecord(kindTempUser, temp.ID); err != nil {
		if compErr := s.deleteRecord(kindUserRole, user.ID); compErr != nil {
			return "", compensationError(err, compErr)
		}
		if compErr := s.deleteRecord(kindUser, user.ID); compErr != nil {
			return "", compensationError(err, compErr)
		}
		return "", err
	}

	s.logger.Info("account activated", "user_id", user.ID, "temp_id", temp.ID)
	return user.ID, nil
}

// findTemporaryUserByToken returns the pending record carrying an unexpired
// token, or nil. Expiry is filtered here, so an expired or already consumed
// token can never activate.
func (s *Service) findTemporaryUserByToken(token string) (*TemporaryUser, error) {
	if token == "" {
		return nil, nil
	}
	temps, err := listRecords[TemporaryUser](s, kindTempUser)
	if err != nil {
		return nil, err
	}
	now := s.now()
	for i := range temps {
		if temps[i].Token == token && temps[i].TokenExpiresAt.After(now) {
			return &temps[i], nil
		}
	}
	return nil, nil
}

func (s *Service) sendMail(ctx context.Context, msg mail.Message) error {
	if s.mailer == nil {
		return fmt.Errorf("no mail sender configured")
	}
	return s.mailer.Send(ctx, msg)
}
