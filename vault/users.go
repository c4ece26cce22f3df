package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// UserAccount is a user joined with its role for admin listings.
type UserAccount struct {
	User
	RoleID string `json:"role_id"`
}

// UserCounts summarizes the account population per role.
type UserCounts struct {
	Total  int            `json:"total"`
	ByRole map[string]int `json:"by_role"`
}

// UpdateUserInput is a partial account update; nil fields are untouched.
type UpdateUserInput struct {
	Username *string
	Email    *string
}

// ListUsers returns all registered accounts with their roles, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]UserAccount, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	users, err := listRecords[User](s, kindUser)
	if err != nil {
		return nil, err
	}
	assignments, err := listRecords[UserRoleAssignment](s, kindUserRole)
	if err != nil {
		return nil, err
	}
	roleByUser := make(map[string]string, len(assignments))
	for _, a := range assignments {
		roleByUser[a.UserID] = a.RoleID
	}

	out := make([]UserAccount, 0, len(users))
	for _, u := range users {
		out = append(out, UserAccount{User: u, RoleID: roleByUser[u.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// ListTemporaryUsers returns all pending invitations, newest first.
func (s *Service) ListTemporaryUsers(ctx context.Context) ([]TemporaryUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	temps, err := listRecords[TemporaryUser](s, kindTempUser)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(temps, func(i, j int) bool {
		return temps[i].CreatedAt.After(temps[j].CreatedAt)
	})
	return temps, nil
}

// GetUserByEmail looks a registered account up by address.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	user, err := s.findUserByEmail(email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("%w: no account with this email", ErrNotFound)
	}
	return user, nil
}

// UpdateUser changes a user's name and address. A new address must not be in
// use by any other account or pending invitation.
func (s *Service) UpdateUser(ctx context.Context, userID string, in UpdateUserInput) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var user User
	if err := s.getRecord(kindUser, userID, &user); err != nil {
		return err
	}
	if in.Username != nil {
		if strings.TrimSpace(*in.Username) == "" {
			return validationErrorf("username cannot be empty")
		}
		user.Username = *in.Username
	}
	if in.Email != nil && !strings.EqualFold(*in.Email, user.Email) {
		if !IsValidEmail(*in.Email) {
			return validationErrorf("invalid email format")
		}
		inUse, err := s.emailInUse(*in.Email)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: email already registered", ErrConflict)
		}
		user.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}

	user.UpdatedAt = s.now()
	if err := s.putRecord(kindUser, userID, user); err != nil {
		return err
	}
	s.logger.Info("user updated", "user_id", userID)
	return nil
}

// DeleteUser removes an account together with its role assignment, its
// credential entries, and every share it granted or received. The ADMIN
// account cannot be deleted.
func (s *Service) DeleteUser(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var user User
	if err := s.getRecord(kindUser, userID, &user); err != nil {
		return err
	}

	var holder roleHolder
	err := s.getRecord(kindRoleHolder, RoleAdmin, &holder)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil && holder.UserID == userID {
		return fmt.Errorf("%w: the administrator account cannot be deleted", ErrForbidden)
	}

	entries, err := listRecords[CredentialEntry](s, kindCredential)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.OwnerID != userID {
			continue
		}
		if err := s.DeleteCredential(ctx, userID, entry.ID); err != nil {
			return err
		}
	}

	shares, err := listRecords[Share](s, kindShare)
	if err != nil {
		return err
	}
	for _, share := range shares {
		if share.GranteeID != userID {
			continue
		}
		if err := s.deleteRecord(kindShare, share.ID); err != nil {
			return err
		}
	}

	categories, err := listRecords[Category](s, kindCategory)
	if err != nil {
		return err
	}
	for _, cat := range categories {
		if cat.OwnerID != userID {
			continue
		}
		if err := s.deleteRecord(kindCategory, cat.ID); err != nil {
			return err
		}
	}

	if err := s.deleteRecord(kindUserRole, userID); err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err := s.deleteRecord(kindUser, userID); err != nil {
		return err
	}

	s.logger.Info("user deleted", "user_id", userID)
	return nil
}

// DeleteTemporaryUser withdraws a pending invitation. Also serves as the
// reachable compensator when an onboarding step has to be unwound by hand.
func (s *Service) DeleteTemporaryUser(ctx context.Context, tempID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.deleteRecord(kindTempUser, tempID); err != nil {
		return err
	}
	s.logger.Info("temporary user deleted", "temp_id", tempID)
	return nil
}

// CountUsers tallies registered accounts per role.
func (s *Service) CountUsers(ctx context.Context) (*UserCounts, error) {
	accounts, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	counts := &UserCounts{Total: len(accounts), ByRole: make(map[string]int)}
	for _, a := range accounts {
		counts.ByRole[a.RoleID]++
	}
	return counts, nil
}

// Roles returns the immutable role catalog.
func (s *Service) Roles(ctx context.Context) ([]Role, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	roles, err := listRecords[Role](s, kindRole)
	if err != nil {
		return nil, err
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles, nil
}

// RoleOfUser returns the role assigned to a user, defaulting to USER when no
// assignment record exists.
func (s *Service) RoleOfUser(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var assignment UserRoleAssignment
	if err := s.getRecord(kindUserRole, userID, &assignment); err != nil {
		if errors.Is(err, ErrNotFound) {
			return RoleUser, nil
		}
		return "", err
	}
	return assignment.RoleID, nil
}
