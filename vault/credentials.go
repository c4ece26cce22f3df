package vault

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// CreateCredentialInput carries the fields for a new credential entry. The
// secret arrives in plaintext and is encrypted before it touches the store.
type CreateCredentialInput struct {
	Title      string
	Username   string
	Secret     string
	URL        string
	CategoryID string
	Notes      string
}

// UpdateCredentialInput is a partial update; nil fields are left untouched.
type UpdateCredentialInput struct {
	Title      *string
	Username   *string
	Secret     *string
	URL        *string
	CategoryID *string
	Notes      *string
}

// CredentialDetail is a single entry with its secret decrypted. Only this
// single-item view ever discloses plaintext.
type CredentialDetail struct {
	CredentialEntry
	Secret     string
	Permission Permission
}

// CredentialListItem is one row of a listing. Secrets are never included.
type CredentialListItem struct {
	CredentialEntry
	AccessType string     // "OWNER" or "SHARED"
	SharedBy   string     // granter user id, shared rows only
	ShareLevel ShareLevel // shared rows only
}

// CredentialList is a listing with its pre-limit total.
type CredentialList struct {
	Total int
	Items []CredentialListItem
}

// ListCredentialsOptions filters a listing. Zero values mean no filtering.
type ListCredentialsOptions struct {
	Search   string // case-insensitive substring match on title
	Category string // case-insensitive substring match on category name
	Limit    int    // 0 = unlimited; Total is unaffected
}

// CreateCredential encrypts the secret and persists a new entry owned by
// ownerID.
func (s *Service) CreateCredential(ctx context.Context, ownerID string, in CreateCredentialInput) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	switch {
	case strings.TrimSpace(in.Title) == "":
		return "", validationErrorf("title is required")
	case strings.TrimSpace(in.Username) == "":
		return "", validationErrorf("username is required")
	case in.Secret == "":
		return "", validationErrorf("password is required")
	case strings.TrimSpace(in.URL) == "":
		return "", validationErrorf("url is required")
	case strings.TrimSpace(in.CategoryID) == "":
		return "", validationErrorf("category is required")
	}

	var cat Category
	if err := s.getRecord(kindCategory, in.CategoryID, &cat); err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", validationErrorf("unknown category %s", in.CategoryID)
		}
		return "", err
	}
	if cat.OwnerID != ownerID {
		return "", validationErrorf("unknown category %s", in.CategoryID)
	}

	encrypted, err := s.cipher.EncryptString(in.Secret)
	if err != nil {
		return "", fmt.Errorf("encrypting secret: %w", err)
	}

	now := s.now()
	entry := CredentialEntry{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		CategoryID:      in.CategoryID,
		Title:           in.Title,
		Username:        in.Username,
		EncryptedSecret: encrypted,
		URL:             in.URL,
		Notes:           in.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.createRecord(kindCredential, entry.ID, entry); err != nil {
		return "", err
	}

	s.logger.Info("credential created", "credential_id", entry.ID, "owner_id", ownerID)
	return entry.ID, nil
}

// GetCredential returns a single entry with its secret decrypted. The actor
// needs view access or better.
func (s *Service) GetCredential(ctx context.Context, actorID, credentialID string) (*CredentialDetail, error) {
	perm, err := s.ResolvePermission(ctx, actorID, credentialID)
	if err != nil {
		return nil, err
	}
	if !perm.CanView() {
		return nil, fmt.Errorf("%w: no access to credential", ErrForbidden)
	}

	var entry CredentialEntry
	if err := s.getRecord(kindCredential, credentialID, &entry); err != nil {
		return nil, err
	}
	plaintext, err := s.cipher.DecryptString(entry.EncryptedSecret)
	if err != nil {
		return nil, fmt.Errorf("decrypting secret: %w", err)
	}
	return &CredentialDetail{
		CredentialEntry: entry,
		Secret:          plaintext,
		Permission:      perm,
	}, nil
}

// ListCredentials returns the union of entries the actor owns and entries
// shared with the actor, newest first. Secrets are never included; shared
// rows carry the granter and the share level.
func (s *Service) ListCredentials(ctx context.Context, actorID string, opts ListCredentialsOptions) (*CredentialList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := listRecords[CredentialEntry](s, kindCredential)
	if err != nil {
		return nil, err
	}
	shares, err := listRecords[Share](s, kindShare)
	if err != nil {
		return nil, err
	}
	sharedIn := make(map[string]*Share, len(shares))
	for i := range shares {
		if shares[i].GranteeID == actorID {
			sharedIn[shares[i].CredentialID] = &shares[i]
		}
	}

	var categoryFilter map[string]bool
	if opts.Category != "" {
		categories, err := listRecords[Category](s, kindCategory)
		if err != nil {
			return nil, err
		}
		want := strings.ToLower(opts.Category)
		categoryFilter = make(map[string]bool)
		for _, c := range categories {
			if strings.Contains(strings.ToLower(c.Name), want) {
				categoryFilter[c.ID] = true
			}
		}
		if len(categoryFilter) == 0 {
			return &CredentialList{}, nil
		}
	}

	search := strings.ToLower(opts.Search)
	items := make([]CredentialListItem, 0, len(entries))
	for _, entry := range entries {
		item := CredentialListItem{CredentialEntry: entry}
		switch {
		case entry.OwnerID == actorID:
			item.AccessType = "OWNER"
		case sharedIn[entry.ID] != nil:
			share := sharedIn[entry.ID]
			item.AccessType = "SHARED"
			item.SharedBy = share.GranterID
			item.ShareLevel = share.Level
		default:
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(entry.Title), search) {
			continue
		}
		if categoryFilter != nil && !categoryFilter[entry.CategoryID] {
			continue
		}
		item.EncryptedSecret = ""
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return &CredentialList{Total: total, Items: items}, nil
}

// UpdateCredential applies a partial update. The actor needs edit access; the
// owner never changes. A supplied secret is re-encrypted under a fresh nonce.
func (s *Service) UpdateCredential(ctx context.Context, actorID, credentialID string, in UpdateCredentialInput) error {
	perm, err := s.ResolvePermission(ctx, actorID, credentialID)
	if err != nil {
		return err
	}
	if !perm.CanEdit() {
		return fmt.Errorf("%w: edit access required", ErrForbidden)
	}

	var entry CredentialEntry
	if err := s.getRecord(kindCredential, credentialID, &entry); err != nil {
		return err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return validationErrorf("title cannot be empty")
		}
		entry.Title = *in.Title
	}
	if in.Username != nil {
		entry.Username = *in.Username
	}
	if in.URL != nil {
		entry.URL = *in.URL
	}
	if in.Notes != nil {
		entry.Notes = *in.Notes
	}
	if in.CategoryID != nil {
		var cat Category
		if err := s.getRecord(kindCategory, *in.CategoryID, &cat); err != nil {
			if errors.Is(err, ErrNotFound) {
				return validationErrorf("unknown category %s", *in.CategoryID)
			}
			return err
		}
		if cat.OwnerID != entry.OwnerID {
			return validationErrorf("unknown category %s", *in.CategoryID)
		}
		entry.CategoryID = *in.CategoryID
	}
	if in.Secret != nil {
		if *in.Secret == "" {
			return validationErrorf("password cannot be empty")
		}
		encrypted, err := s.cipher.EncryptString(*in.Secret)
		if err != nil {
			return fmt.Errorf("encrypting secret: %w", err)
		}
		entry.EncryptedSecret = encrypted
	}

	entry.UpdatedAt = s.now()
	if err := s.putRecord(kindCredential, credentialID, entry); err != nil {
		return err
	}
	s.logger.Info("credential updated", "credential_id", credentialID, "actor_id", actorID)
	return nil
}

// DeleteCredential removes an entry and every share granted on it. Owner
// only. Share deletion is best-effort: the loop continues past individual
// failures and the first error is reported, so a crash mid-cascade can leave
// orphaned share rows until retried.
func (s *Service) DeleteCredential(ctx context.Context, actorID, credentialID string) error {
	perm, err := s.ResolvePermission(ctx, actorID, credentialID)
	if err != nil {
		return err
	}
	if !perm.CanDelete() {
		return fmt.Errorf("%w: only the owner can delete a credential", ErrForbidden)
	}

	if err := s.deleteRecord(kindCredential, credentialID); err != nil {
		return err
	}

	shares, err := listRecords[Share](s, kindShare)
	if err != nil {
		return err
	}
	var firstErr error
	for _, share := range shares {
		if share.CredentialID != credentialID {
			continue
		}
		if err := s.deleteRecord(kindShare, share.ID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("deleting shares for credential %s: %w", credentialID, firstErr)
	}

	s.logger.Info("credential deleted", "credential_id", credentialID, "owner_id", actorID)
	return nil
}
