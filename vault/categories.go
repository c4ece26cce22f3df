package vault

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// ListCategories returns the actor's categories sorted by name.
func (s *Service) ListCategories(ctx context.Context, ownerID string) ([]Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	categories, err := listRecords[Category](s, kindCategory)
	if err != nil {
		return nil, err
	}
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out, nil
}

// CreateCategory adds a category owned by the actor. Names are unique per
// owner, case-insensitively.
func (s *Service) CreateCategory(ctx context.Context, ownerID, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", validationErrorf("category name is required")
	}

	existing, err := s.ListCategories(ctx, ownerID)
	if err != nil {
		return "", err
	}
	for _, c := range existing {
		if strings.EqualFold(c.Name, name) {
			return "", fmt.Errorf("%w: category %q already exists", ErrConflict, name)
		}
	}

	cat := Category{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		OwnerID:   ownerID,
		CreatedAt: s.now(),
	}
	if err := s.createRecord(kindCategory, cat.ID, cat); err != nil {
		return "", err
	}
	return cat.ID, nil
}

// RenameCategory changes a category's name. Owner only.
func (s *Service) RenameCategory(ctx context.Context, ownerID, categoryID, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return validationErrorf("category name is required")
	}

	var cat Category
	if err := s.getRecord(kindCategory, categoryID, &cat); err != nil {
		return err
	}
	if cat.OwnerID != ownerID {
		return fmt.Errorf("%w: not your category", ErrForbidden)
	}

	cat.Name = strings.TrimSpace(name)
	return s.putRecord(kindCategory, categoryID, cat)
}

// DeleteCategory removes a category and detaches it from the owner's
// credential entries; the entries themselves stay.
func (s *Service) DeleteCategory(ctx context.Context, ownerID, categoryID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var cat Category
	if err := s.getRecord(kindCategory, categoryID, &cat); err != nil {
		return err
	}
	if cat.OwnerID != ownerID {
		return fmt.Errorf("%w: not your category", ErrForbidden)
	}

	entries, err := listRecords[CredentialEntry](s, kindCredential)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.CategoryID != categoryID {
			continue
		}
		entry.CategoryID = ""
		entry.UpdatedAt = s.now()
		if err := s.putRecord(kindCredential, entry.ID, entry); err != nil {
			return err
		}
	}

	return s.deleteRecord(kindCategory, categoryID)
}
