package vault

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ShareCredential grants granteeID VIEW or EDIT access to a credential.
// The actor must be the owner or hold an EDIT share. A grant that already
// exists for the (credential, grantee) pair is rejected; revoke first to
// change the level.
func (s *Service) ShareCredential(ctx context.Context, actorID, credentialID, granteeID string, level ShareLevel) (string, error) {
	if level != ShareView && level != ShareEdit {
		return "", validationErrorf("permission level must be VIEW or EDIT")
	}
	if granteeID == actorID {
		return "", validationErrorf("cannot share a credential with yourself")
	}

	perm, err := s.ResolvePermission(ctx, actorID, credentialID)
	if err != nil {
		return "", err
	}
	if !perm.CanShare() {
		return "", fmt.Errorf("%w: edit access required to share", ErrForbidden)
	}

	// The owner always holds full access; a share row naming the owner as
	// grantee must never exist, no matter who grants it.
	var entry CredentialEntry
	if err := s.getRecord(kindCredential, credentialID, &entry); err != nil {
		return "", err
	}
	if granteeID == entry.OwnerID {
		return "", validationErrorf("cannot share a credential with its owner")
	}

	var grantee User
	if err := s.getRecord(kindUser, granteeID, &grantee); err != nil {
		return "", err
	}

	existing, err := s.findShare(credentialID, granteeID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return "", fmt.Errorf("%w: credential already shared with this user", ErrConflict)
	}

	share := Share{
		ID:           uuid.NewString(),
		CredentialID: credentialID,
		GranterID:    actorID,
		GranteeID:    granteeID,
		Level:        level,
		SharedAt:     s.now(),
	}
	if err := s.createRecord(kindShare, share.ID, share); err != nil {
		return "", err
	}

	s.logger.Info("credential shared",
		"credential_id", credentialID, "granter_id", actorID,
		"grantee_id", granteeID, "level", string(level))
	return share.ID, nil
}

// RevokeShare removes a grant. Only the owner of the underlying credential
// may revoke, regardless of who granted the share.
func (s *Service) RevokeShare(ctx context.Context, actorID, shareID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var share Share
	if err := s.getRecord(kindShare, shareID, &share); err != nil {
		return err
	}
	var entry CredentialEntry
	if err := s.getRecord(kindCredential, share.CredentialID, &entry); err != nil {
		return err
	}
	if entry.OwnerID != actorID {
		return fmt.Errorf("%w: only the credential owner can revoke a share", ErrForbidden)
	}

	if err := s.deleteRecord(kindShare, shareID); err != nil {
		return err
	}
	s.logger.Info("share revoked", "share_id", shareID, "credential_id", share.CredentialID)
	return nil
}

// ListShares returns all grants on a credential, owner only.
func (s *Service) ListShares(ctx context.Context, actorID, credentialID string) ([]Share, error) {
	perm, err := s.ResolvePermission(ctx, actorID, credentialID)
	if err != nil {
		return nil, err
	}
	if perm != PermissionOwner {
		return nil, fmt.Errorf("%w: only the owner can list shares", ErrForbidden)
	}

	shares, err := listRecords[Share](s, kindShare)
	if err != nil {
		return nil, err
	}
	out := make([]Share, 0, len(shares))
	for _, share := range shares {
		if share.CredentialID == credentialID {
			out = append(out, share)
		}
	}
	return out, nil
}
