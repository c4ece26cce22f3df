package vault

import "context"

// Permission is the effective access an actor holds on a credential entry.
type Permission int

const (
	PermissionNone Permission = iota
	PermissionSharedView
	PermissionSharedEdit
	PermissionOwner
)

func (p Permission) String() string {
	switch p {
	case PermissionOwner:
		return "OWNER_FULL"
	case PermissionSharedEdit:
		return "SHARED_EDIT"
	case PermissionSharedView:
		return "SHARED_VIEW"
	default:
		return "NONE"
	}
}

// CanView reports read access: owner and both share levels.
func (p Permission) CanView() bool { return p >= PermissionSharedView }

// CanEdit reports field-update access: owner and EDIT grantees.
func (p Permission) CanEdit() bool { return p >= PermissionSharedEdit }

// CanDelete reports delete access: owner only.
func (p Permission) CanDelete() bool { return p == PermissionOwner }

// CanShare reports share-granting access. Creating new grants requires the
// owner or an EDIT grantee; revoking is owner-only and checked separately.
func (p Permission) CanShare() bool { return p >= PermissionSharedEdit }

// ResolvePermission computes the effective permission of actorID on the
// given credential entry. A missing credential is ErrNotFound, not
// PermissionNone, so the two surface as different HTTP statuses.
func (s *Service) ResolvePermission(ctx context.Context, actorID, credentialID string) (Permission, error) {
	if err := ctx.Err(); err != nil {
		return PermissionNone, err
	}

	var entry CredentialEntry
	if err := s.getRecord(kindCredential, credentialID, &entry); err != nil {
		return PermissionNone, err
	}

	if actorID == entry.OwnerID {
		return PermissionOwner, nil
	}

	share, err := s.findShare(credentialID, actorID)
	if err != nil {
		return PermissionNone, err
	}
	if share == nil {
		return PermissionNone, nil
	}
	if share.Level == ShareEdit {
		return PermissionSharedEdit, nil
	}
	return PermissionSharedView, nil
}

// findShare returns the share row for (credentialID, granteeID), or nil if
// no grant exists.
func (s *Service) findShare(credentialID, granteeID string) (*Share, error) {
	shares, err := listRecords[Share](s, kindShare)
	if err != nil {
		return nil, err
	}
	for i := range shares {
		if shares[i].CredentialID == credentialID && shares[i].GranteeID == granteeID {
			return &shares[i], nil
		}
	}
	return nil, nil
}
