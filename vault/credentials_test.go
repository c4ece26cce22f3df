package vault_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salapa/vaultd/vault"
)

func TestCreateCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("EncryptsAtRest", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")

		id := createCredential(t, svc, admin, catID, "mail account", "hunter2")

		detail, err := svc.GetCredential(ctx, admin, id)
		require.NoError(t, err)
		assert.Equal(t, "hunter2", detail.Secret)
		assert.NotEqual(t, "hunter2", detail.EncryptedSecret)
		assert.NotContains(t, detail.EncryptedSecret, "hunter2")
	})

	t.Run("RequiredFields", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")

		base := vault.CreateCredentialInput{
			Title: "t", Username: "u", Secret: "s", URL: "https://x", CategoryID: catID,
		}
		for name, mutate := range map[string]func(*vault.CreateCredentialInput){
			"title":    func(in *vault.CreateCredentialInput) { in.Title = "" },
			"username": func(in *vault.CreateCredentialInput) { in.Username = "" },
			"secret":   func(in *vault.CreateCredentialInput) { in.Secret = "" },
			"url":      func(in *vault.CreateCredentialInput) { in.URL = "" },
			"category": func(in *vault.CreateCredentialInput) { in.CategoryID = "" },
		} {
			in := base
			mutate(&in)
			_, err := svc.CreateCredential(ctx, admin, in)
			assert.ErrorIs(t, err, vault.ErrValidation, "missing %s", name)
		}
	})

	t.Run("RejectsForeignCategory", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		other := inviteAndActivate(t, svc, mailer, "other@example.com", "Other!Pass1")
		otherCat := createCategory(t, svc, other, "theirs")

		_, err := svc.CreateCredential(ctx, admin, vault.CreateCredentialInput{
			Title: "t", Username: "u", Secret: "s", URL: "https://x", CategoryID: otherCat,
		})
		assert.ErrorIs(t, err, vault.ErrValidation)
	})
}

func TestGetCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("MissingIsNotFound", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		_, err := svc.GetCredential(ctx, admin, "no-such-id")
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})

	t.Run("StrangerIsForbidden", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "secret thing", "pw")
		stranger := inviteAndActivate(t, svc, mailer, "stranger@example.com", "Strange!Pw1")

		_, err := svc.GetCredential(ctx, stranger, id)
		assert.ErrorIs(t, err, vault.ErrForbidden)
	})
}

func TestListCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("UnionOwnedAndSharedNewestFirst", func(t *testing.T) {
		svc, mailer, clock := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		grantee := inviteAndActivate(t, svc, mailer, "grantee@example.com", "Grantee!Pw1")
		granteeCat := createCategory(t, svc, grantee, "mine")

		older := createCredential(t, svc, admin, catID, "older entry", "pw1")
		clock.Advance(time.Minute)
		shared := createCredential(t, svc, admin, catID, "shared entry", "pw2")
		clock.Advance(time.Minute)
		own := createCredential(t, svc, grantee, granteeCat, "own entry", "pw3")

		_, err := svc.ShareCredential(ctx, admin, shared, grantee, vault.ShareView)
		require.NoError(t, err)

		list, err := svc.ListCredentials(ctx, grantee, vault.ListCredentialsOptions{})
		require.NoError(t, err)
		require.Len(t, list.Items, 2)
		assert.Equal(t, 2, list.Total)

		assert.Equal(t, own, list.Items[0].ID)
		assert.Equal(t, "OWNER", list.Items[0].AccessType)
		assert.Equal(t, shared, list.Items[1].ID)
		assert.Equal(t, "SHARED", list.Items[1].AccessType)
		assert.Equal(t, admin, list.Items[1].SharedBy)
		assert.Equal(t, vault.ShareView, list.Items[1].ShareLevel)

		for _, item := range list.Items {
			assert.Empty(t, item.EncryptedSecret, "listings must not carry secrets")
		}
		for _, item := range list.Items {
			assert.NotEqual(t, older, item.ID)
		}
	})

	t.Run("SearchIsCaseInsensitive", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		createCredential(t, svc, admin, catID, "GitHub Token", "pw")
		createCredential(t, svc, admin, catID, "Mail Login", "pw")

		list, err := svc.ListCredentials(ctx, admin, vault.ListCredentialsOptions{Search: "github"})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, "GitHub Token", list.Items[0].Title)
	})

	t.Run("CategoryFilterByName", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		work := createCategory(t, svc, admin, "Work")
		home := createCategory(t, svc, admin, "Home")
		createCredential(t, svc, admin, work, "vpn", "pw")
		createCredential(t, svc, admin, home, "router", "pw")

		list, err := svc.ListCredentials(ctx, admin, vault.ListCredentialsOptions{Category: "work"})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, "vpn", list.Items[0].Title)

		list, err = svc.ListCredentials(ctx, admin, vault.ListCredentialsOptions{Category: "nonexistent"})
		require.NoError(t, err)
		assert.Empty(t, list.Items)
	})

	t.Run("CategoryFilterMatchesSubstring", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		banking := createCategory(t, svc, admin, "Banking Logins")
		home := createCategory(t, svc, admin, "Home")
		createCredential(t, svc, admin, banking, "checking account", "pw")
		createCredential(t, svc, admin, home, "router", "pw")

		list, err := svc.ListCredentials(ctx, admin, vault.ListCredentialsOptions{Category: "banking"})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, "checking account", list.Items[0].Title)
	})

	t.Run("LimitDoesNotAffectTotal", func(t *testing.T) {
		svc, _, clock := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		for i := 0; i < 5; i++ {
			createCredential(t, svc, admin, catID, "entry", "pw")
			clock.Advance(time.Second)
		}

		list, err := svc.ListCredentials(ctx, admin, vault.ListCredentialsOptions{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, list.Items, 2)
		assert.Equal(t, 5, list.Total)
	})
}

func TestUpdateCredential(t *testing.T) {
	ctx := context.Background()
	strptr := func(s string) *string { return &s }

	t.Run("OwnerPartialUpdate", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "old title", "oldpw")

		err := svc.UpdateCredential(ctx, admin, id, vault.UpdateCredentialInput{
			Title: strptr("new title"),
		})
		require.NoError(t, err)

		detail, err := svc.GetCredential(ctx, admin, id)
		require.NoError(t, err)
		assert.Equal(t, "new title", detail.Title)
		assert.Equal(t, "oldpw", detail.Secret, "untouched fields survive")
	})

	t.Run("SecretReencrypted", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "oldpw")

		before, err := svc.GetCredential(ctx, admin, id)
		require.NoError(t, err)

		err = svc.UpdateCredential(ctx, admin, id, vault.UpdateCredentialInput{Secret: strptr("newpw")})
		require.NoError(t, err)

		after, err := svc.GetCredential(ctx, admin, id)
		require.NoError(t, err)
		assert.Equal(t, "newpw", after.Secret)
		assert.NotEqual(t, before.EncryptedSecret, after.EncryptedSecret)
	})

	t.Run("ViewGranteeForbidden", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "pw")
		viewer := inviteAndActivate(t, svc, mailer, "viewer@example.com", "Viewer!Pw11")

		_, err := svc.ShareCredential(ctx, admin, id, viewer, vault.ShareView)
		require.NoError(t, err)

		err = svc.UpdateCredential(ctx, viewer, id, vault.UpdateCredentialInput{Title: strptr("x")})
		assert.ErrorIs(t, err, vault.ErrForbidden)
	})

	t.Run("EditGranteeAllowed", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "pw")
		editor := inviteAndActivate(t, svc, mailer, "editor@example.com", "Editor!Pw11")

		_, err := svc.ShareCredential(ctx, admin, id, editor, vault.ShareEdit)
		require.NoError(t, err)

		err = svc.UpdateCredential(ctx, editor, id, vault.UpdateCredentialInput{Title: strptr("edited")})
		require.NoError(t, err)

		detail, err := svc.GetCredential(ctx, admin, id)
		require.NoError(t, err)
		assert.Equal(t, "edited", detail.Title)
		assert.Equal(t, admin, detail.OwnerID, "owner never changes")
	})
}

func TestDeleteCredential(t *testing.T) {
	ctx := context.Background()

	t.Run("EditGranteeCannotDelete", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "pw")
		editor := inviteAndActivate(t, svc, mailer, "editor@example.com", "Editor!Pw11")
		_, err := svc.ShareCredential(ctx, admin, id, editor, vault.ShareEdit)
		require.NoError(t, err)

		err = svc.DeleteCredential(ctx, editor, id)
		assert.ErrorIs(t, err, vault.ErrForbidden)
	})

	t.Run("CascadesShares", func(t *testing.T) {
		svc, mailer, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "pw")
		grantee := inviteAndActivate(t, svc, mailer, "grantee@example.com", "Grantee!Pw1")
		_, err := svc.ShareCredential(ctx, admin, id, grantee, vault.ShareView)
		require.NoError(t, err)

		require.NoError(t, svc.DeleteCredential(ctx, admin, id))

		list, err := svc.ListCredentials(ctx, grantee, vault.ListCredentialsOptions{})
		require.NoError(t, err)
		assert.Empty(t, list.Items)

		_, err = svc.GetCredential(ctx, admin, id)
		assert.ErrorIs(t, err, vault.ErrNotFound)
	})

	t.Run("DeleteTwiceIsNotFound", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		admin := registerAdmin(t, svc)
		catID := createCategory(t, svc, admin, "logins")
		id := createCredential(t, svc, admin, catID, "title", "pw")

		err := svc.DeleteCredential(ctx, admin, id)
		require.NoError(t, err)
		err = svc.DeleteCredential(ctx, admin, id)
		assert.ErrorIs(t, err, vault.ErrNotFound)
		assert.False(t, errors.Is(err, vault.ErrForbidden))
	})
}
