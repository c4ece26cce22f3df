package vault_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/salapa/vaultd/vault"
)

func TestRegisterAdmin(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstRegistrationSucceeds", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		id := registerAdmin(t, svc)
		assert.NotEmpty(t, id)

		role, err := svc.RoleOfUser(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, vault.RoleAdmin, role)
	})

	t.Run("SecondRegistrationForbidden", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		registerAdmin(t, svc)

		_, err := svc.RegisterAdmin(ctx, vault.RegisterAdminInput{
			Username: "second",
			Email:    "second@example.com",
			Password: adminPassword,
			Pin:      "9999",
		})
		assert.ErrorIs(t, err, vault.ErrForbidden)
	})

	t.Run("DuplicateEmailConflict", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		registerAdmin(t, svc)

		_, err := svc.RegisterAdmin(ctx, vault.RegisterAdminInput{
			Username: "again",
			Email:    adminEmail,
			Password: adminPassword,
			Pin:      "9999",
		})
		assert.ErrorIs(t, err, vault.ErrConflict)
	})

	t.Run("RejectsWeakSecrets", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)

		for name, in := range map[string]vault.RegisterAdminInput{
			"short password":  {Username: "a", Email: "a@b.co", Password: "Ab1!", Pin: "1234"},
			"no uppercase":    {Username: "a", Email: "a@b.co", Password: "weakpass1!", Pin: "1234"},
			"no special":      {Username: "a", Email: "a@b.co", Password: "Weakpass11", Pin: "1234"},
			"short pin":       {Username: "a", Email: "a@b.co", Password: adminPassword, Pin: "12"},
			"non-numeric pin": {Username: "a", Email: "a@b.co", Password: adminPassword, Pin: "12ab"},
			"bad email":       {Username: "a", Email: "not-an-email", Password: adminPassword, Pin: "1234"},
		} {
			_, err := svc.RegisterAdmin(ctx, in)
			assert.ErrorIs(t, err, vault.ErrValidation, name)
		}
	})

	t.Run("FailedRegistrationReleasesNothing", func(t *testing.T) {
		// A rejected registration must not consume the singleton claim.
		svc, _, _ := newTestService(t, nil)

		_, err := svc.RegisterAdmin(ctx, vault.RegisterAdminInput{
			Username: "a", Email: "bad", Password: adminPassword, Pin: "1234",
		})
		require.ErrorIs(t, err, vault.ErrValidation)

		id := registerAdmin(t, svc)
		assert.NotEmpty(t, id)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("IssuesVerifiableToken", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		id := registerAdmin(t, svc)

		token, user, err := svc.Login(ctx, adminEmail, adminPassword)
		require.NoError(t, err)
		assert.Equal(t, id, user.ID)

		verified, err := svc.VerifySession(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, id, verified.ID)
	})

	t.Run("UnknownEmailAndBadPasswordAreIndistinguishable", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		registerAdmin(t, svc)

		_, _, errUnknown := svc.Login(ctx, "nobody@example.com", adminPassword)
		_, _, errBadPass := svc.Login(ctx, adminEmail, "Wrong!Pass1")

		require.ErrorIs(t, errUnknown, vault.ErrUnauthorized)
		require.ErrorIs(t, errBadPass, vault.ErrUnauthorized)
		assert.Equal(t, errUnknown.Error(), errBadPass.Error())
	})

	t.Run("EmailIsCaseInsensitive", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		registerAdmin(t, svc)

		_, _, err := svc.Login(ctx, "Admin@Example.COM", adminPassword)
		assert.NoError(t, err)
	})
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("RejectsGarbage", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		_, err := svc.VerifySession(ctx, "not-a-token")
		assert.ErrorIs(t, err, vault.ErrUnauthorized)
	})

	t.Run("CredentialChangeInvalidatesOldTokens", func(t *testing.T) {
		svc, _, clock := newTestService(t, nil)
		id := registerAdmin(t, svc)

		token, _, err := svc.Login(ctx, adminEmail, adminPassword)
		require.NoError(t, err)

		clock.Advance(2 * time.Second)
		err = svc.ChangeCredentials(ctx, id, vault.ChangeCredentialsInput{
			CurrentPassword: adminPassword,
			NewPassword:     "An0ther!Pass",
			NewPin:          "4321",
		})
		require.NoError(t, err)

		_, err = svc.VerifySession(ctx, token)
		assert.ErrorIs(t, err, vault.ErrUnauthorized)
	})
}

func TestChangeCredentials(t *testing.T) {
	ctx := context.Background()

	t.Run("RequiresCurrentPassword", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		id := registerAdmin(t, svc)

		err := svc.ChangeCredentials(ctx, id, vault.ChangeCredentialsInput{
			CurrentPassword: "Wrong!Pass1",
			NewPassword:     "An0ther!Pass",
			NewPin:          "4321",
		})
		assert.ErrorIs(t, err, vault.ErrUnauthorized)
	})

	t.Run("RejectsReuse", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		id := registerAdmin(t, svc)

		err := svc.ChangeCredentials(ctx, id, vault.ChangeCredentialsInput{
			CurrentPassword: adminPassword,
			NewPassword:     adminPassword,
			NewPin:          "4321",
		})
		assert.ErrorIs(t, err, vault.ErrValidation)

		err = svc.ChangeCredentials(ctx, id, vault.ChangeCredentialsInput{
			CurrentPassword: adminPassword,
			NewPassword:     "An0ther!Pass",
			NewPin:          adminPin,
		})
		assert.ErrorIs(t, err, vault.ErrValidation)
	})

	t.Run("NewPasswordWorks", func(t *testing.T) {
		svc, _, _ := newTestService(t, nil)
		id := registerAdmin(t, svc)

		err := svc.ChangeCredentials(ctx, id, vault.ChangeCredentialsInput{
			CurrentPassword: adminPassword,
			NewPassword:     "An0ther!Pass",
			NewPin:          "4321",
		})
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, adminEmail, "An0ther!Pass")
		assert.NoError(t, err)
		_, _, err = svc.Login(ctx, adminEmail, adminPassword)
		assert.ErrorIs(t, err, vault.ErrUnauthorized)
	})
}
