package vault_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/salapa/vaultd/crypto"
	"github.com/salapa/vaultd/mail"
	"github.com/salapa/vaultd/storage"
	"github.com/salapa/vaultd/storage/memory"
	"github.com/salapa/vaultd/vault"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "Str0ng!Pass"
	adminPin      = "1234"
)

// fakeClock is a controllable time source for expiry tests.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Now()}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// failingStore wraps a Store and fails selected operations per kind.
type failingStore struct {
	storage.Store
	mu         sync.Mutex
	failPut    map[string]error
	failDelete map[string]error
}

func newFailingStore(inner storage.Store) *failingStore {
	return &failingStore{
		Store:      inner,
		failPut:    make(map[string]error),
		failDelete: make(map[string]error),
	}
}

func (f *failingStore) setPutError(kind string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failPut, kind)
		return
	}
	f.failPut[kind] = err
}

func (f *failingStore) setDeleteError(kind string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failDelete, kind)
		return
	}
	f.failDelete[kind] = err
}

func (f *failingStore) Put(kind, id string, data []byte) error {
	f.mu.Lock()
	err := f.failPut[kind]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Put(kind, id, data)
}

func (f *failingStore) Delete(kind, id string) error {
	f.mu.Lock()
	err := f.failDelete[kind]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Store.Delete(kind, id)
}

func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	cipher, err := crypto.NewCipherFromHex(strings.Repeat("ab", 32))
	require.NoError(t, err)
	return cipher
}

func newTestService(t *testing.T, store storage.Store) (*vault.Service, *mail.Recorder, *fakeClock) {
	t.Helper()
	if store == nil {
		store = memory.NewStore()
	}
	mailer := &mail.Recorder{}
	clock := newFakeClock()
	svc, err := vault.New(store, newTestCipher(t),
		vault.WithMailer(mailer),
		vault.WithSessionSecret([]byte("test-session-secret")),
		vault.WithBaseURL("http://vault.test"),
		vault.WithClock(clock.Now),
	)
	require.NoError(t, err)
	return svc, mailer, clock
}

func registerAdmin(t *testing.T, svc *vault.Service) string {
	t.Helper()
	id, err := svc.RegisterAdmin(context.Background(), vault.RegisterAdminInput{
		Username: "admin",
		Email:    adminEmail,
		Password: adminPassword,
		Pin:      adminPin,
	})
	require.NoError(t, err)
	return id
}

// inviteAndActivate runs a full onboarding round for a USER account and
// returns the new user id.
func inviteAndActivate(t *testing.T, svc *vault.Service, mailer *mail.Recorder, email, password string) string {
	t.Helper()
	ctx := context.Background()

	_, err := svc.CreateTemporaryUser(ctx, vault.CreateTemporaryUserInput{
		Username:     strings.SplitN(email, "@", 2)[0],
		Email:        email,
		TempPassword: "Temp0rary!Pw",
		TempPin:      "0000",
		RoleID:       vault.RoleUser,
	})
	require.NoError(t, err)

	sent := mailer.Sent()
	require.NotEmpty(t, sent)
	token := tokenFromLink(t, sent[len(sent)-1].Link)

	userID, err := svc.Activate(ctx, token, password, "5678")
	require.NoError(t, err)
	return userID
}

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	i := strings.LastIndex(link, "/")
	require.Greater(t, i, 0, "link %q has no token segment", link)
	return link[i+1:]
}

func createCategory(t *testing.T, svc *vault.Service, ownerID, name string) string {
	t.Helper()
	id, err := svc.CreateCategory(context.Background(), ownerID, name)
	require.NoError(t, err)
	return id
}

func createCredential(t *testing.T, svc *vault.Service, ownerID, categoryID, title, secret string) string {
	t.Helper()
	id, err := svc.CreateCredential(context.Background(), ownerID, vault.CreateCredentialInput{
		Title:      title,
		Username:   "account",
		Secret:     secret,
		URL:        "https://example.com",
		CategoryID: categoryID,
	})
	require.NoError(t, err)
	return id
}
