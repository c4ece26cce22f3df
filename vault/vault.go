package vault

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/salapa/vaultd/crypto"
	"github.com/salapa/vaultd/internal/util"
	"github.com/salapa/vaultd/mail"
	"github.com/salapa/vaultd/storage"
)

// Service owns the vault domain logic over a record store. The store and
// cipher are the only shared state; both are safe for concurrent use, so a
// single Service serves all requests.
type Service struct {
	store         storage.Store
	cipher        *crypto.Cipher
	mailer        mail.Sender
	sessionSecret []byte
	baseURL       string
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithMailer sets the capability used to deliver activation and reset links.
func WithMailer(m mail.Sender) Option {
	return func(s *Service) { s.mailer = m }
}

// WithSessionSecret sets the HMAC secret signing session tokens.
func WithSessionSecret(secret []byte) Option {
	return func(s *Service) { s.sessionSecret = util.CopyBytes(secret) }
}

// WithBaseURL sets the public base URL used to build emailed links.
func WithBaseURL(u string) Option {
	return func(s *Service) { s.baseURL = u }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source. Used by tests to control expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service and seeds the immutable role catalog.
func New(store storage.Store, cipher *crypto.Cipher, opts ...Option) (*Service, error) {
	s := &Service{
		store:  store,
		cipher: cipher,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(os.Stderr, nil))
	}
	if err := s.seedRoles(); err != nil {
		return nil, fmt.Errorf("seeding roles: %w", err)
	}
	return s, nil
}

func (s *Service) seedRoles() error {
	for _, name := range []string{RoleAdmin, RoleUser} {
		err := s.createRecord(kindRole, name, Role{ID: name, Name: name})
		if err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Record helpers. Storage failures surface as ErrDependency; missing records
// as ErrNotFound. Each call is an independently committed write with no
// cross-record transaction, which is why the workflows carry explicit
// compensating deletes.
// ---------------------------------------------------------------------------

func (s *Service) putRecord(kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", kind, err)
	}
	if err := s.store.Put(kind, id, data); err != nil {
		return fmt.Errorf("%w: storing %s record: %v", ErrDependency, kind, err)
	}
	return nil
}

func (s *Service) createRecord(kind, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s record: %w", kind, err)
	}
	if err := s.store.Create(kind, id, data); err != nil {
		if errors.Is(err, storage.ErrExists) {
			return fmt.Errorf("%w: %s %s already exists", ErrConflict, kind, id)
		}
		return fmt.Errorf("%w: storing %s record: %v", ErrDependency, kind, err)
	}
	return nil
}

func (s *Service) getRecord(kind, id string, v any) error {
	data, err := s.store.Get(kind, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return fmt.Errorf("%w: loading %s record: %v", ErrDependency, kind, err)
	}
	return json.Unmarshal(data, v)
}

func (s *Service) deleteRecord(kind, id string) error {
	if err := s.store.Delete(kind, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s %s", ErrNotFound, kind, id)
		}
		return fmt.Errorf("%w: deleting %s record: %v", ErrDependency, kind, err)
	}
	return nil
}

// listRecords decodes every record of a kind into T, skipping nothing:
// a corrupt record is a storage fault, not a filter condition.
func listRecords[T any](s *Service, kind string) ([]T, error) {
	records, err := s.store.List(kind)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s records: %v", ErrDependency, kind, err)
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec.Data, &v); err != nil {
			return nil, fmt.Errorf("decoding %s record %s: %w", kind, rec.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}
