// Package auth is the sign-in gate in front of store mutations.
//
// A single fixed credential pair is accepted. The signed-in identity is
// persisted under its own blob key, separate from the project/task data, and
// survives restarts until Logout. This is a UX gate, not a security boundary.
package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/events"
	"github.com/randalmurphal/taskdeck/internal/storage"
)

// DefaultKey is the blob key holding the signed-in identity.
const DefaultKey = "taskdeck.auth"

// InvalidCredentials is the message returned for a failed login.
const InvalidCredentials = "Invalid credentials"

// Identity is the signed-in account.
type Identity struct {
	Username   string    `json:"username"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// Credentials is the accepted username/password pair.
type Credentials struct {
	Username string
	Password string
}

// LoginResult is the outcome of Login. Identity is set when OK; Error
// explains a failure.
type LoginResult struct {
	OK       bool      `json:"ok"`
	Identity *Identity `json:"account,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// Service tracks the signed-in identity. Subscriber callbacks may read the
// identity but must not call Login or Logout synchronously.
type Service struct {
	// writeMu serializes persist, notify and Subscribe; mu guards user.
	writeMu sync.Mutex
	mu      sync.RWMutex
	blob    storage.Blob
	key     string
	creds   Credentials
	user    *Identity
	subs    events.Registry[*Identity]

	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithKey sets the blob key. Empty keeps DefaultKey.
func WithKey(key string) Option {
	return func(s *Service) {
		if key != "" {
			s.key = key
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for LoggedInAt.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New loads the persisted identity from blob. A corrupt record is cleared
// and treated as signed out.
func New(ctx context.Context, blob storage.Blob, creds Credentials, opts ...Option) (*Service, error) {
	s := &Service{
		blob:   blob,
		key:    DefaultKey,
		creds:  creds,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	user, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	s.user = user
	return s, nil
}

func (s *Service) read(ctx context.Context) (*Identity, error) {
	raw, err := s.blob.Get(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.key, err)
	}

	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil || id.Username == "" {
		if err == nil {
			err = errors.New("record has no username")
		}
		s.logger.Warn("clearing invalid auth record",
			"key", s.key, "error", deckerrors.ErrStateCorrupt(s.key, err))
		if err := s.blob.Delete(ctx, s.key); err != nil {
			return nil, fmt.Errorf("clear %s: %w", s.key, err)
		}
		return nil, nil
	}
	return &id, nil
}

// User returns the signed-in identity, or nil.
func (s *Service) User() *Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.clone()
}

// IsAuthenticated reports whether someone is signed in.
func (s *Service) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// Require returns a NOT_AUTHENTICATED error when nobody is signed in.
func (s *Service) Require() error {
	if !s.IsAuthenticated() {
		return deckerrors.ErrNotAuthenticated()
	}
	return nil
}

// Login checks the credentials. On success the identity is persisted and
// subscribers are notified. The error is non-nil only when persisting fails.
func (s *Service) Login(ctx context.Context, username, password string) (LoginResult, error) {
	if !s.matches(username, password) {
		s.logger.Debug("login rejected", "username", username)
		return LoginResult{Error: InvalidCredentials}, nil
	}

	id := &Identity{Username: username, LoggedInAt: s.now().UTC().Truncate(time.Millisecond)}
	if err := s.persist(ctx, id); err != nil {
		return LoginResult{}, err
	}
	s.logger.Info("signed in", "username", username)
	return LoginResult{OK: true, Identity: id.clone()}, nil
}

// Logout clears the identity and notifies subscribers.
func (s *Service) Logout(ctx context.Context) error {
	return s.persist(ctx, nil)
}

// Subscribe registers cb and immediately calls it with the current identity
// (nil when signed out). cb is then called after every login and logout.
func (s *Service) Subscribe(cb func(*Identity)) (unsubscribe func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	remove := s.subs.Add(cb)
	cb(s.User())
	return remove
}

func (s *Service) matches(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.creds.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
	return userOK && passOK
}

func (s *Service) persist(ctx context.Context, id *Identity) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if id == nil {
		if err := s.blob.Delete(ctx, s.key); err != nil {
			return deckerrors.ErrPersistenceFailed("logout", err)
		}
	} else {
		raw, err := json.Marshal(id)
		if err != nil {
			return fmt.Errorf("encode identity: %w", err)
		}
		if err := s.blob.Put(ctx, s.key, raw); err != nil {
			return deckerrors.ErrPersistenceFailed("login", err)
		}
	}

	s.mu.Lock()
	s.user = id
	s.mu.Unlock()

	s.subs.Notify(id.clone)
	return nil
}

func (id *Identity) clone() *Identity {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}
