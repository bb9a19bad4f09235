package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/storage"
)

var (
	testCreds = Credentials{Username: "admin", Password: "1234"}
	loginTime = time.Date(2025, 1, 2, 3, 4, 5, 600700800, time.UTC)
)

func newService(t *testing.T, blob storage.Blob, opts ...Option) *Service {
	t.Helper()
	base := []Option{
		WithClock(func() time.Time { return loginTime }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	s, err := New(context.Background(), blob, testCreds, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func TestLogin(t *testing.T) {
	blob := storage.NewMemoryBlob()
	s := newService(t, blob)
	ctx := context.Background()

	assert.False(t, s.IsAuthenticated())
	assert.Nil(t, s.User())
	assert.True(t, deckerrors.HasCode(s.Require(), deckerrors.CodeNotAuthenticated))

	res, err := s.Login(ctx, "admin", "1234")
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Empty(t, res.Error)
	assert.Equal(t, &Identity{Username: "admin", LoggedInAt: loginTime.Truncate(time.Millisecond)}, res.Identity)

	assert.True(t, s.IsAuthenticated())
	assert.NoError(t, s.Require())
	assert.Equal(t, "admin", s.User().Username)

	raw, ok := blob.Raw(DefaultKey)
	require.True(t, ok)
	var stored map[string]any
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, "admin", stored["username"])
	assert.Equal(t, "2025-01-02T03:04:05.6Z", stored["loggedInAt"])
}

func TestLogin_InvalidCredentials(t *testing.T) {
	tests := []struct{ user, pass string }{
		{"admin", "wrong"},
		{"root", "1234"},
		{"", ""},
		{"admin", "12345"},
	}

	for _, tt := range tests {
		t.Run(tt.user+"/"+tt.pass, func(t *testing.T) {
			blob := storage.NewMemoryBlob()
			s := newService(t, blob)

			res, err := s.Login(context.Background(), tt.user, tt.pass)
			require.NoError(t, err)
			assert.False(t, res.OK)
			assert.Equal(t, InvalidCredentials, res.Error)
			assert.Nil(t, res.Identity)
			assert.False(t, s.IsAuthenticated())
			assert.Zero(t, blob.PutCount())
		})
	}
}

func TestIdentitySurvivesRestart(t *testing.T) {
	blob := storage.NewMemoryBlob()
	ctx := context.Background()

	_, err := newService(t, blob).Login(ctx, "admin", "1234")
	require.NoError(t, err)

	again := newService(t, blob)
	require.True(t, again.IsAuthenticated())
	assert.Equal(t, "admin", again.User().Username)

	require.NoError(t, again.Logout(ctx))
	assert.False(t, newService(t, blob).IsAuthenticated())
	_, ok := blob.Raw(DefaultKey)
	assert.False(t, ok)
}

func TestCorruptRecordIsCleared(t *testing.T) {
	for name, payload := range map[string]string{
		"not json":    "{oops",
		"no username": `{"loggedInAt":"2025-01-01T00:00:00Z"}`,
		"wrong type":  `[1,2]`,
	} {
		t.Run(name, func(t *testing.T) {
			blob := storage.NewMemoryBlob()
			require.NoError(t, blob.Put(context.Background(), DefaultKey, []byte(payload)))

			s := newService(t, blob)
			assert.False(t, s.IsAuthenticated())
			_, ok := blob.Raw(DefaultKey)
			assert.False(t, ok, "corrupt record removed")
		})
	}
}

func TestNew_ReadFailure(t *testing.T) {
	blob := storage.NewMemoryBlob()
	blob.FailGets(errors.New("offline"))

	_, err := New(context.Background(), blob, testCreds)
	assert.ErrorContains(t, err, "offline")
}

func TestSubscribe(t *testing.T) {
	s := newService(t, storage.NewMemoryBlob())
	ctx := context.Background()

	var seen []*Identity
	unsub := s.Subscribe(func(id *Identity) { seen = append(seen, id) })
	require.Len(t, seen, 1)
	assert.Nil(t, seen[0])

	_, err := s.Login(ctx, "admin", "1234")
	require.NoError(t, err)
	_, err = s.Login(ctx, "admin", "nope")
	require.NoError(t, err)
	require.NoError(t, s.Logout(ctx))

	require.Len(t, seen, 3, "failed login does not notify")
	assert.Equal(t, "admin", seen[1].Username)
	assert.Nil(t, seen[2])

	seen[1].Username = "mallory"
	unsub()
	unsub()

	_, err = s.Login(ctx, "admin", "1234")
	require.NoError(t, err)
	assert.Len(t, seen, 3)
	assert.Equal(t, "admin", s.User().Username)
}

func TestSubscribe_CallbackReadsIdentity(t *testing.T) {
	s := newService(t, storage.NewMemoryBlob())
	ctx := context.Background()

	type observation struct {
		authenticated bool
		user          *Identity
	}
	var seen []observation
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Subscribe(func(*Identity) {
			seen = append(seen, observation{s.IsAuthenticated(), s.User()})
		})
		_, _ = s.Login(ctx, "admin", "1234")
		_ = s.Logout(ctx)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber reading the identity blocked Subscribe or Login")
	}

	require.Len(t, seen, 3)
	assert.False(t, seen[0].authenticated)
	assert.True(t, seen[1].authenticated)
	assert.Equal(t, "admin", seen[1].user.Username)
	assert.False(t, seen[2].authenticated)
	assert.Nil(t, seen[2].user)
}

func TestLogin_PersistFailure(t *testing.T) {
	blob := storage.NewMemoryBlob()
	s := newService(t, blob)
	calls := 0
	s.Subscribe(func(*Identity) { calls++ })

	blob.FailPuts(errors.New("read-only"))
	res, err := s.Login(context.Background(), "admin", "1234")
	require.Error(t, err)
	assert.True(t, deckerrors.HasCode(err, deckerrors.CodePersistenceFailed))
	assert.False(t, res.OK)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, 1, calls)
}

func TestWithKey(t *testing.T) {
	blob := storage.NewMemoryBlob()
	s := newService(t, blob, WithKey("custom.auth"))

	_, err := s.Login(context.Background(), "admin", "1234")
	require.NoError(t, err)

	_, ok := blob.Raw("custom.auth")
	assert.True(t, ok)
	_, ok = blob.Raw(DefaultKey)
	assert.False(t, ok)
}
