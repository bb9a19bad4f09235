package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/lock"
)

func backends(t *testing.T) map[string]func(t *testing.T) Blob {
	return map[string]func(t *testing.T) Blob{
		"memory": func(t *testing.T) Blob { return NewMemoryBlob() },
		"file": func(t *testing.T) Blob {
			b, err := NewFileBlob(t.TempDir())
			require.NoError(t, err)
			t.Cleanup(func() { _ = b.Close() })
			return b
		},
		"sql": func(t *testing.T) Blob { return NewTestSQLBlob(t) },
		"s3":  func(t *testing.T) Blob { return newTestS3Blob(t, newFakeS3(), "") },
	}
}

func TestBlob_Contract(t *testing.T) {
	for name, open := range backends(t) {
		t.Run(name, func(t *testing.T) {
			b := open(t)
			ctx := context.Background()

			_, err := b.Get(ctx, "state")
			assert.ErrorIs(t, err, ErrNotFound)

			require.NoError(t, b.Put(ctx, "state", []byte(`{"v":1}`)))
			require.NoError(t, b.Put(ctx, "state", []byte(`{"v":2}`)))
			require.NoError(t, b.Put(ctx, "other", []byte(`{"o":true}`)))

			got, err := b.Get(ctx, "state")
			require.NoError(t, err)
			assert.Equal(t, `{"v":2}`, string(got), "put overwrites")

			require.NoError(t, b.Delete(ctx, "state"))
			require.NoError(t, b.Delete(ctx, "state"), "deleting a missing key is not an error")

			_, err = b.Get(ctx, "state")
			assert.ErrorIs(t, err, ErrNotFound)

			got, err = b.Get(ctx, "other")
			require.NoError(t, err)
			assert.Equal(t, `{"o":true}`, string(got), "keys are isolated")
		})
	}
}

func TestMemoryBlob_FailureInjection(t *testing.T) {
	b := NewMemoryBlob()
	ctx := context.Background()
	boom := errors.New("boom")

	b.FailPuts(boom)
	assert.ErrorIs(t, b.Put(ctx, "k", []byte("x")), boom)
	assert.Equal(t, 0, b.PutCount())

	b.FailPuts(nil)
	require.NoError(t, b.Put(ctx, "k", []byte("x")))
	assert.Equal(t, 1, b.PutCount())

	b.FailGets(boom)
	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, boom)

	raw, ok := b.Raw("k")
	assert.True(t, ok)
	assert.Equal(t, "x", string(raw))
}

func TestMemoryBlob_CopiesValues(t *testing.T) {
	b := NewMemoryBlob()
	ctx := context.Background()

	in := []byte("abc")
	require.NoError(t, b.Put(ctx, "k", in))
	in[0] = 'z'

	out, err := b.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(out))
	out[0] = 'q'

	again, _ := b.Get(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestFileBlob_SecondOpenIsLocked(t *testing.T) {
	dir := t.TempDir()

	first, err := NewFileBlob(dir)
	require.NoError(t, err)

	_, err = NewFileBlob(dir)
	require.Error(t, err)
	assert.True(t, deckerrors.HasCode(err, deckerrors.CodeStoreLocked))

	require.NoError(t, first.Close())

	second, err := NewFileBlob(dir)
	require.NoError(t, err, "guard released on close")
	_ = second.Close()
}

func TestFileBlob_StalePIDIsReclaimed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, lock.PIDFileName), []byte("999999999"), 0644))

	b, err := NewFileBlob(dir)
	require.NoError(t, err)
	_ = b.Close()
}

func TestFileBlob_AtomicWriteLeavesNoTemp(t *testing.T) {
	dir := t.TempDir()
	b, err := NewFileBlob(dir)
	require.NoError(t, err)
	defer b.Close()

	require.NoError(t, b.Put(context.Background(), "taskdeck.data", []byte("{}")))
	require.NoError(t, b.Put(context.Background(), "taskdeck.journal.jsonl", []byte("{}\n")))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"taskdeck.data.json", "taskdeck.journal.jsonl", lock.PIDFileName}, names)
}

func TestFileBlob_RejectsPathKeys(t *testing.T) {
	b, err := NewFileBlob(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	ctx := context.Background()
	for _, key := range []string{"", "../escape", "a/b", ".."} {
		assert.Error(t, b.Put(ctx, key, []byte("x")), key)
	}
}
