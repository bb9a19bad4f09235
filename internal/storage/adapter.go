package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/model"
)

// DefaultKey is the blob key holding the projects/tasks snapshot.
const DefaultKey = "taskdeck.data"

// Adapter reads and writes the complete store state under one key.
type Adapter struct {
	blob   Blob
	key    string
	logger *slog.Logger
	seed   func() model.State
}

// AdapterOption configures an Adapter.
type AdapterOption func(*Adapter)

// WithAdapterLogger sets the logger used to report corrupt payloads.
func WithAdapterLogger(l *slog.Logger) AdapterOption {
	return func(a *Adapter) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithSeed replaces the state written when no snapshot exists.
func WithSeed(seed func() model.State) AdapterOption {
	return func(a *Adapter) {
		if seed != nil {
			a.seed = seed
		}
	}
}

// NewAdapter creates an Adapter over blob. An empty key means DefaultKey.
func NewAdapter(blob Blob, key string, opts ...AdapterOption) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	a := &Adapter{
		blob:   blob,
		key:    key,
		logger: slog.Default(),
		seed:   model.Seed,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Key returns the blob key.
func (a *Adapter) Key() string {
	return a.key
}

// Read loads the last written state. When nothing is stored the seed state
// is written and returned. A corrupt payload is logged, deleted, and
// replaced by the seed state the same way.
func (a *Adapter) Read(ctx context.Context) (model.State, error) {
	data, err := a.blob.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return a.writeSeed(ctx)
	}
	if err != nil {
		return model.State{}, fmt.Errorf("read %s: %w", a.key, err)
	}

	state, err := Decode(data)
	if err != nil {
		a.logger.Warn("discarding corrupt state",
			"key", a.key,
			"error", deckerrors.ErrStateCorrupt(a.key, err))
		if err := a.blob.Delete(ctx, a.key); err != nil {
			return model.State{}, fmt.Errorf("delete corrupt %s: %w", a.key, err)
		}
		return a.writeSeed(ctx)
	}
	if err := state.Check(); err != nil {
		a.logger.Warn("loaded state has integrity problems", "key", a.key, "error", err)
	}
	return state, nil
}

func (a *Adapter) writeSeed(ctx context.Context) (model.State, error) {
	seed := a.seed().Normalize()
	if err := a.Write(ctx, seed); err != nil {
		return model.State{}, err
	}
	a.logger.Debug("wrote seed state", "key", a.key)
	return seed, nil
}

// Write serializes the complete state, overwriting any prior value.
func (a *Adapter) Write(ctx context.Context, state model.State) error {
	data, err := Encode(state)
	if err != nil {
		return err
	}
	if err := a.blob.Put(ctx, a.key, data); err != nil {
		return fmt.Errorf("write %s: %w", a.key, err)
	}
	return nil
}

// Encode returns the persisted form of state: indented JSON with both
// collections always present.
func Encode(state model.State) ([]byte, error) {
	data, err := json.MarshalIndent(state.Normalize(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode state: %w", err)
	}
	return data, nil
}

// Decode parses a persisted payload. Only a payload that is not a JSON
// object of the state shape is an error; integrity is checked by Read.
func Decode(data []byte) (model.State, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return model.State{}, fmt.Errorf("payload is not a JSON object")
	}

	var state model.State
	if err := json.Unmarshal(trimmed, &state); err != nil {
		return model.State{}, err
	}
	return state.Normalize(), nil
}
