// Package store holds the projects and tasks in memory, persists every
// change through a Persister, and notifies subscribers with independent
// copies of the new state.
//
// Every mutation runs read, modify, persist, notify in that order while
// holding a write lock, so the state subscribers see always matches the last
// successful write. If the write fails the in-memory state is left as it was
// and nobody is notified.
//
// Subscriber callbacks run synchronously on the mutating goroutine while the
// write lock is held. A callback must not call a mutation or Subscribe on the
// same Store directly; hand the work to another goroutine instead.
package store

import (
	"context"
	"log/slog"
	"sync"
	"time"

	deckerrors "github.com/randalmurphal/taskdeck/internal/errors"
	"github.com/randalmurphal/taskdeck/internal/events"
	"github.com/randalmurphal/taskdeck/internal/id"
	"github.com/randalmurphal/taskdeck/internal/metrics"
	"github.com/randalmurphal/taskdeck/internal/model"
)

// timestampPrecision matches the millisecond ISO-8601 timestamps of the
// persisted format.
const timestampPrecision = time.Millisecond

// Persister reads and writes the complete state. *storage.Adapter implements it.
type Persister interface {
	Read(ctx context.Context) (model.State, error)
	Write(ctx context.Context, state model.State) error
}

// Recorder receives mutation metrics. *metrics.Collector implements it.
type Recorder interface {
	ObserveMutation(op, outcome string)
	ObservePersist(d time.Duration)
	SetEntities(projects, tasks int)
}

// Store is the observable project/task store.
type Store struct {
	writeMu sync.Mutex   // serializes mutations and subscription
	mu      sync.RWMutex // guards state
	state   model.State

	persister Persister
	subs      events.Registry[model.State]

	logger    *slog.Logger
	now       func() time.Time
	newID     id.Generator
	publisher events.Publisher
	recorder  Recorder
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock sets the clock used for task creation timestamps and events.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator sets the identifier generator.
func WithIDGenerator(gen id.Generator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithPublisher publishes a change event for every applied mutation.
func WithPublisher(p events.Publisher) Option {
	return func(s *Store) {
		if p != nil {
			s.publisher = p
		}
	}
}

// WithMetrics records mutation outcomes and persist latency.
func WithMetrics(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// New loads the initial state through p and returns a ready Store.
func New(ctx context.Context, p Persister, opts ...Option) (*Store, error) {
	s := &Store{
		persister: p,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     id.New,
		publisher: events.NewNopPublisher(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}

	state, err := p.Read(ctx)
	if err != nil {
		return nil, deckerrors.Wrap(err, "load state")
	}
	s.state = state.Normalize()
	s.recorder.SetEntities(len(s.state.Projects), len(s.state.Tasks))
	return s, nil
}

// Snapshot returns an independent copy of the current state.
func (s *Store) Snapshot() model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Projects returns an independent copy of the projects.
func (s *Store) Projects() []model.Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneProjects(s.state.Projects)
}

// Tasks returns an independent copy of the tasks.
func (s *Store) Tasks() []model.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return model.CloneTasks(s.state.Tasks)
}

// Project returns the project with the given id.
func (s *Store) Project(projectID string) (model.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.FindProject(projectID); i >= 0 {
		return s.state.Projects[i], true
	}
	return model.Project{}, false
}

// Task returns the task with the given id.
func (s *Store) Task(taskID string) (model.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.state.FindTask(taskID); i >= 0 {
		return s.state.Tasks[i], true
	}
	return model.Task{}, false
}

// Subscribe registers cb and immediately calls it with the current state.
// cb is then called once per committed mutation. The returned function
// removes the subscription and may be called more than once.
func (s *Store) Subscribe(cb func(model.State)) (unsubscribe func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	remove := s.subs.Add(cb)
	cb(s.Snapshot())
	return remove
}

// SubscriberCount returns the number of registered subscribers.
func (s *Store) SubscriberCount() int {
	return s.subs.Len()
}

// current returns the live state. Callers must hold writeMu, which keeps it
// from changing underneath them; the slices must not be modified in place.
func (s *Store) current() model.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// commit persists next, installs it, notifies subscribers, then publishes
// evs. Callers must hold writeMu.
func (s *Store) commit(ctx context.Context, op string, next model.State, res Result, evs ...events.Event) (Result, error) {
	next = next.Normalize()

	start := time.Now()
	err := s.persister.Write(ctx, next)
	s.recorder.ObservePersist(time.Since(start))
	if err != nil {
		s.recorder.ObserveMutation(op, metrics.OutcomeFailed)
		s.logger.Error("persist failed; state unchanged", "op", op, "error", err)
		return Result{}, deckerrors.ErrPersistenceFailed(op, err)
	}

	s.mu.Lock()
	s.state = next
	s.mu.Unlock()

	outcome := metrics.OutcomeApplied
	if !res.Applied {
		outcome = metrics.OutcomeNotFound
	}
	s.recorder.ObserveMutation(op, outcome)
	s.recorder.SetEntities(len(next.Projects), len(next.Tasks))
	s.logger.Debug("mutation committed", "op", op, "applied", res.Applied, "reason", res.Reason)

	s.subs.Notify(next.Clone)

	for _, ev := range evs {
		ev.Time = s.now()
		s.publisher.Publish(ev)
	}
	return res, nil
}

// reject records a validation rejection. Nothing is persisted or notified.
func (s *Store) reject(op string, reason Reason) (Result, error) {
	s.recorder.ObserveMutation(op, metrics.OutcomeRejected)
	s.logger.Debug("mutation rejected", "op", op, "reason", reason)
	return rejected(reason), nil
}

type nopRecorder struct{}

func (nopRecorder) ObserveMutation(string, string) {}
func (nopRecorder) ObservePersist(time.Duration)   {}
func (nopRecorder) SetEntities(int, int)           {}
