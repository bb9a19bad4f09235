package events

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/taskdeck/internal/storage"
)

const (
	// DefaultJournalKey is the blob key holding the change journal.
	DefaultJournalKey = "taskdeck.journal.jsonl"
	// DefaultJournalLimit is the number of entries the journal keeps.
	DefaultJournalLimit = 500

	// Buffer flushes when it reaches this size
	bufferSizeThreshold = 10
	// Buffer flushes automatically every 5 seconds
	flushInterval = 5 * time.Second
)

// JournalPublisher wraps MemoryPublisher and appends every event to a
// bounded JSON-lines journal in a Blob. Writes are buffered and flushed on
// size, on a timer, and on Close.
type JournalPublisher struct {
	inner       *MemoryPublisher
	blob        storage.Blob
	key         string
	limit       int
	buffer      []Event
	bufferMu    sync.Mutex
	flushMu     sync.Mutex
	flushTicker *time.Ticker
	logger      *slog.Logger
	stopCh      chan struct{}
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// JournalOption configures a JournalPublisher.
type JournalOption func(*JournalPublisher)

// WithJournalKey sets the blob key.
func WithJournalKey(key string) JournalOption {
	return func(p *JournalPublisher) {
		if key != "" {
			p.key = key
		}
	}
}

// WithJournalLimit caps the number of retained entries.
func WithJournalLimit(n int) JournalOption {
	return func(p *JournalPublisher) {
		if n > 0 {
			p.limit = n
		}
	}
}

// NewJournalPublisher creates a journaling publisher over blob.
func NewJournalPublisher(blob storage.Blob, logger *slog.Logger, opts ...JournalOption) *JournalPublisher {
	if logger == nil {
		logger = slog.Default()
	}

	p := &JournalPublisher{
		inner:  NewMemoryPublisher(),
		blob:   blob,
		key:    DefaultJournalKey,
		limit:  DefaultJournalLimit,
		buffer: make([]Event, 0, bufferSizeThreshold),
		logger: logger,
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.flushTicker = time.NewTicker(flushInterval)
	p.wg.Add(1)
	go p.flushLoop()

	return p
}

// Publish sends an event to subscribers and queues it for the journal.
func (p *JournalPublisher) Publish(event Event) {
	p.inner.Publish(event)

	p.bufferMu.Lock()
	p.buffer = append(p.buffer, event)
	shouldFlush := len(p.buffer) >= bufferSizeThreshold
	p.bufferMu.Unlock()

	if shouldFlush {
		p.flush()
	}
}

// Subscribe returns a channel that receives events for the given topic.
func (p *JournalPublisher) Subscribe(topic string) <-chan Event {
	return p.inner.Subscribe(topic)
}

// Unsubscribe removes a subscription channel.
func (p *JournalPublisher) Unsubscribe(topic string, ch <-chan Event) {
	p.inner.Unsubscribe(topic, ch)
}

// Flush writes buffered events now.
func (p *JournalPublisher) Flush() {
	p.flush()
}

// Close stops the flush loop, writes remaining events and closes the inner
// publisher. Close is idempotent.
func (p *JournalPublisher) Close() {
	p.closeOnce.Do(func() {
		close(p.stopCh)
		p.flushTicker.Stop()
		p.wg.Wait()
		p.flush()
		p.inner.Close()
	})
}

func (p *JournalPublisher) flushLoop() {
	defer p.wg.Done()

	for {
		select {
		case <-p.flushTicker.C:
			p.flush()
		case <-p.stopCh:
			return
		}
	}
}

func (p *JournalPublisher) flush() {
	p.bufferMu.Lock()
	if len(p.buffer) == 0 {
		p.bufferMu.Unlock()
		return
	}
	toFlush := p.buffer
	p.buffer = make([]Event, 0, bufferSizeThreshold)
	p.bufferMu.Unlock()

	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	if err := p.appendEntries(context.Background(), toFlush); err != nil {
		// Dropped rather than retried so the buffer cannot grow without bound.
		p.logger.Error("failed to write journal", "error", err, "count", len(toFlush))
	}
}

func (p *JournalPublisher) appendEntries(ctx context.Context, evs []Event) error {
	existing, err := p.blob.Get(ctx, p.key)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("read journal: %w", err)
	}

	lines := splitLines(existing)
	for _, ev := range evs {
		line, err := json.Marshal(ev)
		if err != nil {
			return fmt.Errorf("encode %s event: %w", ev.Type, err)
		}
		lines = append(lines, line)
	}
	if len(lines) > p.limit {
		lines = lines[len(lines)-p.limit:]
	}

	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := p.blob.Put(ctx, p.key, buf.Bytes()); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}

// JournalEntry is one decoded journal line. Data holds the raw JSON payload.
type JournalEntry struct {
	Type     EventType       `json:"type"`
	EntityID string          `json:"entity_id"`
	Data     json.RawMessage `json:"data,omitempty"`
	Time     time.Time       `json:"time"`
}

// ReadJournal returns up to the last n journal entries, oldest first.
// n <= 0 returns everything. Undecodable lines are skipped.
func ReadJournal(ctx context.Context, blob storage.Blob, key string, n int) ([]JournalEntry, error) {
	if key == "" {
		key = DefaultJournalKey
	}
	raw, err := blob.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return []JournalEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read journal: %w", err)
	}

	entries := []JournalEntry{}
	for _, line := range splitLines(raw) {
		var e JournalEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func splitLines(data []byte) [][]byte {
	var lines [][]byte
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), sc.Bytes()...))
	}
	return lines
}
