// Package logbuffer keeps the most recent client log entries, persisted
// under a fixed storage key and exportable as a JSON file.
package logbuffer

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"io"
	"sync"
	"time"

	"github.com/angelmondragon/finblog-client/pkg/storage"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
)

const (
	DefaultCapacity = 1000
	// DefaultFlushDelay batches the writes that land between two persists.
	DefaultFlushDelay = 2 * time.Second
)

type Entry struct {
	ID      string         `json:"id"`
	Time    time.Time      `json:"timestamp"`
	Level   string         `json:"level"`
	Message string         `json:"message"`
	Fields  map[string]any `json:"data,omitempty"`
}

// Buffer is an io.Writer for zerolog JSON lines. Writes never fail and never
// touch storage: lines that do not parse are dropped, and the buffer is
// persisted at most once per flush delay. Call Close before exit to persist
// the tail.
type Buffer struct {
	mu         sync.Mutex
	entries    []Entry
	capacity   int
	store      storage.Store
	now        func() time.Time
	flushDelay time.Duration
	timer      *time.Timer
	dirty      bool

	persistMu sync.Mutex
}

func New(store storage.Store, capacity int) *Buffer {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Buffer{
		capacity:   capacity,
		store:      store,
		now:        time.Now,
		flushDelay: DefaultFlushDelay,
	}
}

// Load restores the entries persisted by an earlier run.
func (b *Buffer) Load(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	raw, err := b.store.Get(ctx, storage.LogsKey)
	if stdErrors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	var entries []Entry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = trim(append(entries, b.entries...), b.capacity)
	return nil
}

func (b *Buffer) Write(p []byte) (int, error) {
	entry, ok := b.parse(p)
	if !ok {
		return len(p), nil
	}
	b.mu.Lock()
	b.entries = trim(append(b.entries, entry), b.capacity)
	if b.store != nil {
		b.dirty = true
		if b.timer == nil {
			b.timer = time.AfterFunc(b.flushDelay, b.flushPending)
		}
	}
	b.mu.Unlock()
	return len(p), nil
}

func (b *Buffer) parse(p []byte) (Entry, bool) {
	if !gjson.ValidBytes(p) {
		return Entry{}, false
	}
	doc := gjson.ParseBytes(p)
	entry := Entry{
		ID:      uuid.NewString(),
		Level:   doc.Get("level").String(),
		Message: doc.Get("message").String(),
		Time:    b.now().UTC(),
	}
	if ts := doc.Get("time"); ts.Exists() {
		if parsed, err := time.Parse(time.RFC3339Nano, ts.String()); err == nil {
			entry.Time = parsed
		}
	}
	doc.ForEach(func(key, value gjson.Result) bool {
		switch key.String() {
		case "level", "message", "time":
		default:
			if entry.Fields == nil {
				entry.Fields = make(map[string]any)
			}
			entry.Fields[key.String()] = value.Value()
		}
		return true
	})
	return entry, true
}

func (b *Buffer) flushPending() {
	b.mu.Lock()
	b.timer = nil
	b.mu.Unlock()
	_ = b.Flush(context.Background())
}

// Flush persists the entries written since the last flush. It is a no-op
// when nothing changed. A failed Set leaves the buffer dirty.
func (b *Buffer) Flush(ctx context.Context) error {
	if b.store == nil {
		return nil
	}
	b.persistMu.Lock()
	defer b.persistMu.Unlock()

	b.mu.Lock()
	if !b.dirty {
		b.mu.Unlock()
		return nil
	}
	raw, err := json.Marshal(b.entries)
	b.dirty = false
	b.mu.Unlock()
	if err != nil {
		return err
	}

	if err := b.store.Set(ctx, storage.LogsKey, string(raw)); err != nil {
		b.mu.Lock()
		b.dirty = true
		b.mu.Unlock()
		return err
	}
	return nil
}

// Close cancels the pending flush and persists what is left.
func (b *Buffer) Close(ctx context.Context) error {
	b.mu.Lock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	b.mu.Unlock()
	return b.Flush(ctx)
}

// Entries returns a copy, oldest first.
func (b *Buffer) Entries() []Entry {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Entry(nil), b.entries...)
}

// Export writes every entry as an indented JSON array.
func (b *Buffer) Export(w io.Writer) error {
	entries := b.Entries()
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Clear empties the buffer and removes the persisted copy.
func (b *Buffer) Clear(ctx context.Context) error {
	b.persistMu.Lock()
	defer b.persistMu.Unlock()
	b.mu.Lock()
	b.entries = nil
	b.dirty = false
	b.mu.Unlock()
	if b.store == nil {
		return nil
	}
	return b.store.Delete(ctx, storage.LogsKey)
}

func trim(entries []Entry, capacity int) []Entry {
	if len(entries) <= capacity {
		return entries
	}
	out := make([]Entry, capacity)
	copy(out, entries[len(entries)-capacity:])
	return out
}
