package lifecycle

import "sync"

// Sequencer hands out monotonic tokens per operation key. A token stays current
// until a newer dispatch on the same key, or an Invalidate, supersedes it.
type Sequencer struct {
	mu   sync.Mutex
	seqs map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{seqs: make(map[string]uint64)}
}

// Next starts a new dispatch on key and returns its token.
func (s *Sequencer) Next(key string) uint64 {
	if key == "" {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[key]++
	return s.seqs[key]
}

// Current reports whether token is still the latest for key.
func (s *Sequencer) Current(key string, token uint64) bool {
	if key == "" {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seqs[key] == token
}

// Invalidate supersedes every in-flight dispatch on key.
func (s *Sequencer) Invalidate(key string) {
	if key == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seqs[key]++
}
