package lifecycle

import (
	"context"
	"sync"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

// Store owns one Snapshot and serializes every reduction applied to it.
type Store[T any] struct {
	name string
	tr   *i18n.Translator
	logg *logger.Logger
	seq  *Sequencer

	mu       sync.Mutex
	snap     Snapshot[T]
	inFlight int
	subs     map[int]func(Snapshot[T])
	nextSub  int
}

// NewStore creates a store named name holding initial.
func NewStore[T any](name string, initial T, tr *i18n.Translator, logg *logger.Logger) *Store[T] {
	if tr == nil {
		tr = i18n.New(i18n.DefaultLocale)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store[T]{
		name: name,
		tr:   tr,
		logg: logg,
		seq:  NewSequencer(),
		snap: Snapshot[T]{Data: initial},
		subs: make(map[int]func(Snapshot[T])),
	}
}

func (s *Store[T]) Name() string { return s.name }

// Translator returns the translator used for fallback messages.
func (s *Store[T]) Translator() *i18n.Translator { return s.tr }

// Snapshot returns the current state.
func (s *Store[T]) Snapshot() Snapshot[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn to receive every snapshot after a reduction.
func (s *Store[T]) Subscribe(fn func(Snapshot[T])) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

// Clear resets the status flags and leaves the payload untouched.
func (s *Store[T]) Clear() {
	s.mutate(func(snap *Snapshot[T]) {
		snap.Status = Status{}
	})
}

// Update applies a synchronous reducer to the payload.
func (s *Store[T]) Update(fn func(*T)) {
	s.mutate(func(snap *Snapshot[T]) {
		fn(&snap.Data)
	})
}

// Invalidate supersedes in-flight dispatches on key.
func (s *Store[T]) Invalidate(key string) {
	s.seq.Invalidate(key)
}

func (s *Store[T]) mutate(fn func(*Snapshot[T])) {
	s.mu.Lock()
	fn(&s.snap)
	s.publishLocked()
}

func (s *Store[T]) subscribers() []func(Snapshot[T]) {
	subs := make([]func(Snapshot[T]), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

// Op describes one asynchronous store operation.
type Op[T, R any] struct {
	// Name labels log lines.
	Name string
	// Key guards the result: a newer dispatch on the same key makes this one stale.
	Key string
	// Invalidates lists keys whose in-flight dispatches become stale once this op succeeds.
	Invalidates []string
	// Fallback is the i18n key used when the failure carries no message.
	Fallback string

	Call      func(ctx context.Context) (R, error)
	Pending   func(data *T)
	Fulfilled func(data *T, result R)
	Rejected  func(data *T, err *pkgerrors.Error)
	// Rollback undoes Pending. It runs on every failure, aborts included.
	Rollback func(data *T)
}

// Run dispatches op against s. The returned error is nil or an *errors.Error.
func Run[T, R any](ctx context.Context, s *Store[T], op Op[T, R]) (R, error) {
	s.mu.Lock()
	token := s.seq.Next(op.Key)
	s.inFlight++
	s.snap.Loading = true
	s.snap.Success = false
	s.snap.Error = false
	s.snap.ErrorMessage = ""
	s.snap.ErrorCode = ""
	if op.Pending != nil {
		op.Pending(&s.snap.Data)
	}
	s.publishLocked()

	result, err := op.Call(ctx)

	if err != nil {
		normalized := pkgerrors.Normalize(err, s.tr.T(fallbackKey(op.Fallback)))
		aborted := normalized.Code() == pkgerrors.CodeAborted

		s.mu.Lock()
		s.inFlight--
		current := s.seq.Current(op.Key, token)
		if op.Rollback != nil {
			op.Rollback(&s.snap.Data)
		}
		if current && !aborted {
			s.snap.Success = false
			s.snap.Error = true
			s.snap.ErrorMessage = normalized.Message()
			s.snap.ErrorCode = string(normalized.Code())
			if op.Rejected != nil {
				op.Rejected(&s.snap.Data, normalized)
			}
		}
		s.snap.Loading = s.inFlight > 0
		s.publishLocked()

		logCtx := s.logg.WithFields(ctx, map[string]any{"store": s.name, "op": op.Name})
		switch {
		case aborted:
			s.logg.Debug(logCtx, "operation aborted")
		case !current:
			s.logg.Debug(logCtx, "stale failure discarded")
		default:
			s.logg.Warn(s.logg.WithField(logCtx, "code", string(normalized.Code())), normalized.Message())
		}
		return result, normalized
	}

	s.mu.Lock()
	s.inFlight--
	if s.seq.Current(op.Key, token) {
		s.snap.Success = true
		s.snap.Error = false
		if op.Fulfilled != nil {
			op.Fulfilled(&s.snap.Data, result)
		}
		for _, key := range op.Invalidates {
			if key != op.Key {
				s.seq.Invalidate(key)
			}
		}
	} else {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{"store": s.name, "op": op.Name}), "stale result discarded")
	}
	s.snap.Loading = s.inFlight > 0
	s.publishLocked()
	return result, nil
}

// publishLocked releases s.mu and then notifies subscribers with the new snapshot.
func (s *Store[T]) publishLocked() {
	snap := s.snap
	subs := s.subscribers()
	s.mu.Unlock()

	for _, sub := range subs {
		sub(snap)
	}
}

func fallbackKey(key string) string {
	if key == "" {
		return i18n.KeyGenericError
	}
	return key
}
