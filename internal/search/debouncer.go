// Package search runs search-as-you-type queries: debounced, gated by a
// minimum length, with the previous request canceled on every new input.
package search

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

const (
	DefaultDelay    = 300 * time.Millisecond
	DefaultMinChars = 2
)

// Func performs one search. It must honor ctx cancellation.
type Func[R any] func(ctx context.Context, query string) ([]R, error)

// Result is delivered for the latest query only. Err is never an abort.
type Result[R any] struct {
	Query string
	Items []R
	Err   error
}

type Options struct {
	Delay    time.Duration
	MinChars int
	Logger   *logger.Logger
}

type Debouncer[R any] struct {
	search   Func[R]
	onResult func(Result[R])
	delay    time.Duration
	minChars int
	logg     *logger.Logger

	mu      sync.Mutex
	gen     uint64
	timer   *time.Timer
	cancel  context.CancelFunc
	closed  bool
	deliver sync.Mutex
}

func New[R any](search Func[R], onResult func(Result[R]), opts Options) *Debouncer[R] {
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultMinChars
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	return &Debouncer[R]{
		search:   search,
		onResult: onResult,
		delay:    opts.Delay,
		minChars: opts.MinChars,
		logg:     opts.Logger,
	}
}

// Input records a new value of the search box. Any pending or in-flight
// query is superseded. Text shorter than the minimum clears the results
// without a request.
func (d *Debouncer[R]) Input(text string) {
	query := strings.TrimSpace(text)

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.gen++
	gen := d.gen
	d.stopLocked()
	short := utf8.RuneCountInString(query) < d.minChars
	if !short {
		d.timer = time.AfterFunc(d.delay, func() { d.fire(gen, query) })
	}
	d.mu.Unlock()

	if short {
		d.emit(gen, Result[R]{Query: query})
	}
}

// Close cancels pending and in-flight work. Later input is ignored.
func (d *Debouncer[R]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	d.gen++
	d.stopLocked()
}

func (d *Debouncer[R]) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

func (d *Debouncer[R]) fire(gen uint64, query string) {
	d.mu.Lock()
	if d.closed || gen != d.gen {
		d.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	d.cancel = cancel
	d.timer = nil
	d.mu.Unlock()
	defer cancel()

	logCtx := d.logg.WithField(ctx, "query", query)
	items, err := d.search(ctx, query)
	if err != nil && pkgerrors.IsAborted(err) {
		d.logg.Debug(logCtx, "search aborted")
		return
	}
	if !d.emit(gen, Result[R]{Query: query, Items: items, Err: err}) {
		d.logg.Debug(logCtx, "superseded search result discarded")
	}
}

// emit delivers r when gen is still the latest input.
func (d *Debouncer[R]) emit(gen uint64, r Result[R]) bool {
	d.deliver.Lock()
	defer d.deliver.Unlock()

	d.mu.Lock()
	current := gen == d.gen && !d.closed
	d.mu.Unlock()
	if !current {
		return false
	}
	if d.onResult != nil {
		d.onResult(r)
	}
	return true
}
