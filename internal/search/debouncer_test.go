package search

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/stretchr/testify/require"
)

type collector struct {
	mu      sync.Mutex
	results []Result[string]
	ch      chan Result[string]
}

func newCollector() *collector {
	return &collector{ch: make(chan Result[string], 16)}
}

func (c *collector) add(r Result[string]) {
	c.mu.Lock()
	c.results = append(c.results, r)
	c.mu.Unlock()
	c.ch <- r
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

func (c *collector) next(t *testing.T) Result[string] {
	t.Helper()
	select {
	case r := <-c.ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("no search result delivered")
		return Result[string]{}
	}
}

func TestDebounceIssuesOneRequestForBurst(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	search := func(_ context.Context, q string) ([]string, error) {
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()
		return []string{q + "-result"}, nil
	}
	got := newCollector()
	d := New(search, got.add, Options{Delay: 30 * time.Millisecond, MinChars: 2})
	defer d.Close()

	d.Input("a")
	d.Input("ab")
	d.Input("abc")

	first := got.next(t)
	require.Equal(t, "a", first.Query, "short input clears results immediately")
	require.Empty(t, first.Items)

	res := got.next(t)
	require.Equal(t, "abc", res.Query)
	require.Equal(t, []string{"abc-result"}, res.Items)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"abc"}, queries)
}

func TestSupersededResultIsDiscarded(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	search := func(_ context.Context, q string) ([]string, error) {
		if q == "slow" {
			close(started)
			<-release
		}
		return []string{q}, nil
	}
	got := newCollector()
	d := New(search, got.add, Options{Delay: 5 * time.Millisecond})
	defer d.Close()

	d.Input("slow")
	<-started
	d.Input("fast")
	require.Equal(t, "fast", got.next(t).Query)

	close(release)
	require.Never(t, func() bool { return got.count() > 1 }, 100*time.Millisecond, 10*time.Millisecond)
}

func TestAbortedSearchIsSilent(t *testing.T) {
	started := make(chan struct{})
	var aborted atomic.Bool
	search := func(ctx context.Context, q string) ([]string, error) {
		close(started)
		<-ctx.Done()
		aborted.Store(true)
		return nil, pkgerrors.Wrap(pkgerrors.CodeAborted, ctx.Err(), "request canceled")
	}
	got := newCollector()
	d := New(search, got.add, Options{Delay: 5 * time.Millisecond})

	d.Input("abc")
	<-started
	d.Close()

	require.Eventually(t, aborted.Load, time.Second, 5*time.Millisecond)
	require.Never(t, func() bool { return got.count() > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}

func TestSearchFailureIsDelivered(t *testing.T) {
	search := func(context.Context, string) ([]string, error) {
		return nil, pkgerrors.New(pkgerrors.CodeServerError, "search down")
	}
	got := newCollector()
	d := New(search, got.add, Options{Delay: 5 * time.Millisecond})
	defer d.Close()

	d.Input("faiz")
	res := got.next(t)
	require.Equal(t, "faiz", res.Query)
	typed := pkgerrors.As(res.Err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeServerError, typed.Code())
}

func TestInputAfterCloseIsIgnored(t *testing.T) {
	var calls atomic.Int32
	search := func(context.Context, string) ([]string, error) {
		calls.Add(1)
		return nil, nil
	}
	d := New(search, nil, Options{Delay: 5 * time.Millisecond})
	d.Close()
	d.Input("abc")
	require.Never(t, func() bool { return calls.Load() > 0 }, 50*time.Millisecond, 10*time.Millisecond)
}
