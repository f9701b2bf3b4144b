// Package notify is the injectable feedback service: one toast slot and one
// alert slot that any store or flow can drive.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

const (
	DefaultToastDuration   = 3 * time.Second
	DefaultTransitionDelay = 150 * time.Millisecond
)

type Toast struct {
	ID       string
	Message  string
	Kind     Kind
	Duration time.Duration
}

type Alert struct {
	Title       string
	Message     string
	Kind        Kind
	ActionLabel string
	OnAction    func()
}

// Event is the state listeners receive after every change.
type Event struct {
	Toast *Toast
	Alert *Alert
}

type Listener func(Event)

type timer interface {
	Stop() bool
}

// Notifier is what stores and flows depend on.
type Notifier interface {
	Toast(message string, kind Kind, duration time.Duration)
	Alert(alert Alert)
}

// Service implements Notifier with single-slot semantics.
type Service struct {
	transition time.Duration
	duration   time.Duration
	afterFunc  func(time.Duration, func()) timer

	mu        sync.Mutex
	toast     *Toast
	alert     *Alert
	gen       uint64
	showTimer timer
	hideTimer timer
	listeners map[int]Listener
	nextID    int
}

type Option func(*Service)

func WithTransitionDelay(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.transition = d
		}
	}
}

func WithDefaultDuration(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.duration = d
		}
	}
}

func withAfterFunc(fn func(time.Duration, func()) timer) Option {
	return func(s *Service) {
		s.afterFunc = fn
	}
}

func NewService(opts ...Option) *Service {
	s := &Service{
		transition: DefaultTransitionDelay,
		duration:   DefaultToastDuration,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Toast shows message. A visible toast is hidden first and the new one appears
// after the transition delay. A zero duration uses the default.
func (s *Service) Toast(message string, kind Kind, duration time.Duration) {
	if duration <= 0 {
		duration = s.duration
	}
	next := &Toast{ID: uuid.NewString(), Message: message, Kind: kind, Duration: duration}

	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.stopTimersLocked()
	if s.toast == nil || s.transition == 0 {
		s.showLocked(gen, next)
		return
	}
	s.toast = nil
	s.showTimer = s.afterFunc(s.transition, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.showLocked(gen, next)
	})
	s.emitLocked()
}

// showLocked expects s.mu held and releases it.
func (s *Service) showLocked(gen uint64, toast *Toast) {
	s.toast = toast
	s.hideTimer = s.afterFunc(toast.Duration, func() {
		s.mu.Lock()
		if s.gen != gen {
			s.mu.Unlock()
			return
		}
		s.toast = nil
		s.emitLocked()
	})
	s.emitLocked()
}

func (s *Service) DismissToast() {
	s.mu.Lock()
	s.gen++
	s.stopTimersLocked()
	s.toast = nil
	s.emitLocked()
}

// Alert replaces the current alert.
func (s *Service) Alert(alert Alert) {
	s.mu.Lock()
	a := alert
	s.alert = &a
	s.emitLocked()
}

func (s *Service) DismissAlert() {
	s.mu.Lock()
	s.alert = nil
	s.emitLocked()
}

// Act runs the alert's action, if any, and dismisses it.
func (s *Service) Act() {
	s.mu.Lock()
	current := s.alert
	s.alert = nil
	s.emitLocked()

	if current != nil && current.OnAction != nil {
		current.OnAction()
	}
}

// Current returns copies of the visible toast and alert.
func (s *Service) Current() (*Toast, *Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyToast(s.toast), copyAlert(s.alert)
}

func (s *Service) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Service) stopTimersLocked() {
	if s.showTimer != nil {
		s.showTimer.Stop()
		s.showTimer = nil
	}
	if s.hideTimer != nil {
		s.hideTimer.Stop()
		s.hideTimer = nil
	}
}

// emitLocked expects s.mu held and releases it before calling listeners.
func (s *Service) emitLocked() {
	event := Event{Toast: copyToast(s.toast), Alert: copyAlert(s.alert)}
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(event)
	}
}

func copyToast(t *Toast) *Toast {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyAlert(a *Alert) *Alert {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}
