package notify

import (
	"sync"
	"time"
)

// Recorder is a Notifier that keeps every call, for tests and headless runs.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
	alerts []Alert
}

func (r *Recorder) Toast(message string, kind Kind, duration time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toasts = append(r.toasts, Toast{Message: message, Kind: kind, Duration: duration})
}

func (r *Recorder) Alert(alert Alert) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, alert)
}

func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Toast(nil), r.toasts...)
}

func (r *Recorder) Alerts() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Alert(nil), r.alerts...)
}
