// Package reconcile periodically refreshes list stores so optimistic local
// patches converge with server state.
package reconcile

import (
	"context"
	"fmt"
	"sync"
	"time"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/metrics"
	"go.uber.org/multierr"
)

const defaultInterval = 2 * time.Minute

// Gate blocks a cycle while automatic requests would only fail. An auth failure
// inside a job closes it until the user signs in again.
type Gate interface {
	LoggedIn() bool
	ReauthRequired() bool
	MarkReauthRequired()
}

// ServiceParams configure the reconcile service.
type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Gate     Gate
	Metrics  *metrics.JobMetrics
	Interval time.Duration
}

// Service executes registered jobs on a fixed cadence.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	gate     Gate
	metrics  *metrics.JobMetrics
	interval time.Duration

	// one cycle at a time; a manual trigger waits for the ticker's cycle
	cycle sync.Mutex
}

// NewService builds a reconcile service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		gate:     params.Gate,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Interval returns the configured cadence.
func (s *Service) Interval() time.Duration { return s.interval }

// Run ticks until the context is canceled. The first cycle runs one interval
// after start; the caller has just loaded the stores.
func (s *Service) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "reconcile service context canceled")
			return ctx.Err()
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle runs every job once. It reports whether the cycle ran.
func (s *Service) RunCycle(ctx context.Context) bool {
	s.cycle.Lock()
	defer s.cycle.Unlock()

	if s.gate != nil {
		if s.gate.ReauthRequired() {
			s.logg.Info(ctx, "re-authentication pending; skipping reconcile cycle")
			return false
		}
		if !s.gate.LoggedIn() {
			s.logg.Debug(ctx, "signed out; skipping reconcile cycle")
			return false
		}
	}
	s.logg.Debug(ctx, "reconcile cycle starting")
	for _, job := range s.registry.Jobs() {
		if ctx.Err() != nil {
			return false
		}
		if err := s.runJob(ctx, job); authFailure(err) {
			if s.gate != nil {
				s.gate.MarkReauthRequired()
			}
			s.logg.Warn(s.logg.WithField(ctx, "job", job.Name()), "auth failure; reconcile halted until sign-in")
			return true
		}
	}
	s.logg.Debug(ctx, "reconcile cycle complete")
	return true
}

func (s *Service) runJob(ctx context.Context, job Job) error {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "reconcile.job")
	start := time.Now()
	err := job.Run(jobCtx)
	duration := time.Since(start)
	s.metrics.ObserveDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.metrics.IncFailure(job.Name())
		return err
	}
	s.logg.Debug(jobCtx, "job completed")
	s.metrics.IncSuccess(job.Name())
	return nil
}

// authFailure reports whether any error combined in err carries an auth code.
func authFailure(err error) bool {
	for _, e := range multierr.Errors(err) {
		if typed := pkgerrors.As(e); typed != nil && pkgerrors.IsAuthCode(typed.Code()) {
			return true
		}
	}
	return false
}
