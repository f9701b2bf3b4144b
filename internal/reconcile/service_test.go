package reconcile

import (
	"context"
	"errors"
	"testing"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

type gate struct {
	blocked   bool
	signedOut bool
}

func (g *gate) LoggedIn() bool       { return !g.signedOut }
func (g *gate) ReauthRequired() bool { return g.blocked }
func (g *gate) MarkReauthRequired()  { g.blocked = true }

func TestRunCycleRunsAllJobsEvenOnFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	success := &testJob{name: "users"}
	failure := &testJob{name: "gallery", err: errors.New("boom")}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(success, failure),
		Metrics:  metrics.NewJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if !service.RunCycle(context.Background()) {
		t.Fatalf("expected cycle to run")
	}
	if success.runs != 1 || failure.runs != 1 {
		t.Fatalf("expected each job to run once, got %d and %d", success.runs, failure.runs)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	counts := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if metric.GetCounter() == nil {
				continue
			}
			for _, label := range metric.GetLabel() {
				if label.GetName() == "job" {
					counts[family.GetName()+"/"+label.GetValue()] = metric.GetCounter().GetValue()
				}
			}
		}
	}
	if counts["reconcile_job_success/users"] != 1 {
		t.Fatalf("expected one success for users, got %v", counts)
	}
	if counts["reconcile_job_failure/gallery"] != 1 {
		t.Fatalf("expected one failure for gallery, got %v", counts)
	}
}

func TestRunCycleSkippedWhileReauthRequired(t *testing.T) {
	job := &testJob{name: "users"}
	g := &gate{blocked: true}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Gate:     g,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if service.RunCycle(context.Background()) {
		t.Fatalf("cycle should be skipped")
	}
	if job.runs != 0 {
		t.Fatalf("job must not run while re-auth is pending")
	}
	g.blocked = false
	if !service.RunCycle(context.Background()) || job.runs != 1 {
		t.Fatalf("cycle should run once the gate opens")
	}
}

func TestNewServiceRequiresLogger(t *testing.T) {
	if _, err := NewService(ServiceParams{}); err == nil {
		t.Fatalf("expected error without logger")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	service, err := NewService(ServiceParams{Logger: logger.Nop()})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := service.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestAuthFailureMarksReauthAndHaltsCycle(t *testing.T) {
	expired := pkgerrors.New(pkgerrors.CodeTokenExpired, "expired")
	users := &testJob{name: "users", err: multierr.Combine(errors.New("refresh"), expired)}
	gallery := &testJob{name: "gallery"}
	g := &gate{}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(users, gallery),
		Gate:     g,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}

	if !service.RunCycle(context.Background()) {
		t.Fatalf("expected the first cycle to run")
	}
	if !g.blocked {
		t.Fatalf("auth failure should require re-authentication")
	}
	if gallery.runs != 0 {
		t.Fatalf("jobs after an auth failure must not run")
	}
	if service.RunCycle(context.Background()) || users.runs != 1 {
		t.Fatalf("no further automatic retries until sign-in, runs=%d", users.runs)
	}
}

func TestRunCycleSkippedWhileSignedOut(t *testing.T) {
	job := &testJob{name: "users"}
	service, err := NewService(ServiceParams{
		Logger:   logger.Nop(),
		Registry: NewRegistry(job),
		Gate:     &gate{signedOut: true},
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	if service.RunCycle(context.Background()) || job.runs != 0 {
		t.Fatalf("signed-out cycle should not run jobs")
	}
}
