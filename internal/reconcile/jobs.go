package reconcile

import (
	"context"

	"go.uber.org/multierr"
)

// Refresher re-runs a store's last fetch.
type Refresher interface {
	Refresh(ctx context.Context) error
}

type refreshJob struct {
	name  string
	store Refresher
}

// NewRefreshJob wraps a list store whose items can be patched optimistically.
func NewRefreshJob(name string, store Refresher) Job {
	if store == nil {
		return nil
	}
	return &refreshJob{name: name, store: store}
}

func (j *refreshJob) Name() string { return j.name }

func (j *refreshJob) Run(ctx context.Context) error {
	return j.store.Refresh(ctx)
}

// Prober marks loaded images whose URL no longer resolves.
type Prober interface {
	Probe(ctx context.Context) ([]string, error)
}

type galleryJob struct {
	store interface {
		Refresher
		Prober
	}
}

// NewGalleryJob refreshes the gallery and then probes the images it loaded.
func NewGalleryJob(store interface {
	Refresher
	Prober
}) Job {
	if store == nil {
		return nil
	}
	return &galleryJob{store: store}
}

func (j *galleryJob) Name() string { return "gallery" }

func (j *galleryJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.store.Refresh(ctx); err != nil {
		errs = append(errs, err)
	}
	if _, err := j.store.Probe(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

// SessionChecker re-validates the signed-in session.
type SessionChecker interface {
	Revalidate(ctx context.Context) error
}

type sessionJob struct {
	session SessionChecker
}

func NewSessionJob(session SessionChecker) Job {
	if session == nil {
		return nil
	}
	return &sessionJob{session: session}
}

func (j *sessionJob) Name() string { return "session" }

func (j *sessionJob) Run(ctx context.Context) error {
	return j.session.Revalidate(ctx)
}
