package gallery

import (
	"context"
	"net/http"
	"sync"

	"github.com/angelmondragon/finblog-client/internal/notify"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const defaultProbeConcurrency = 4

// BulkResult reports how a bulk delete settled.
type BulkResult struct {
	Succeeded []string
	Failed    []string
	Aborted   []string
	// Err combines every non-abort failure.
	Err error
}

// BulkDelete deletes ids concurrently and reports one aggregate toast once all
// settle. Succeeded ids leave the selection and broken map; failed ids stay
// selected for a retry.
func (s *Store) BulkDelete(ctx context.Context, ids []string) BulkResult {
	var (
		mu     sync.Mutex
		result BulkResult
	)
	if len(ids) == 0 {
		return result
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.probes)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			err := s.Delete(gctx, id)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				result.Succeeded = append(result.Succeeded, id)
			case pkgerrors.IsAborted(err):
				result.Aborted = append(result.Aborted, id)
			default:
				result.Failed = append(result.Failed, id)
				result.Err = multierr.Append(result.Err, err)
			}
			// one failure must not cancel the remaining deletes
			return nil
		})
	}
	_ = g.Wait()

	s.reportBulk(ctx, result)
	return result
}

func (s *Store) reportBulk(ctx context.Context, result BulkResult) {
	ok, failed := len(result.Succeeded), len(result.Failed)
	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"store":     "gallery",
		"succeeded": ok,
		"failed":    failed,
		"aborted":   len(result.Aborted),
	}), "bulk delete settled")

	if s.notifier == nil {
		return
	}
	switch {
	case ok > 0 && failed == 0:
		s.notifier.Toast(s.tr.T(i18n.KeyGalleryBulkDone, ok), notify.KindSuccess, 0)
	case ok > 0 && failed > 0:
		s.notifier.Toast(s.tr.T(i18n.KeyGalleryBulkPartial, ok, failed), notify.KindWarning, 0)
	case failed > 0:
		s.notifier.Toast(s.tr.T(i18n.KeyGalleryBulkFailed, failed), notify.KindError, 0)
	}
}

// Probe HEADs every loaded image URL and marks the ones that answer 404 as
// broken. It returns the ids marked by this call.
func (s *Store) Probe(ctx context.Context) ([]string, error) {
	images := s.Snapshot().Data.Items
	var (
		mu     sync.Mutex
		broken []string
		errs   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.probes)
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		img := img
		g.Go(func() error {
			status, err := s.api.Ping(gctx, img.URL)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil && pkgerrors.IsAborted(err):
			case err != nil:
				errs = multierr.Append(errs, err)
			case status == http.StatusNotFound || status == http.StatusGone:
				broken = append(broken, img.ID)
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, id := range broken {
		s.MarkBroken(id)
	}
	return broken, errs
}
