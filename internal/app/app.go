// Package app wires one instance of every store, the feedback service and
// the background services into a single container.
package app

import (
	"context"
	"fmt"

	"github.com/angelmondragon/finblog-client/internal/categories"
	"github.com/angelmondragon/finblog-client/internal/chat"
	"github.com/angelmondragon/finblog-client/internal/gallery"
	"github.com/angelmondragon/finblog-client/internal/notify"
	"github.com/angelmondragon/finblog-client/internal/posts"
	"github.com/angelmondragon/finblog-client/internal/presenter"
	"github.com/angelmondragon/finblog-client/internal/reconcile"
	"github.com/angelmondragon/finblog-client/internal/search"
	"github.com/angelmondragon/finblog-client/internal/session"
	"github.com/angelmondragon/finblog-client/internal/team"
	"github.com/angelmondragon/finblog-client/internal/uploads"
	"github.com/angelmondragon/finblog-client/internal/users"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/config"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/metrics"
	"github.com/angelmondragon/finblog-client/pkg/storage"
	"github.com/prometheus/client_golang/prometheus"
)

// Params configure New. Config, Logger and Storage are required.
type Params struct {
	Config  *config.Config
	Logger  *logger.Logger
	Storage storage.Store
	// API overrides the client built from Config.API.
	API        apiclient.API
	Navigator  presenter.Navigator
	Registerer prometheus.Registerer
	// OnSearch receives the latest post search result.
	OnSearch func(search.Result[posts.Post])
}

// App is the composed container. Stores never read each other's state.
type App struct {
	API        apiclient.API
	Translator *i18n.Translator
	Feedback   *notify.Service
	Presenter  *presenter.Presenter

	Session    *session.Store
	Users      *users.Store
	Team       *team.Store
	Posts      *posts.Store
	Categories *categories.Store
	Uploads    *uploads.Store
	Gallery    *gallery.Store
	Chat       *chat.Store

	Search    *search.Debouncer[posts.Post]
	Reconcile *reconcile.Service

	logg *logger.Logger
}

func New(p Params) (*App, error) {
	if p.Config == nil {
		return nil, fmt.Errorf("config required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	cfg := p.Config
	tr := i18n.New(cfg.App.Locale)

	api := p.API
	if api == nil {
		client, err := apiclient.NewClient(cfg.API.BaseURL,
			apiclient.WithLogger(p.Logger),
			apiclient.WithLogging(cfg.App.LoggingEnabled, cfg.App.IsProd()),
			apiclient.WithMetrics(metrics.NewClientMetrics(p.Registerer)),
			apiclient.WithTranslator(tr),
			apiclient.WithTimeout(cfg.API.Timeout),
		)
		if err != nil {
			return nil, fmt.Errorf("api client: %w", err)
		}
		api = client
	}

	v := validation.New(tr)
	feedback := notify.NewService()
	a := &App{
		API:        api,
		Translator: tr,
		Feedback:   feedback,
		Session:    session.New(api, v, p.Storage, tr, p.Logger),
		Users:      users.New(api, v, tr, p.Logger),
		Team:       team.New(api, v, tr, p.Logger),
		Posts:      posts.New(api, v, tr, p.Logger),
		Categories: categories.New(api, v, tr, p.Logger),
		Uploads:    uploads.New(api, tr, p.Logger),
		Gallery:    gallery.New(api, feedback, tr, p.Logger),
		Chat:       chat.New(api, v, cfg.Chat.RatePerMinute, tr, p.Logger),
		logg:       p.Logger,
	}

	nav := p.Navigator
	if nav == nil {
		nav = presenter.NavigatorFunc(func() {
			p.Logger.Info(context.Background(), "login required; redirecting to sign-in")
		})
	}
	a.Presenter = presenter.New(presenter.Params{
		Notifier:      feedback,
		Navigator:     nav,
		Reauth:        a.Session,
		Translator:    tr,
		Logger:        p.Logger,
		RedirectDelay: cfg.API.AuthRedirectDelay,
	})

	a.Search = search.New(a.Posts.Search, p.OnSearch, search.Options{
		Delay:    cfg.Search.Debounce,
		MinChars: cfg.Search.MinChars,
		Logger:   p.Logger,
	})

	registry := reconcile.NewRegistry(
		reconcile.NewSessionJob(a.Session),
		reconcile.NewRefreshJob("users", a.Users),
		reconcile.NewGalleryJob(a.Gallery),
	)
	service, err := reconcile.NewService(reconcile.ServiceParams{
		Logger:   p.Logger,
		Registry: registry,
		Gate:     a.Session,
		Metrics:  metrics.NewJobMetrics(p.Registerer),
		Interval: cfg.Reconcile.Interval,
	})
	if err != nil {
		return nil, fmt.Errorf("reconcile service: %w", err)
	}
	a.Reconcile = service
	return a, nil
}

// Boot restores a persisted session.
func (a *App) Boot(ctx context.Context) (bool, error) {
	ok, err := a.Session.Boot(ctx)
	if err != nil {
		a.Report(ctx, err)
	}
	return ok, err
}

// Report routes a failed operation through the presenter.
func (a *App) Report(ctx context.Context, err error) presenter.Decision {
	return a.Presenter.Present(ctx, err)
}

// Run blocks on the reconcile loop until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	return a.Reconcile.Run(ctx)
}

// Close stops background work.
func (a *App) Close() {
	a.Search.Close()
}
