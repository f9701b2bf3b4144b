// Package presenter decides how a failed operation reaches the user.
package presenter

import (
	"context"
	"sync"
	"time"

	"github.com/angelmondragon/finblog-client/internal/notify"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

// DefaultRedirectDelay is how long the auth alert stays up before redirecting.
const DefaultRedirectDelay = 2 * time.Second

// Navigator moves the user to the login entry point.
type Navigator interface {
	ToLogin()
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func()

func (f NavigatorFunc) ToLogin() { f() }

// ReauthMarker records that an auth-class failure blocks further automatic retries.
type ReauthMarker interface {
	MarkReauthRequired()
}

// Decision describes what Present did.
type Decision struct {
	Code         pkgerrors.Code
	Presentation pkgerrors.Presentation
	Recovery     pkgerrors.Recovery
	Message      string
	Fields       map[string]string
	Redirect     bool
}

type Params struct {
	Notifier      notify.Notifier
	Navigator     Navigator
	Reauth        ReauthMarker
	Translator    *i18n.Translator
	Logger        *logger.Logger
	RedirectDelay time.Duration
}

type Presenter struct {
	notifier  notify.Notifier
	nav       Navigator
	reauth    ReauthMarker
	tr        *i18n.Translator
	logg      *logger.Logger
	delay     time.Duration
	afterFunc func(time.Duration, func())
}

func New(p Params) *Presenter {
	pr := &Presenter{
		notifier: p.Notifier,
		nav:      p.Navigator,
		reauth:   p.Reauth,
		tr:       p.Translator,
		logg:     p.Logger,
		delay:    p.RedirectDelay,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	if pr.tr == nil {
		pr.tr = i18n.New(i18n.DefaultLocale)
	}
	if pr.logg == nil {
		pr.logg = logger.Nop()
	}
	if pr.delay <= 0 {
		pr.delay = DefaultRedirectDelay
	}
	return pr
}

// Present surfaces err according to its code metadata.
func (p *Presenter) Present(ctx context.Context, err error) Decision {
	return p.present(ctx, err, false)
}

// PresentDestructive is Present for failed destructive actions; toasts become alerts.
func (p *Presenter) PresentDestructive(ctx context.Context, err error) Decision {
	return p.present(ctx, err, true)
}

func (p *Presenter) present(ctx context.Context, err error, destructive bool) Decision {
	if err == nil {
		return Decision{Presentation: pkgerrors.PresentSilent}
	}
	normalized := pkgerrors.Normalize(err, p.tr.T(i18n.KeyGenericError))
	meta := pkgerrors.MetadataFor(normalized.Code())
	decision := Decision{
		Code:         normalized.Code(),
		Presentation: meta.Presentation,
		Recovery:     meta.Recovery,
		Message:      normalized.Message(),
	}
	if decision.Message == "" && meta.MessageKey != "" {
		decision.Message = p.tr.T(meta.MessageKey)
	}

	if destructive && decision.Presentation == pkgerrors.PresentToast {
		decision.Presentation = pkgerrors.PresentAlert
	}

	switch decision.Presentation {
	case pkgerrors.PresentSilent:
		p.logg.Debug(p.logg.WithField(ctx, "code", string(decision.Code)), "silent failure")
	case pkgerrors.PresentInline:
		if fields, ok := normalized.Details().(map[string]string); ok {
			decision.Fields = fields
		}
	case pkgerrors.PresentToast:
		if p.notifier != nil {
			p.notifier.Toast(decision.Message, notify.KindError, 0)
		}
	case pkgerrors.PresentAlert:
		if meta.RequiresReauth {
			decision.Message = p.tr.T(meta.MessageKey)
			decision.Redirect = true
			p.presentReauth(ctx, decision)
			break
		}
		if p.notifier != nil {
			p.notifier.Alert(notify.Alert{
				Title:       p.tr.T(i18n.KeyErrorTitle),
				Message:     decision.Message,
				Kind:        notify.KindError,
				ActionLabel: p.tr.T(i18n.KeyAlertDismiss),
			})
		}
	}
	return decision
}

func (p *Presenter) presentReauth(ctx context.Context, decision Decision) {
	if p.reauth != nil {
		p.reauth.MarkReauthRequired()
	}
	var once sync.Once
	redirect := func() {
		once.Do(func() {
			if p.nav != nil {
				p.nav.ToLogin()
			}
		})
	}
	if p.notifier != nil {
		p.notifier.Alert(notify.Alert{
			Title:       p.tr.T(i18n.KeyAuthAlertTitle),
			Message:     decision.Message,
			Kind:        notify.KindWarning,
			ActionLabel: p.tr.T(i18n.KeyAuthAlertAction),
			OnAction:    redirect,
		})
	}
	p.logg.Info(p.logg.WithField(ctx, "code", string(decision.Code)), "re-authentication required")
	p.afterFunc(p.delay, redirect)
}
