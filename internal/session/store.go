// Package session holds the signed-in user, the auth flows and the
// password-reset flow.
package session

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/storage"
	"github.com/tidwall/gjson"
)

const (
	basePath = "/auth"
	meKey    = "me"
)

type cookieSource interface {
	Cookies() []*http.Cookie
}

type Store struct {
	*lifecycle.Store[State]
	api      apiclient.API
	validate *validation.Validator
	storage  storage.Store
	logg     *logger.Logger
	now      func() time.Time
	reauth   atomic.Bool
}

func New(api apiclient.API, v *validation.Validator, kv storage.Store, tr *i18n.Translator, logg *logger.Logger) *Store {
	if v == nil {
		v = validation.New(tr)
	}
	if kv == nil {
		kv = storage.NewMemory()
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		Store:    lifecycle.NewStore("session", initialState(), tr, logg),
		api:      api,
		validate: v,
		storage:  kv,
		logg:     logg,
		now:      time.Now,
	}
}

// MarkReauthRequired blocks automatic retries until the next successful login.
func (s *Store) MarkReauthRequired() {
	if !s.reauth.Swap(true) {
		s.logg.Warn(s.logg.WithStore(context.Background(), "session"), "re-authentication required")
	}
}

func (s *Store) ReauthRequired() bool {
	return s.reauth.Load()
}

// LoggedIn reports the current isLoggedIn flag.
func (s *Store) LoggedIn() bool {
	return s.Snapshot().Data.IsLoggedIn
}

type authPayload struct {
	User *User `json:"user"`
}

// decodeUser accepts both {data:{user}} and {data:user}.
func decodeUser(resp *apiclient.Response) (User, error) {
	if payload, err := apiclient.DecodeData[authPayload](resp); err == nil && payload.User != nil {
		return *payload.User, nil
	}
	return apiclient.DecodeData[User](resp)
}

// Login signs in and persists the session marker.
func (s *Store) Login(ctx context.Context, in Credentials) (User, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, User]{
		Name:        "login",
		Invalidates: []string{meKey},
		Fallback:    i18n.KeyLoginFailed,
		Call: func(ctx context.Context) (User, error) {
			if err := s.validate.Struct(in); err != nil {
				return User{}, err
			}
			resp, err := s.api.Post(ctx, basePath+"/login", in)
			if err != nil {
				return User{}, err
			}
			user, err := decodeUser(resp)
			if err != nil {
				return User{}, err
			}
			s.persistMarker(ctx, user)
			return user, nil
		},
		Fulfilled: func(st *State, user User) {
			st.User = &user
			st.IsLoggedIn = true
			st.VerificationPending = false
			s.reauth.Store(false)
		},
		Rejected: func(st *State, err *pkgerrors.Error) {
			if err.Code() == pkgerrors.CodeAccountNotVerified {
				st.VerificationPending = true
			}
		},
	})
}

// Register creates an account. The server requires email verification
// before the first login.
func (s *Store) Register(ctx context.Context, in Registration) (User, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, User]{
		Name:     "register",
		Fallback: i18n.KeyRegisterFailed,
		Call: func(ctx context.Context) (User, error) {
			if err := s.validate.Struct(in); err != nil {
				return User{}, err
			}
			resp, err := s.api.Post(ctx, basePath+"/register", in)
			if err != nil {
				return User{}, err
			}
			return decodeUser(resp)
		},
		Fulfilled: func(st *State, user User) {
			if user.ID != "" {
				st.User = &user
			}
			st.IsLoggedIn = false
			st.VerificationPending = !user.IsVerified
		},
	})
}

// Logout resets the payload immediately and drops the marker even when the
// server call fails.
func (s *Store) Logout(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, struct{}]{
		Name:        "logout",
		Invalidates: []string{meKey},
		Fallback:    i18n.KeyLogoutFailed,
		Pending: func(st *State) {
			*st = initialState()
		},
		Call: func(ctx context.Context) (struct{}, error) {
			s.dropMarker(ctx)
			_, err := s.api.Post(ctx, basePath+"/logout", nil)
			return struct{}{}, err
		},
	})
	s.reauth.Store(false)
	return err
}

// CheckAuth asks the server who the cookie belongs to.
func (s *Store) CheckAuth(ctx context.Context) (User, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, User]{
		Name:     "check_auth",
		Key:      meKey,
		Fallback: i18n.KeySessionCheckFailed,
		Call: func(ctx context.Context) (User, error) {
			resp, err := s.api.Get(ctx, basePath+"/me", nil)
			if err != nil {
				if typed := pkgerrors.As(err); typed != nil && pkgerrors.IsAuthCode(typed.Code()) {
					s.dropMarker(ctx)
				}
				return User{}, err
			}
			return decodeUser(resp)
		},
		Fulfilled: func(st *State, user User) {
			st.User = &user
			st.IsLoggedIn = true
		},
		Rejected: func(st *State, err *pkgerrors.Error) {
			if pkgerrors.IsAuthCode(err.Code()) {
				st.User = nil
				st.IsLoggedIn = false
			}
		},
	})
}

// Revalidate re-runs CheckAuth for a signed-in session. Signed out it does
// nothing.
func (s *Store) Revalidate(ctx context.Context) error {
	if !s.LoggedIn() {
		return nil
	}
	_, err := s.CheckAuth(ctx)
	return err
}

// Boot restores a session from the persisted marker. Without a marker, or
// with an expired one, no request is made.
func (s *Store) Boot(ctx context.Context) (bool, error) {
	marker, err := loadMarker(ctx, s.storage)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session marker unreadable")
		s.dropMarker(ctx)
		return false, nil
	}
	if marker == nil {
		return false, nil
	}
	if marker.Expired(s.now()) {
		s.logg.Info(s.logg.WithUserID(ctx, marker.UserID), "session marker expired")
		s.dropMarker(ctx)
		return false, nil
	}
	if _, err := s.CheckAuth(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) VerifyEmail(ctx context.Context, token string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, struct{}]{
		Name:     "verify_email",
		Fallback: i18n.KeyVerifyFailed,
		Call: func(ctx context.Context) (struct{}, error) {
			if err := s.validate.Var("token", token, "required"); err != nil {
				return struct{}{}, err
			}
			_, err := s.api.Post(ctx, basePath+"/verify-email", map[string]string{"token": token})
			return struct{}{}, err
		},
		Fulfilled: func(st *State, _ struct{}) {
			st.VerificationPending = false
			if st.User != nil {
				verified := *st.User
				verified.IsVerified = true
				st.User = &verified
			}
		},
	})
	return err
}

func (s *Store) ResendVerification(ctx context.Context, email string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, struct{}]{
		Name:     "resend_verification",
		Fallback: i18n.KeyResendFailed,
		Call: func(ctx context.Context) (struct{}, error) {
			if err := s.validate.Var("email", email, "required,email"); err != nil {
				return struct{}{}, err
			}
			_, err := s.api.Post(ctx, basePath+"/resend-verification", map[string]string{"email": email})
			return struct{}{}, err
		},
	})
	return err
}

// UpdateProfile merges the saved profile into the signed-in user. Fields the
// server does not echo keep their values; with no echo the input is applied.
func (s *Store) UpdateProfile(ctx context.Context, in Profile) (User, error) {
	var saved User
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, json.RawMessage]{
		Name:     "update_profile",
		Fallback: i18n.KeyProfileFailed,
		Call: func(ctx context.Context) (json.RawMessage, error) {
			if err := s.validate.Struct(in); err != nil {
				return nil, err
			}
			resp, err := s.api.Put(ctx, basePath+"/profile", in)
			if err != nil {
				return nil, err
			}
			if nested := gjson.GetBytes(resp.Envelope.Data, "user"); nested.IsObject() {
				return json.RawMessage(nested.Raw), nil
			}
			return apiclient.PatchData[User](resp, in)
		},
		Fulfilled: func(st *State, patch json.RawMessage) {
			var base User
			if st.User != nil {
				base = *st.User
			}
			merged, err := lifecycle.Merge(base, patch)
			if err != nil {
				merged = base
			}
			saved = merged
			st.User = &merged
		},
	})
	if err != nil {
		return User{}, err
	}
	return saved, nil
}

func (s *Store) ChangePassword(ctx context.Context, in PasswordChange) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, struct{}]{
		Name:     "change_password",
		Fallback: i18n.KeyProfileFailed,
		Call: func(ctx context.Context) (struct{}, error) {
			if err := s.validate.Struct(in); err != nil {
				return struct{}{}, err
			}
			_, err := s.api.Put(ctx, basePath+"/change-password", in)
			return struct{}{}, err
		},
	})
	return err
}

func (s *Store) persistMarker(ctx context.Context, user User) {
	marker := Marker{UserID: user.ID, Email: user.Email, LoggedIn: s.now().UTC()}
	if jar, ok := s.api.(cookieSource); ok {
		marker.ExpiresAt = tokenExpiry(jar.Cookies())
	}
	if err := saveMarker(ctx, s.storage, marker); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session marker not persisted")
	}
}

func (s *Store) dropMarker(ctx context.Context) {
	if err := s.storage.Delete(ctx, storage.SessionKey); err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "session marker not removed")
	}
}
