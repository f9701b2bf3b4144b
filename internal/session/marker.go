package session

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"net/http"
	"time"

	"github.com/angelmondragon/finblog-client/pkg/storage"
	"github.com/golang-jwt/jwt/v5"
)

// AccessTokenCookie is the httpOnly cookie the server sets on login.
const AccessTokenCookie = "accessToken"

// Marker is the persisted record that a session was established. It carries
// no credentials; the cookie jar does.
type Marker struct {
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	LoggedIn  time.Time `json:"loggedInAt"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Expired reports whether the marker carries an expiry that has passed.
func (m Marker) Expired(now time.Time) bool {
	return !m.ExpiresAt.IsZero() && !now.Before(m.ExpiresAt)
}

func loadMarker(ctx context.Context, store storage.Store) (*Marker, error) {
	raw, err := store.Get(ctx, storage.SessionKey)
	if stdErrors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m Marker
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func saveMarker(ctx context.Context, store storage.Store, m Marker) error {
	raw, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return store.Set(ctx, storage.SessionKey, string(raw))
}

// tokenExpiry reads exp from the access-token cookie without verifying the
// signature. The client never holds the signing secret.
func tokenExpiry(cookies []*http.Cookie) time.Time {
	for _, c := range cookies {
		if c.Name != AccessTokenCookie || c.Value == "" {
			continue
		}
		claims := &jwt.RegisteredClaims{}
		if _, _, err := jwt.NewParser().ParseUnverified(c.Value, claims); err != nil {
			return time.Time{}
		}
		if claims.ExpiresAt == nil {
			return time.Time{}
		}
		return claims.ExpiresAt.Time
	}
	return time.Time{}
}
