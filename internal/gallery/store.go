// Package gallery holds the image gallery store and its selection and
// bulk-delete flow.
package gallery

import (
	"context"
	"net/url"
	"time"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/notify"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/pagination"
)

const (
	basePath = "/images"
	fetchKey = "fetch"
)

type Image struct {
	ID        string    `json:"_id"`
	URL       string    `json:"url"`
	Filename  string    `json:"filename,omitempty"`
	Alt       string    `json:"alt,omitempty"`
	Size      int64     `json:"size,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

func (i Image) Identity() string { return i.ID }

// State maps are replaced, never mutated, once published.
type State struct {
	Items       []Image           `json:"items"`
	Page        pagination.Page   `json:"pagination"`
	Params      pagination.Params `json:"-"`
	Loaded      bool              `json:"loaded"`
	MultiSelect bool              `json:"multiSelect"`
	Selected    map[string]bool   `json:"selected"`
	Broken      map[string]bool   `json:"broken"`
}

type Store struct {
	*lifecycle.Store[State]
	api      apiclient.API
	notifier notify.Notifier
	tr       *i18n.Translator
	logg     *logger.Logger
	probes   int
}

func New(api apiclient.API, notifier notify.Notifier, tr *i18n.Translator, logg *logger.Logger) *Store {
	if tr == nil {
		tr = i18n.New(i18n.DefaultLocale)
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{
		Store: lifecycle.NewStore("gallery", State{
			Items:    []Image{},
			Selected: map[string]bool{},
			Broken:   map[string]bool{},
		}, tr, logg),
		api:      api,
		notifier: notifier,
		tr:       tr,
		logg:     logg,
		probes:   defaultProbeConcurrency,
	}
}

type listResult struct {
	items []Image
	page  pagination.Page
}

// Fetch replaces the list with one page of images.
func (s *Store) Fetch(ctx context.Context, params pagination.Params) ([]Image, error) {
	paging := params.Normalize()
	res, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, listResult]{
		Name:     "fetch",
		Key:      fetchKey,
		Fallback: i18n.KeyGalleryFetchFailed,
		Call: func(ctx context.Context) (listResult, error) {
			resp, err := s.api.Get(ctx, basePath, paging.Apply(nil))
			if err != nil {
				return listResult{}, err
			}
			items, page, err := apiclient.DecodeList[Image](resp, paging.Limit)
			return listResult{items: items, page: page}, err
		},
		Fulfilled: func(st *State, res listResult) {
			st.Items = lifecycle.Replace(res.items)
			st.Page = res.page
			st.Params = paging
			st.Loaded = true
		},
	})
	return res.items, err
}

// Refresh re-runs the last Fetch. A store that never fetched stays untouched.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.Snapshot().Data.Loaded {
		return nil
	}
	_, err := s.Fetch(ctx, s.Snapshot().Data.Params)
	return err
}

// Delete removes one image and forgets its selection and broken marks.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, string]{
		Name:        "delete",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyGalleryDeleteFailed,
		Call: func(ctx context.Context) (string, error) {
			_, err := s.api.Delete(ctx, basePath+"/"+url.PathEscape(id))
			return id, err
		},
		Fulfilled: func(st *State, id string) {
			var removed bool
			st.Items, removed = lifecycle.RemoveByID(st.Items, id)
			if removed {
				st.Page = st.Page.WithTotal(st.Page.TotalItems - 1)
			}
			st.Selected = without(st.Selected, id)
			st.Broken = without(st.Broken, id)
		},
	})
	return err
}

func without(set map[string]bool, id string) map[string]bool {
	if !set[id] {
		return set
	}
	out := make(map[string]bool, len(set))
	for k, v := range set {
		if k != id {
			out[k] = v
		}
	}
	return out
}

func with(set map[string]bool, ids ...string) map[string]bool {
	out := make(map[string]bool, len(set)+len(ids))
	for k, v := range set {
		out[k] = v
	}
	for _, id := range ids {
		out[id] = true
	}
	return out
}
