// Package posts holds the blog post store.
package posts

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/pagination"
)

const (
	basePath = "/posts"
	fetchKey = "fetch"
)

type State struct {
	Items   []Post          `json:"items"`
	Current *Post           `json:"current,omitempty"`
	Page    pagination.Page `json:"pagination"`
}

type Store struct {
	*lifecycle.Store[State]
	api      apiclient.API
	validate *validation.Validator
}

func New(api apiclient.API, v *validation.Validator, tr *i18n.Translator, logg *logger.Logger) *Store {
	if v == nil {
		v = validation.New(tr)
	}
	return &Store{
		Store:    lifecycle.NewStore("posts", State{Items: []Post{}}, tr, logg),
		api:      api,
		validate: v,
	}
}

// Fetch replaces the list with one page of posts.
func (s *Store) Fetch(ctx context.Context, params pagination.Params) ([]Post, error) {
	return s.fetch(ctx, "fetch", params.Apply(nil), params.Normalize().Limit)
}

// FetchByCategory replaces the list with one page of posts in category.
func (s *Store) FetchByCategory(ctx context.Context, category string, params pagination.Params) ([]Post, error) {
	query := params.Apply(nil)
	query.Set("category", category)
	return s.fetch(ctx, "fetch_by_category", query, params.Normalize().Limit)
}

func (s *Store) fetch(ctx context.Context, name string, query url.Values, limit int) ([]Post, error) {
	type page struct {
		items []Post
		page  pagination.Page
	}
	res, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, page]{
		Name:     name,
		Key:      fetchKey,
		Fallback: i18n.KeyPostsFetchFailed,
		Call: func(ctx context.Context) (page, error) {
			resp, err := s.api.Get(ctx, basePath, query)
			if err != nil {
				return page{}, err
			}
			items, p, err := apiclient.DecodeList[Post](resp, limit)
			return page{items: items, page: p}, err
		},
		Fulfilled: func(st *State, res page) {
			st.Items = lifecycle.Replace(res.items)
			st.Page = res.page
		},
	})
	return res.items, err
}

// FetchBySlug loads a single post into Current.
func (s *Store) FetchBySlug(ctx context.Context, slug string) (Post, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Post]{
		Name:     "fetch_by_slug",
		Key:      "current",
		Fallback: i18n.KeyPostsFetchFailed,
		Call: func(ctx context.Context) (Post, error) {
			if err := s.validate.Var("slug", slug, "required,slug"); err != nil {
				return Post{}, err
			}
			resp, err := s.api.Get(ctx, basePath+"/"+url.PathEscape(slug), nil)
			if err != nil {
				return Post{}, err
			}
			return apiclient.DecodeData[Post](resp)
		},
		Fulfilled: func(st *State, p Post) {
			post := p
			st.Current = &post
		},
	})
}

// Create posts a new entry and prepends it.
func (s *Store) Create(ctx context.Context, in Input) (Post, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Post]{
		Name:        "create",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyPostsSaveFailed,
		Call: func(ctx context.Context) (Post, error) {
			if err := s.validate.Struct(in); err != nil {
				return Post{}, err
			}
			resp, err := s.api.Post(ctx, basePath, in)
			if err != nil {
				return Post{}, err
			}
			return apiclient.DecodeData[Post](resp)
		},
		Fulfilled: func(st *State, p Post) {
			st.Items = lifecycle.Prepend(st.Items, p)
			st.Page = st.Page.WithTotal(st.Page.TotalItems + 1)
		},
	})
}

// Update merges the saved fields into the matching post; absent ids leave the
// list unchanged. When the server echoes no post, the submitted input is applied.
func (s *Store) Update(ctx context.Context, id string, in Input) (Post, error) {
	var saved Post
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, json.RawMessage]{
		Name:        "update",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyPostsSaveFailed,
		Call: func(ctx context.Context) (json.RawMessage, error) {
			if err := s.validate.Struct(in); err != nil {
				return nil, err
			}
			resp, err := s.api.Put(ctx, basePath+"/"+url.PathEscape(id), in)
			if err != nil {
				return nil, err
			}
			return apiclient.PatchData[Post](resp, in)
		},
		Fulfilled: func(st *State, patch json.RawMessage) {
			var found bool
			st.Items, saved, found = lifecycle.MergeByID(st.Items, id, patch)
			if st.Current != nil && st.Current.ID == id {
				if post, err := lifecycle.Merge(*st.Current, patch); err == nil {
					st.Current = &post
					if !found {
						saved, found = post, true
					}
				}
			}
			if !found {
				saved, _ = lifecycle.Merge(Post{ID: id}, patch)
			}
		},
	})
	if err != nil {
		return Post{}, err
	}
	return saved, nil
}

// Delete removes the post from the server and filters it out locally.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, string]{
		Name:        "delete",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyPostsDeleteFailed,
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
			if st.Current != nil && st.Current.ID == id {
				st.Current = nil
			}
		},
	})
	return err
}

// Search queries posts without touching store state; the search debouncer owns
// cancellation and staleness.
func (s *Store) Search(ctx context.Context, q string) ([]Post, error) {
	query := url.Values{}
	query.Set("q", strings.TrimSpace(q))
	resp, err := s.api.Get(ctx, basePath+"/search", query)
	if err != nil {
		return nil, err
	}
	items, _, err := apiclient.DecodeList[Post](resp, pagination.DefaultLimit)
	return items, err
}
