// Package categories holds the blog category store.
package categories

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

const (
	basePath = "/categories"
	fetchKey = "fetch"
)

type Category struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description,omitempty"`
	PostCount   int    `json:"postCount"`
}

func (c Category) Identity() string { return c.ID }

type Input struct {
	Name        string `json:"name" validate:"required,min=2,max=60"`
	Slug        string `json:"slug" validate:"required,slug"`
	Description string `json:"description,omitempty" validate:"max=300"`
}

type State struct {
	Items []Category `json:"items"`
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
		Store:    lifecycle.NewStore("categories", State{Items: []Category{}}, tr, logg),
		api:      api,
		validate: v,
	}
}

func (s *Store) Fetch(ctx context.Context) ([]Category, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, []Category]{
		Name:     "fetch",
		Key:      fetchKey,
		Fallback: i18n.KeyCategoriesFetchFailed,
		Call: func(ctx context.Context) ([]Category, error) {
			resp, err := s.api.Get(ctx, basePath, nil)
			if err != nil {
				return nil, err
			}
			return apiclient.DecodeData[[]Category](resp)
		},
		Fulfilled: func(st *State, items []Category) {
			st.Items = lifecycle.Replace(items)
		},
	})
}

// BySlug looks a category up in the loaded list.
func (s *Store) BySlug(slug string) (Category, bool) {
	for _, c := range s.Snapshot().Data.Items {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

func (s *Store) Create(ctx context.Context, in Input) (Category, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Category]{
		Name:        "create",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyCategoriesSaveFailed,
		Call: func(ctx context.Context) (Category, error) {
			if err := s.validate.Struct(in); err != nil {
				return Category{}, err
			}
			resp, err := s.api.Post(ctx, basePath, in)
			if err != nil {
				return Category{}, err
			}
			return apiclient.DecodeData[Category](resp)
		},
		Fulfilled: func(st *State, c Category) {
			st.Items = lifecycle.Prepend(st.Items, c)
		},
	})
}

// Update merges the saved fields into the matching category. When the server
// echoes no category, the submitted input is applied.
func (s *Store) Update(ctx context.Context, id string, in Input) (Category, error) {
	var saved Category
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, json.RawMessage]{
		Name:        "update",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyCategoriesSaveFailed,
		Call: func(ctx context.Context) (json.RawMessage, error) {
			if err := s.validate.Struct(in); err != nil {
				return nil, err
			}
			resp, err := s.api.Put(ctx, basePath+"/"+url.PathEscape(id), in)
			if err != nil {
				return nil, err
			}
			return apiclient.PatchData[Category](resp, in)
		},
		Fulfilled: func(st *State, patch json.RawMessage) {
			var found bool
			st.Items, saved, found = lifecycle.MergeByID(st.Items, id, patch)
			if !found {
				saved, _ = lifecycle.Merge(Category{ID: id}, patch)
			}
		},
	})
	if err != nil {
		return Category{}, err
	}
	return saved, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, string]{
		Name:        "delete",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyCategoriesSaveFailed,
		Call: func(ctx context.Context) (string, error) {
			_, err := s.api.Delete(ctx, basePath+"/"+url.PathEscape(id))
			return id, err
		},
		Fulfilled: func(st *State, id string) {
			st.Items, _ = lifecycle.RemoveByID(st.Items, id)
		},
	})
	return err
}
