// Package users holds the admin user-list store.
package users

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/pagination"
)

const (
	basePath = "/users"
	fetchKey = "fetch"
)

type State struct {
	Items  []User          `json:"items"`
	Page   pagination.Page `json:"pagination"`
	Params ListParams      `json:"-"`
	Loaded bool            `json:"loaded"`
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
		Store:    lifecycle.NewStore("users", State{Items: []User{}}, tr, logg),
		api:      api,
		validate: v,
	}
}

type listResult struct {
	items []User
	page  pagination.Page
}

// Fetch replaces the list with one page of users.
func (s *Store) Fetch(ctx context.Context, params ListParams) ([]User, error) {
	paging := pagination.Params{Page: params.Page, Limit: params.Limit}.Normalize()
	query := paging.Apply(nil)
	if params.Search != "" {
		query.Set("search", params.Search)
	}
	if params.Role != "" {
		query.Set("role", string(params.Role))
	}
	res, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, listResult]{
		Name:     "fetch",
		Key:      fetchKey,
		Fallback: i18n.KeyUsersFetchFailed,
		Call: func(ctx context.Context) (listResult, error) {
			resp, err := s.api.Get(ctx, basePath, query)
			if err != nil {
				return listResult{}, err
			}
			items, page, err := apiclient.DecodeList[User](resp, paging.Limit)
			return listResult{items: items, page: page}, err
		},
		Fulfilled: func(st *State, res listResult) {
			st.Items = lifecycle.Replace(res.items)
			st.Page = res.page
			st.Params = params
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

// UpdateRole patches the role in place before the call settles and rolls it
// back on failure. A user outside the loaded page is left untouched locally.
func (s *Store) UpdateRole(ctx context.Context, id string, role Role) (User, error) {
	if err := s.validate.Var("role", string(role), "required,oneof=user author admin"); err != nil {
		return s.reject(ctx, "update_role", err)
	}
	return s.patch(ctx, "update_role", id,
		func(u User) User { u.Role = role; return u },
		func(ctx context.Context) (*apiclient.Response, error) {
			return s.api.Patch(ctx, basePath+"/"+url.PathEscape(id)+"/role", map[string]string{"role": string(role)})
		})
}

// ToggleActivation flips isActive with the same optimistic policy as UpdateRole.
func (s *Store) ToggleActivation(ctx context.Context, id string) (User, error) {
	return s.patch(ctx, "toggle_activation", id,
		func(u User) User { u.IsActive = !u.IsActive; return u },
		func(ctx context.Context) (*apiclient.Response, error) {
			return s.api.Patch(ctx, basePath+"/"+url.PathEscape(id)+"/status", nil)
		})
}

func (s *Store) patch(
	ctx context.Context,
	name, id string,
	apply func(User) User,
	call func(context.Context) (*apiclient.Response, error),
) (User, error) {
	var (
		previous *User
		saved    User
	)
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, json.RawMessage]{
		Name:        name,
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyUsersUpdateFailed,
		Pending: func(st *State) {
			if idx := lifecycle.IndexOf(st.Items, id); idx >= 0 {
				before := st.Items[idx]
				previous = &before
				st.Items, _ = lifecycle.ReplaceByID(st.Items, id, apply)
			}
		},
		Call: func(ctx context.Context) (json.RawMessage, error) {
			resp, err := call(ctx)
			if err != nil {
				return nil, err
			}
			return apiclient.PatchData[User](resp, nil)
		},
		Fulfilled: func(st *State, patch json.RawMessage) {
			var found bool
			st.Items, saved, found = lifecycle.MergeByID(st.Items, id, patch)
			if !found {
				saved, _ = lifecycle.Merge(User{ID: id}, patch)
			}
		},
		Rollback: func(st *State) {
			if previous == nil {
				return
			}
			restore := *previous
			st.Items, _ = lifecycle.ReplaceByID(st.Items, id, func(User) User { return restore })
		},
	})
	if err != nil {
		return User{}, err
	}
	return saved, nil
}

// Delete hard-deletes a user and filters it out of the list.
func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, string]{
		Name:        "delete",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyUsersDeleteFailed,
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
		},
	})
	return err
}

func (s *Store) reject(ctx context.Context, name string, err error) (User, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, User]{
		Name: name,
		Call: func(context.Context) (User, error) { return User{}, err },
	})
}
