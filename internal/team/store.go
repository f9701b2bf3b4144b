// Package team holds the "about us" team member store.
package team

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/internal/validation"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

const (
	basePath = "/team"
	fetchKey = "fetch"
)

type Member struct {
	ID       string            `json:"_id"`
	Name     string            `json:"name"`
	Title    string            `json:"title"`
	Bio      string            `json:"bio,omitempty"`
	Photo    string            `json:"photo,omitempty"`
	Order    int               `json:"order"`
	Socials  map[string]string `json:"socials,omitempty"`
	IsActive bool              `json:"isActive"`
}

func (m Member) Identity() string { return m.ID }

type Input struct {
	Name     string            `json:"name" validate:"required,min=2,max=100"`
	Title    string            `json:"title" validate:"required,max=100"`
	Bio      string            `json:"bio,omitempty" validate:"max=2000"`
	Photo    string            `json:"photo,omitempty" validate:"omitempty,url"`
	Order    int               `json:"order" validate:"gte=0"`
	Socials  map[string]string `json:"socials,omitempty" validate:"omitempty,dive,url"`
	IsActive bool              `json:"isActive"`
}

type State struct {
	Members []Member `json:"members"`
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
		Store:    lifecycle.NewStore("team", State{Members: []Member{}}, tr, logg),
		api:      api,
		validate: v,
	}
}

// Fetch loads every member ordered by display order.
func (s *Store) Fetch(ctx context.Context) ([]Member, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, []Member]{
		Name:     "fetch",
		Key:      fetchKey,
		Fallback: i18n.KeyTeamFetchFailed,
		Call: func(ctx context.Context) ([]Member, error) {
			resp, err := s.api.Get(ctx, basePath, nil)
			if err != nil {
				return nil, err
			}
			members, err := apiclient.DecodeData[[]Member](resp)
			if err != nil {
				return nil, err
			}
			sort.SliceStable(members, func(i, j int) bool { return members[i].Order < members[j].Order })
			return members, nil
		},
		Fulfilled: func(st *State, members []Member) {
			st.Members = lifecycle.Replace(members)
		},
	})
}

func (s *Store) Create(ctx context.Context, in Input) (Member, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Member]{
		Name:        "create",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyTeamSaveFailed,
		Call: func(ctx context.Context) (Member, error) {
			if err := s.validate.Struct(in); err != nil {
				return Member{}, err
			}
			resp, err := s.api.Post(ctx, basePath, in)
			if err != nil {
				return Member{}, err
			}
			return apiclient.DecodeData[Member](resp)
		},
		Fulfilled: func(st *State, m Member) {
			st.Members = lifecycle.Prepend(st.Members, m)
		},
	})
}

// Update merges the saved fields into the matching member. When the server
// echoes no member, the submitted input is applied.
func (s *Store) Update(ctx context.Context, id string, in Input) (Member, error) {
	var saved Member
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, json.RawMessage]{
		Name:        "update",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyTeamSaveFailed,
		Call: func(ctx context.Context) (json.RawMessage, error) {
			if err := s.validate.Struct(in); err != nil {
				return nil, err
			}
			resp, err := s.api.Put(ctx, basePath+"/"+url.PathEscape(id), in)
			if err != nil {
				return nil, err
			}
			return apiclient.PatchData[Member](resp, in)
		},
		Fulfilled: func(st *State, patch json.RawMessage) {
			var found bool
			st.Members, saved, found = lifecycle.MergeByID(st.Members, id, patch)
			if !found {
				saved, _ = lifecycle.Merge(Member{ID: id}, patch)
			}
		},
	})
	if err != nil {
		return Member{}, err
	}
	return saved, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := lifecycle.Run(ctx, s.Store, lifecycle.Op[State, string]{
		Name:        "delete",
		Invalidates: []string{fetchKey},
		Fallback:    i18n.KeyTeamSaveFailed,
		Call: func(ctx context.Context) (string, error) {
			_, err := s.api.Delete(ctx, basePath+"/"+url.PathEscape(id))
			return id, err
		},
		Fulfilled: func(st *State, id string) {
			st.Members, _ = lifecycle.RemoveByID(st.Members, id)
		},
	})
	return err
}
