package team

import (
	"context"
	"net/http"
	"testing"

	"github.com/angelmondragon/finblog-client/internal/testkit/fakeapi"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestTeamLifecycle(t *testing.T) {
	srv := fakeapi.New(t)
	srv.Router.Get("/team", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, []Member{{ID: "b", Name: "Zeynep", Order: 2}, {ID: "a", Name: "Can", Order: 1}})
	})
	srv.Router.Put("/team/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in Input
		fakeapi.Decode(t, r, &in)
		fakeapi.WriteSuccess(w, Member{ID: chi.URLParam(r, "id"), Name: in.Name, Title: in.Title, Order: in.Order})
	})
	srv.Router.Delete("/team/{id}", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, nil)
	})
	store := New(srv.Client(t), nil, nil, nil)
	ctx := context.Background()

	members, err := store.Fetch(ctx)
	require.NoError(t, err)
	require.Equal(t, "a", members[0].ID, "sorted by order")

	_, err = store.Update(ctx, "b", Input{Name: "Zeynep K.", Title: "Editör", Order: 2})
	require.NoError(t, err)
	require.Equal(t, "Zeynep K.", store.Snapshot().Data.Members[1].Name)

	require.NoError(t, store.Delete(ctx, "a"))
	require.Len(t, store.Snapshot().Data.Members, 1)
}

func TestTeamCreateValidation(t *testing.T) {
	srv := fakeapi.New(t)
	store := New(srv.Client(t), nil, nil, nil)
	_, err := store.Create(context.Background(), Input{Name: "A", Photo: "not a url"})
	require.Error(t, err)
	snap := store.Snapshot()
	require.True(t, snap.Error)
	require.Equal(t, "VALIDATION_ERROR", snap.ErrorCode)
}

func TestUpdateKeepsFieldsTheServerOmits(t *testing.T) {
	srv := fakeapi.New(t)
	srv.Router.Get("/team", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, []Member{{
			ID:       "a",
			Name:     "Can",
			Title:    "Yazar",
			Photo:    "https://cdn.example.com/can.png",
			Socials:  map[string]string{"x": "https://x.com/can"},
			IsActive: true,
		}})
	})
	srv.Router.Put("/team/{id}", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, map[string]any{"_id": chi.URLParam(r, "id"), "title": "Baş editör"})
	})
	store := New(srv.Client(t), nil, nil, nil)
	ctx := context.Background()
	_, err := store.Fetch(ctx)
	require.NoError(t, err)

	saved, err := store.Update(ctx, "a", Input{Name: "Can", Title: "Editör", IsActive: true})
	require.NoError(t, err)
	require.Equal(t, "Baş editör", saved.Title)

	got := store.Snapshot().Data.Members[0]
	require.Equal(t, "Baş editör", got.Title)
	require.Equal(t, "Can", got.Name)
	require.Equal(t, "https://cdn.example.com/can.png", got.Photo)
	require.Equal(t, "https://x.com/can", got.Socials["x"])
	require.True(t, got.IsActive)
}
