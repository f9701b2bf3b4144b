package categories

import (
	"context"
	"net/http"
	"testing"

	"github.com/angelmondragon/finblog-client/internal/testkit/fakeapi"
	"github.com/stretchr/testify/require"
)

func TestCategoriesCRUD(t *testing.T) {
	srv := fakeapi.New(t)
	srv.Router.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, []Category{{ID: "c1", Name: "Ekonomi", Slug: "ekonomi", PostCount: 12}})
	})
	srv.Router.Post("/categories", func(w http.ResponseWriter, r *http.Request) {
		var in Input
		fakeapi.Decode(t, r, &in)
		fakeapi.WriteSuccessStatus(w, http.StatusCreated, Category{ID: "c2", Name: in.Name, Slug: in.Slug})
	})
	srv.Router.Put("/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		var in Input
		fakeapi.Decode(t, r, &in)
		fakeapi.WriteSuccess(w, map[string]any{"name": in.Name, "slug": in.Slug})
	})
	store := New(srv.Client(t), nil, nil, nil)
	ctx := context.Background()

	_, err := store.Fetch(ctx)
	require.NoError(t, err)
	_, err = store.Create(ctx, Input{Name: "Borsa", Slug: "borsa"})
	require.NoError(t, err)
	require.Equal(t, "c2", store.Snapshot().Data.Items[0].ID)

	_, err = store.Update(ctx, "c1", Input{Name: "Ekonomi & Piyasa", Slug: "ekonomi-piyasa"})
	require.NoError(t, err)
	updated, ok := store.BySlug("ekonomi-piyasa")
	require.True(t, ok)
	require.Equal(t, 12, updated.PostCount, "unrelated fields survive the merge")

	_, err = store.Create(ctx, Input{Name: "Bad", Slug: "Bad Slug"})
	require.Error(t, err)
	require.Equal(t, "VALIDATION_ERROR", store.Snapshot().ErrorCode)
}

func TestUpdateWithoutDataAppliesInput(t *testing.T) {
	srv := fakeapi.New(t)
	srv.Router.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, []Category{{ID: "c1", Name: "Ekonomi", Slug: "ekonomi", Description: "Piyasalar", PostCount: 4}})
	})
	srv.Router.Put("/categories/{id}", func(w http.ResponseWriter, r *http.Request) {
		fakeapi.WriteSuccess(w, nil)
	})
	store := New(srv.Client(t), nil, nil, nil)
	ctx := context.Background()
	_, err := store.Fetch(ctx)
	require.NoError(t, err)

	saved, err := store.Update(ctx, "c1", Input{Name: "Makro", Slug: "makro"})
	require.NoError(t, err)
	require.Equal(t, "c1", saved.ID)

	got := store.Snapshot().Data.Items[0]
	require.Equal(t, Category{ID: "c1", Name: "Makro", Slug: "makro", Description: "Piyasalar", PostCount: 4}, got)
}
