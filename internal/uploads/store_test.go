package uploads

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/angelmondragon/finblog-client/internal/testkit/fakeapi"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a, 0x1a, 0x0a, 0, 0, 0, 0}

func TestUploadSendsMultipartImage(t *testing.T) {
	srv := fakeapi.New(t)
	srv.Router.Post("/images/upload", func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, pngHeader, data)
		assert.Equal(t, "chart.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))
		assert.Equal(t, "Enflasyon grafiği", r.FormValue("alt"))
		fakeapi.WriteSuccessStatus(w, http.StatusCreated, Image{ID: "i1", URL: "/uploads/chart.png"})
	})
	store := New(srv.Client(t), nil, nil)

	img, err := store.Upload(context.Background(), File{
		Name:    "chart.png",
		Content: bytes.NewReader(pngHeader),
		Alt:     "Enflasyon grafiği",
	})
	require.NoError(t, err)
	require.Equal(t, "/uploads/chart.png", img.URL)
	require.Equal(t, int64(len(pngHeader)), img.Size)

	snap := store.Snapshot()
	require.True(t, snap.Success)
	require.Equal(t, "i1", snap.Data.Last.ID)
	require.Len(t, snap.Data.Uploaded, 1)

	store.Reset()
	snap = store.Snapshot()
	require.Nil(t, snap.Data.Last)
	require.False(t, snap.Success)
}

func TestUploadRejectsNonImages(t *testing.T) {
	srv := fakeapi.New(t)
	store := New(srv.Client(t), nil, nil)
	_, err := store.Upload(context.Background(), File{Name: "notes.txt", Content: bytes.NewReader([]byte("hello world"))})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	require.Equal(t, pkgerrors.CodeValidation, typed.Code())
	require.Equal(t, map[string]string{"file": unsupportedType}, typed.Details())
	require.Equal(t, 0, srv.Calls(http.MethodPost, "/api/images/upload"))
}

func TestUploadRejectsImageTypesOutsideAllowlist(t *testing.T) {
	srv := fakeapi.New(t)
	store := New(srv.Client(t), nil, nil)
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"></svg>`)
	for _, contentType := range []string{"image/svg+xml", "image/bmp", "image/tiff"} {
		_, err := store.Upload(context.Background(), File{Name: "logo", ContentType: contentType, Content: bytes.NewReader(svg)})
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, contentType)
		require.Equal(t, pkgerrors.CodeValidation, typed.Code())
		require.Equal(t, map[string]string{"file": unsupportedType}, typed.Details())
	}
	require.Equal(t, 0, srv.Calls(http.MethodPost, "/api/images/upload"))
}
