// Package uploads holds the image upload store.
package uploads

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/angelmondragon/finblog-client/internal/lifecycle"
	"github.com/angelmondragon/finblog-client/pkg/apiclient"
	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
)

const (
	uploadPath = "/images/upload"
	formField  = "image"
	// MaxSize is the largest image the backend accepts.
	MaxSize = 5 << 20

	unsupportedType = "must be a png, jpeg, webp or gif image"
)

var allowedTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpeg": {},
	"image/webp": {},
	"image/gif":  {},
}

type Image struct {
	ID       string `json:"_id,omitempty"`
	URL      string `json:"url"`
	Filename string `json:"filename,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// File is one image picked for upload.
type File struct {
	Name        string
	ContentType string
	Content     io.Reader
	Alt         string
}

type State struct {
	Last     *Image  `json:"last,omitempty"`
	Uploaded []Image `json:"uploaded"`
}

type Store struct {
	*lifecycle.Store[State]
	api apiclient.API
	tr  *i18n.Translator
}

func New(api apiclient.API, tr *i18n.Translator, logg *logger.Logger) *Store {
	if tr == nil {
		tr = i18n.New(i18n.DefaultLocale)
	}
	return &Store{
		Store: lifecycle.NewStore("uploads", State{Uploaded: []Image{}}, tr, logg),
		api:   api,
		tr:    tr,
	}
}

// Upload sends f as multipart form data.
func (s *Store) Upload(ctx context.Context, f File) (Image, error) {
	return lifecycle.Run(ctx, s.Store, lifecycle.Op[State, Image]{
		Name:     "upload",
		Fallback: i18n.KeyUploadFailed,
		Call: func(ctx context.Context) (Image, error) {
			data, contentType, err := s.prepare(f)
			if err != nil {
				return Image{}, err
			}
			form := apiclient.Multipart{
				Files: []apiclient.File{{
					Field:       formField,
					Name:        f.Name,
					ContentType: contentType,
					Content:     bytes.NewReader(data),
				}},
			}
			if f.Alt != "" {
				form.Fields = map[string]string{"alt": f.Alt}
			}
			resp, err := s.api.Upload(ctx, uploadPath, form)
			if err != nil {
				return Image{}, err
			}
			img, err := apiclient.DecodeData[Image](resp)
			if err != nil {
				return Image{}, err
			}
			if img.Size == 0 {
				img.Size = int64(len(data))
			}
			return img, nil
		},
		Fulfilled: func(st *State, img Image) {
			uploaded := img
			st.Last = &uploaded
			st.Uploaded = append(lifecycle.Replace(st.Uploaded), img)
		},
	})
}

// Reset drops the upload history and status.
func (s *Store) Reset() {
	s.Update(func(st *State) {
		st.Last = nil
		st.Uploaded = []Image{}
	})
	s.Clear()
}

func (s *Store) prepare(f File) ([]byte, string, error) {
	if f.Content == nil || strings.TrimSpace(f.Name) == "" {
		return nil, "", s.invalid("file", "is required")
	}
	data, err := io.ReadAll(io.LimitReader(f.Content, MaxSize+1))
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, s.tr.T(i18n.KeyUploadFailed))
	}
	if len(data) == 0 {
		return nil, "", s.invalid("file", "is empty")
	}
	if len(data) > MaxSize {
		return nil, "", s.invalid("file", fmt.Sprintf("must be at most %d bytes", MaxSize))
	}
	contentType := f.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return nil, "", s.invalid("file", unsupportedType)
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := allowedTypes[mediaType]; !ok {
		return nil, "", s.invalid("file", unsupportedType)
	}
	return data, mediaType, nil
}

func (s *Store) invalid(field, reason string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeValidation, s.tr.T(i18n.KeyValidation)).
		WithDetails(map[string]string{field: reason})
}
