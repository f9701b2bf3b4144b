package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"testing"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/metrics"
	"github.com/angelmondragon/finblog-client/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(t *testing.T, rt roundTripFunc, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithHTTPClient(&http.Client{Transport: rt})}, opts...)
	client, err := NewClient("http://api.test/api", opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewClientRequiresAbsoluteURL(t *testing.T) {
	if _, err := NewClient(""); err == nil {
		t.Fatalf("expected error for empty base url")
	}
	if _, err := NewClient("/api"); err == nil {
		t.Fatalf("expected error for relative base url")
	}
}

func TestClientAttachesHeadersAndCredentials(t *testing.T) {
	var captured *http.Request
	var payload map[string]any
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		captured = req
		body, err := io.ReadAll(req.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("unmarshal body: %v", err)
		}
		resp := jsonResponse(http.StatusOK, `{"success":true,"data":{"id":"u1"}}`)
		resp.Header.Add("Set-Cookie", "session=abc; Path=/")
		return resp, nil
	})

	resp, err := client.Post(context.Background(), "/auth/login", map[string]string{"email": "a@b.c"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if captured.URL.String() != "http://api.test/api/auth/login" {
		t.Fatalf("unexpected url %q", captured.URL.String())
	}
	if captured.Header.Get(headerRequestID) == "" {
		t.Fatalf("request id header missing")
	}
	if captured.Header.Get("Content-Type") != contentTypeJSON {
		t.Fatalf("unexpected content type %q", captured.Header.Get("Content-Type"))
	}
	if payload["email"] != "a@b.c" {
		t.Fatalf("unexpected payload %+v", payload)
	}

	type user struct {
		ID string `json:"id"`
	}
	got, err := DecodeData[user](resp)
	if err != nil || got.ID != "u1" {
		t.Fatalf("unexpected decode %+v err=%v", got, err)
	}

	cookies := client.Cookies()
	if len(cookies) != 1 || cookies[0].Value != "abc" {
		t.Fatalf("expected session cookie to be stored, got %+v", cookies)
	}

	var second *http.Request
	client.httpClient.Transport = roundTripFunc(func(req *http.Request) (*http.Response, error) {
		second = req
		return jsonResponse(http.StatusOK, `{"success":true}`), nil
	})
	if _, err := client.Get(context.Background(), "/auth/me", nil); err != nil {
		t.Fatalf("get: %v", err)
	}
	if c, err := second.Cookie("session"); err != nil || c.Value != "abc" {
		t.Fatalf("expected credentials on follow-up request, err=%v", err)
	}
}

func TestClientNormalizesFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantCode    pkgerrors.Code
		wantMessage string
	}{
		{
			name:        "server message and code",
			status:      http.StatusUnauthorized,
			body:        `{"success":false,"message":"Oturum yok","error":{"code":"AUTH_REQUIRED"}}`,
			wantCode:    pkgerrors.CodeAuthRequired,
			wantMessage: "Oturum yok",
		},
		{
			name:        "nested error message",
			status:      http.StatusBadRequest,
			body:        `{"success":false,"error":{"code":"INVALID_CODE","message":"bad code"}}`,
			wantCode:    pkgerrors.CodeInvalidCode,
			wantMessage: "bad code",
		},
		{
			name:        "html body",
			status:      http.StatusInternalServerError,
			body:        `<html>oops</html>`,
			wantCode:    pkgerrors.CodeUnknown,
			wantMessage: i18n.New(i18n.DefaultLocale).T(i18n.KeyGenericError),
		},
		{
			name:        "success false on 200",
			status:      http.StatusOK,
			body:        `{"success":false,"message":"nope"}`,
			wantCode:    pkgerrors.CodeUnknown,
			wantMessage: "nope",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
				return jsonResponse(tc.status, tc.body), nil
			})
			_, err := client.Get(context.Background(), "/things", nil)
			typed := pkgerrors.As(err)
			if typed == nil {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if typed.Code() != tc.wantCode {
				t.Fatalf("expected code %s, got %s", tc.wantCode, typed.Code())
			}
			if typed.Message() != tc.wantMessage {
				t.Fatalf("expected message %q, got %q", tc.wantMessage, typed.Message())
			}
			if typed.Status() != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, typed.Status())
			}
		})
	}
}

func TestClientNetworkFailure(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("dial tcp: connection refused")
	}, WithTranslator(i18n.New("en-US")))

	_, err := client.Get(context.Background(), "/things", nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNetwork {
		t.Fatalf("expected network error, got %v", err)
	}
	if typed.Status() != 0 {
		t.Fatalf("expected status 0, got %d", typed.Status())
	}
	if typed.Message() != "Cannot reach the server. Check your connection." {
		t.Fatalf("unexpected message %q", typed.Message())
	}
}

func TestClientAbortIsDistinguishable(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewClientMetrics(reg)
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return nil, req.Context().Err()
	}, WithMetrics(m))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := client.Get(ctx, "/things", nil)
	if !pkgerrors.IsAborted(err) {
		t.Fatalf("expected aborted error, got %v", err)
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeAborted {
		t.Fatalf("unexpected code %s", pkgerrors.As(err).Code())
	}
}

func TestClientTreatsBareBodiesAsData(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `[{"id":"a"},{"id":"b"}]`), nil
	})
	resp, err := client.Get(context.Background(), "/images", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	type item struct {
		ID string `json:"id"`
	}
	items, page, err := DecodeList[item](resp, 20)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 2 || page.TotalItems != 2 || page.TotalPages != 1 {
		t.Fatalf("unexpected list %+v page %+v", items, page)
	}
}

func TestDecodeListNestedPayload(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"success":true,"data":{"items":[{"id":"a"}],"pagination":{"next":3,"total":45,"count":1}}}`), nil
	})
	resp, err := client.Get(context.Background(), "/posts", nil)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	type item struct {
		ID string `json:"id"`
	}
	items, page, err := DecodeList[item](resp, 20)
	if err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 || page.Page != 2 || page.TotalPages != 3 || page.TotalItems != 45 {
		t.Fatalf("unexpected list %+v page %+v", items, page)
	}
}

func TestClientUploadSendsMultipart(t *testing.T) {
	var fileName, fieldValue string
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		_, params, err := mime.ParseMediaType(req.Header.Get("Content-Type"))
		if err != nil {
			t.Fatalf("parse content type: %v", err)
		}
		reader := multipart.NewReader(req.Body, params["boundary"])
		for {
			part, err := reader.NextPart()
			if err == io.EOF {
				break
			}
			if err != nil {
				t.Fatalf("next part: %v", err)
			}
			data, _ := io.ReadAll(part)
			if part.FileName() != "" {
				fileName = part.FileName()
			} else if part.FormName() == "alt" {
				fieldValue = string(data)
			}
		}
		return jsonResponse(http.StatusCreated, `{"success":true,"data":{"url":"/img/a.png"}}`), nil
	})

	_, err := client.Upload(context.Background(), "/upload", Multipart{
		Fields: map[string]string{"alt": "chart"},
		Files:  []File{{Field: "image", Name: "a.png", ContentType: "image/png", Content: bytes.NewReader([]byte{1, 2, 3})}},
	})
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if fileName != "a.png" || fieldValue != "chart" {
		t.Fatalf("unexpected multipart file=%q field=%q", fileName, fieldValue)
	}
}

func TestClientPing(t *testing.T) {
	client := newTestClient(t, func(req *http.Request) (*http.Response, error) {
		if req.Method != http.MethodHead {
			t.Fatalf("expected HEAD, got %s", req.Method)
		}
		if req.URL.String() != "https://cdn.test/a.png" {
			t.Fatalf("unexpected url %s", req.URL.String())
		}
		return &http.Response{StatusCode: http.StatusNotFound, Body: io.NopCloser(strings.NewReader(""))}, nil
	})
	status, err := client.Ping(context.Background(), "https://cdn.test/a.png")
	if err != nil || status != http.StatusNotFound {
		t.Fatalf("unexpected ping status=%d err=%v", status, err)
	}
}

func TestPatchDataPrefersServerObject(t *testing.T) {
	submitted := map[string]string{"title": "local"}

	raw, err := PatchData[map[string]any](&Response{Envelope: types.Envelope{Success: true, Data: json.RawMessage(`{"title":"server"}`)}}, submitted)
	if err != nil || string(raw) != `{"title":"server"}` {
		t.Fatalf("expected server data, got %s err=%v", raw, err)
	}

	raw, err = PatchData[map[string]any](&Response{Envelope: types.Envelope{Success: true, Message: "updated"}}, submitted)
	if err != nil || string(raw) != `{"title":"local"}` {
		t.Fatalf("expected submitted payload, got %s err=%v", raw, err)
	}

	raw, err = PatchData[map[string]any](&Response{Envelope: types.Envelope{Success: true, Data: json.RawMessage(`"ok"`)}}, nil)
	if err != nil || raw != nil {
		t.Fatalf("expected nil patch, got %s err=%v", raw, err)
	}

	_, err = PatchData[map[string]int](&Response{Status: 200, Envelope: types.Envelope{Success: true, Data: json.RawMessage(`{"title":"x"}`)}}, nil)
	if pkgerrors.As(err).Code() != pkgerrors.CodeDecode {
		t.Fatalf("expected decode error, got %v", err)
	}
}
