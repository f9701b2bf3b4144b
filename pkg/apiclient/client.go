// Package apiclient is the single point of network egress for the blog client.
// It attaches credentials to every request and converts every failure into a
// *errors.Error carrying a message, a code and the HTTP status.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/finblog-client/pkg/errors"
	"github.com/angelmondragon/finblog-client/pkg/i18n"
	"github.com/angelmondragon/finblog-client/pkg/logger"
	"github.com/angelmondragon/finblog-client/pkg/metrics"
	"github.com/angelmondragon/finblog-client/pkg/types"
	"github.com/google/uuid"
	"golang.org/x/net/publicsuffix"
)

const (
	defaultTimeout       = 30 * time.Second
	responseBodyLimit    = 10 << 20
	loggedBodyLimit      = 2048
	headerRequestID      = "X-Request-ID"
	contentTypeJSON      = "application/json"
	errBaseURLIsRequired = "api base url is required"
)

// Client wraps the backend REST API.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logg       *logger.Logger
	logging    bool
	metrics    *metrics.ClientMetrics
	tr         *i18n.Translator
	requestID  func() string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. A cookie jar is attached
// when the supplied client has none so credentials always travel.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request/response tracing.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// WithLogging enables request tracing; production builds never trace.
func WithLogging(enabled, production bool) Option {
	return func(c *Client) {
		c.logging = enabled && !production
	}
}

// WithMetrics records request outcomes on the supplied collectors.
func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTranslator sets the translator for localized fallback messages.
func WithTranslator(tr *i18n.Translator) Option {
	return func(c *Client) {
		if tr != nil {
			c.tr = tr
		}
	}
}

// WithLocale resolves fallback messages in the given locale.
func WithLocale(locale string) Option {
	return func(c *Client) {
		c.tr = i18n.New(locale)
	}
}

// WithCookieJar replaces the credential jar.
func WithCookieJar(jar http.CookieJar) Option {
	return func(c *Client) {
		if jar == nil {
			return
		}
		withJar := *c.httpClient
		withJar.Jar = jar
		c.httpClient = &withJar
	}
}

// WithTimeout overrides the default per-request timeout of the built-in HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// NewClient builds the API client for the given base URL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, stdErrors.New(errBaseURLIsRequired)
	}
	parsed, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("api base url %q must be absolute", baseURL)
	}

	client := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logg:       logger.Nop(),
		tr:         i18n.New(i18n.DefaultLocale),
		requestID:  func() string { return uuid.NewString() },
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	if client.httpClient.Jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		withJar := *client.httpClient
		withJar.Jar = jar
		client.httpClient = &withJar
	}

	return client, nil
}

// Request describes one call against the API.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      any
	Multipart *Multipart
	Header    http.Header
}

// Multipart is a multipart/form-data body.
type Multipart struct {
	Fields map[string]string
	Files  []File
}

// File is one file part of a multipart body.
type File struct {
	Field       string
	Name        string
	ContentType string
	Content     io.Reader
}

// Response is a successful API answer.
type Response struct {
	Status   int
	Header   http.Header
	Body     []byte
	Envelope types.Envelope
}

// Cookies returns the credentials currently held for the API host.
func (c *Client) Cookies() []*http.Cookie {
	if c == nil || c.httpClient.Jar == nil {
		return nil
	}
	return c.httpClient.Jar.Cookies(c.baseURL)
}

// Translator exposes the translator used for fallback messages.
func (c *Client) Translator() *i18n.Translator {
	return c.tr
}

// Do executes req. Failures are always *errors.Error.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNetwork, "api client not configured")
	}
	method := strings.ToUpper(strings.TrimSpace(req.Method))
	if method == "" {
		method = http.MethodGet
	}
	target := c.buildURL(req.Path, req.Query)

	body, contentType, err := encodeBody(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, c.tr.T(i18n.KeyValidation))
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, c.tr.T(i18n.KeyNetworkError))
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	httpReq.Header.Set("Accept", contentTypeJSON)
	httpReq.Header.Set("Accept-Language", c.tr.Locale())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	requestID := c.requestID()
	httpReq.Header.Set(headerRequestID, requestID)

	logCtx := c.logg.WithFields(ctx, map[string]any{
		"request_id": requestID,
		"method":     method,
		"url":        target,
	})

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.transportFailure(logCtx, ctx, method, start, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, c.transportFailure(logCtx, ctx, method, start, err)
	}
	c.metrics.ObserveRequest(method, resp.StatusCode, time.Since(start))

	if resp.StatusCode >= http.StatusBadRequest || explicitFailure(raw) {
		normalized := normalizeFailure(resp.StatusCode, raw, c.tr.T(i18n.KeyGenericError))
		c.logFailure(logCtx, normalized)
		return nil, normalized
	}

	envelope, err := decodeEnvelope(raw)
	if err != nil {
		decodeErr := pkgerrors.Wrap(pkgerrors.CodeDecode, err, c.tr.T(i18n.KeyGenericError)).WithStatus(resp.StatusCode)
		c.logFailure(logCtx, decodeErr)
		return nil, decodeErr
	}

	if c.logging {
		c.logg.Info(c.logg.WithFields(logCtx, map[string]any{
			"status": resp.StatusCode,
			"body":   truncate(raw, loggedBodyLimit),
		}), "api response")
	}

	return &Response{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     raw,
		Envelope: envelope,
	}, nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPut, Path: path, Body: body})
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPatch, Path: path, Body: body})
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodDelete, Path: path})
}

// Upload issues a multipart POST request.
func (c *Client) Upload(ctx context.Context, path string, form Multipart) (*Response, error) {
	return c.Do(ctx, Request{Method: http.MethodPost, Path: path, Multipart: &form})
}

// Ping sends a HEAD request to rawURL, resolved against the API host, and reports the status.
func (c *Client) Ping(ctx context.Context, rawURL string) (int, error) {
	ref, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, c.tr.T(i18n.KeyValidation))
	}
	target := c.baseURL.ResolveReference(ref).String()
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, target, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, c.tr.T(i18n.KeyNetworkError))
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil && stdErrors.Is(err, context.Canceled) {
			return 0, pkgerrors.Wrap(pkgerrors.CodeAborted, err, "request canceled")
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeNetwork, err, c.tr.T(i18n.KeyNetworkError))
	}
	_ = resp.Body.Close()
	return resp.StatusCode, nil
}

func (c *Client) transportFailure(logCtx, ctx context.Context, method string, start time.Time, err error) *pkgerrors.Error {
	if ctx.Err() != nil && stdErrors.Is(ctx.Err(), context.Canceled) {
		c.metrics.IncAborted()
		if c.logging {
			c.logg.Debug(logCtx, "api request aborted")
		}
		return pkgerrors.Wrap(pkgerrors.CodeAborted, err, "request canceled")
	}
	c.metrics.ObserveRequest(method, 0, time.Since(start))
	normalized := pkgerrors.Wrap(pkgerrors.CodeNetwork, err, c.tr.T(i18n.KeyNetworkError))
	c.logFailure(logCtx, normalized)
	return normalized
}

func (c *Client) logFailure(ctx context.Context, err *pkgerrors.Error) {
	if !c.logging || err == nil {
		return
	}
	c.logg.Warn(c.logg.WithFields(ctx, map[string]any{
		"status":  err.Status(),
		"code":    string(err.Code()),
		"message": err.Message(),
	}), "api request failed")
}

func (c *Client) buildURL(path string, query url.Values) string {
	trimmed := strings.TrimRight(c.baseURL.String(), "/")
	path = strings.TrimLeft(path, "/")
	target := fmt.Sprintf("%s/%s", trimmed, path)
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

func encodeBody(req Request) (io.Reader, string, error) {
	if req.Multipart != nil {
		return encodeMultipart(*req.Multipart)
	}
	if req.Body == nil {
		return nil, "", nil
	}
	payload, err := json.Marshal(req.Body)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request body: %w", err)
	}
	return bytes.NewReader(payload), contentTypeJSON, nil
}

func encodeMultipart(form Multipart) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for key, value := range form.Fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write form field %s: %w", key, err)
		}
	}
	for _, file := range form.Files {
		if file.Content == nil {
			return nil, "", fmt.Errorf("file %q has no content", file.Name)
		}
		field := file.Field
		if field == "" {
			field = "file"
		}
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, file.Name))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", file.Name, err)
		}
		if _, err := io.Copy(part, file.Content); err != nil {
			return nil, "", fmt.Errorf("copy form file %s: %w", file.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}
	return string(raw[:limit]) + "..."
}

// API is the surface stores depend on; *Client implements it.
type API interface {
	Do(ctx context.Context, req Request) (*Response, error)
	Get(ctx context.Context, path string, query url.Values) (*Response, error)
	Post(ctx context.Context, path string, body any) (*Response, error)
	Put(ctx context.Context, path string, body any) (*Response, error)
	Patch(ctx context.Context, path string, body any) (*Response, error)
	Delete(ctx context.Context, path string) (*Response, error)
	Upload(ctx context.Context, path string, form Multipart) (*Response, error)
	Ping(ctx context.Context, rawURL string) (int, error)
}

var _ API = (*Client)(nil)
