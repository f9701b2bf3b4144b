package pagination

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 20
	// MaxLimit caps how many rows any list request can ask for.
	MaxLimit = 100
)

// Params holds page-based list inputs sent by the stores.
type Params struct {
	Page  int
	Limit int
}

// Page is the canonical pagination value every list store exposes.
type Page struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// HasNext reports whether another page exists after this one.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// WithTotal returns p with TotalItems set to total and TotalPages derived from
// it and the page size.
func (p Page) WithTotal(total int) Page {
	if total < 0 {
		total = 0
	}
	p.TotalItems = total
	p.TotalPages = ceilDiv(total, NormalizeLimit(p.PageSize))
	return p
}

// NormalizeLimit enforces the configured default and maximum limits.
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Normalize returns params with page >= 1 and a bounded limit.
func (p Params) Normalize() Params {
	page := p.Page
	if page <= 0 {
		page = 1
	}
	return Params{Page: page, Limit: NormalizeLimit(p.Limit)}
}

// Apply writes page and limit into query values.
func (p Params) Apply(values url.Values) url.Values {
	if values == nil {
		values = url.Values{}
	}
	n := p.Normalize()
	values.Set("page", strconv.Itoa(n.Page))
	values.Set("limit", strconv.Itoa(n.Limit))
	return values
}

// FromPaged adapts the {page,totalPages,total} server shape.
func FromPaged(page, totalPages, total, limit int) Page {
	limit = NormalizeLimit(limit)
	if page <= 0 {
		page = 1
	}
	if totalPages <= 0 && total > 0 {
		totalPages = ceilDiv(total, limit)
	}
	return Page{Page: page, PageSize: limit, TotalItems: total, TotalPages: totalPages}
}

// FromCursor adapts the {next,total,count} server shape. next is the page that
// follows the returned one, or 0/nil when there is none.
func FromCursor(next *int, total, count, limit int) Page {
	limit = NormalizeLimit(limit)
	totalPages := ceilDiv(total, limit)
	page := totalPages
	if next != nil && *next > 1 {
		page = *next - 1
	}
	if page <= 0 {
		page = 1
	}
	if total == 0 && count > 0 {
		total = count
		totalPages = ceilDiv(total, limit)
	}
	return Page{Page: page, PageSize: limit, TotalItems: total, TotalPages: totalPages}
}

type wireShape struct {
	Page       *int            `json:"page"`
	TotalPages *int            `json:"totalPages"`
	Total      *int            `json:"total"`
	Next       json.RawMessage `json:"next"`
	Count      *int            `json:"count"`
	Limit      *int            `json:"limit"`
}

// Decode detects which legacy shape raw holds and converts it. An empty payload
// yields a single page sized by itemCount.
func Decode(raw json.RawMessage, limit, itemCount int) (Page, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Page{Page: 1, PageSize: NormalizeLimit(limit), TotalItems: itemCount, TotalPages: 1}, nil
	}
	var shape wireShape
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Page{}, fmt.Errorf("decode pagination: %w", err)
	}
	if shape.Limit != nil && *shape.Limit > 0 {
		limit = *shape.Limit
	}
	total := itemCount
	if shape.Total != nil {
		total = *shape.Total
	}
	if shape.Page != nil || shape.TotalPages != nil {
		return FromPaged(deref(shape.Page), deref(shape.TotalPages), total, limit), nil
	}
	next, err := parseNext(shape.Next)
	if err != nil {
		return Page{}, err
	}
	count := itemCount
	if shape.Count != nil {
		count = *shape.Count
	}
	return FromCursor(next, total, count, limit), nil
}

// parseNext accepts a page number, a numeric string, null or false.
func parseNext(raw json.RawMessage) (*int, error) {
	if len(raw) == 0 || string(raw) == "null" || string(raw) == "false" {
		return nil, nil
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return &n, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode pagination next: %w", err)
	}
	if s == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid pagination next %q: %w", s, err)
	}
	return &n, nil
}

func deref(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
