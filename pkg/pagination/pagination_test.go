package pagination

import (
	"encoding/json"
	"net/url"
	"testing"
)

func TestNormalizeLimit(t *testing.T) {
	if got := NormalizeLimit(0); got != DefaultLimit {
		t.Fatalf("expected default limit, got %d", got)
	}
	if got := NormalizeLimit(1000); got != MaxLimit {
		t.Fatalf("expected max limit, got %d", got)
	}
	if got := NormalizeLimit(7); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
}

func TestParamsApply(t *testing.T) {
	values := Params{Page: 0, Limit: 0}.Apply(url.Values{"q": {"x"}})
	if values.Get("page") != "1" || values.Get("limit") != "20" || values.Get("q") != "x" {
		t.Fatalf("unexpected values %v", values)
	}
}

func TestDecodePagedShape(t *testing.T) {
	page, err := Decode(json.RawMessage(`{"page":1,"totalPages":5,"total":100}`), 20, 20)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Page{Page: 1, PageSize: 20, TotalItems: 100, TotalPages: 5}
	if page != want {
		t.Fatalf("expected %+v got %+v", want, page)
	}
	if !page.HasNext() {
		t.Fatalf("page 1 of 5 should have a next page")
	}
}

func TestDecodeCursorShape(t *testing.T) {
	page, err := Decode(json.RawMessage(`{"next":3,"total":45,"count":10}`), 10, 10)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Page{Page: 2, PageSize: 10, TotalItems: 45, TotalPages: 5}
	if page != want {
		t.Fatalf("expected %+v got %+v", want, page)
	}
}

func TestDecodeCursorShapeLastPage(t *testing.T) {
	page, err := Decode(json.RawMessage(`{"next":null,"total":45,"count":5}`), 10, 5)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 5 || page.HasNext() {
		t.Fatalf("expected last page, got %+v", page)
	}
}

func TestDecodeCursorShapeStringNext(t *testing.T) {
	page, err := Decode(json.RawMessage(`{"next":"2","total":30,"count":10}`), 10, 10)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Page != 1 || page.TotalPages != 3 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	page, err := Decode(nil, 0, 4)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalItems != 4 || page.TotalPages != 1 || page.Page != 1 {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := Decode(json.RawMessage(`{"next":{}}`), 10, 0); err == nil {
		t.Fatalf("expected error for object next")
	}
}

func TestWithTotalKeepsPagesConsistent(t *testing.T) {
	page := Page{Page: 1, PageSize: 2, TotalItems: 2, TotalPages: 1}

	grown := page.WithTotal(3)
	if grown.TotalItems != 3 || grown.TotalPages != 2 {
		t.Fatalf("expected 3 items over 2 pages, got %+v", grown)
	}
	shrunk := grown.WithTotal(2)
	if shrunk.TotalPages != 1 || shrunk.Page != 1 || shrunk.PageSize != 2 {
		t.Fatalf("expected 1 page, got %+v", shrunk)
	}
	if empty := shrunk.WithTotal(-1); empty.TotalItems != 0 || empty.TotalPages != 0 {
		t.Fatalf("expected an empty page, got %+v", empty)
	}
}
