package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	pkgerrors "github.com/angelmondragon/gridstock/pkg/errors"
)

type samplePayload struct {
	Name     string `json:"name" validate:"required,max=5"`
	Quantity *int   `json:"quantity" validate:"omitempty,gte=0"`
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ok","extra":1}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldMessages(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","quantity":-1}`))
	var dest samplePayload
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("unexpected details %T", typed.Details())
	}
	if details["name"] != "must be at most 5" {
		t.Fatalf("unexpected name message %q", details["name"])
	}
	if details["quantity"] != "must be at least 0" {
		t.Fatalf("unexpected quantity message %q", details["quantity"])
	}
}

func TestParseIDParam(t *testing.T) {
	build := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rc := chi.NewRouteContext()
		rc.URLParams.Add("itemId", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rc))
	}

	id, err := ParseIDParam(build("42"), "itemId")
	if err != nil || id != 42 {
		t.Fatalf("expected 42, got %d (%v)", id, err)
	}
	for _, bad := range []string{"", "abc", "0", "-3"} {
		if _, err := ParseIDParam(build(bad), "itemId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
			t.Fatalf("%q: expected validation error, got %v", bad, err)
		}
	}
}

func TestParseQueryList(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?fields=name,%20information,&fields=name", nil)
	got := ParseQueryList(req, "fields")
	want := []string{"name", "information", "name"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestRequiredText(t *testing.T) {
	got, err := RequiredText("q", "  drawer  ", 6)
	if err != nil || got != "drawer" {
		t.Fatalf("expected trimmed drawer, got %q (%v)", got, err)
	}

	// multi-byte runes count once each
	if got, err := RequiredText("q", strings.Repeat("ä", 5), 5); err != nil || got != strings.Repeat("ä", 5) {
		t.Fatalf("expected five runes to pass, got %q (%v)", got, err)
	}

	_, err = RequiredText("q", strings.Repeat("a", 7), 6)
	assertTextDetail(t, err, "at most 6 characters")

	_, err = RequiredText("q", "   ", 6)
	assertTextDetail(t, err, "is required")

	_, err = RequiredText("q", "ab\xffcd", 6)
	assertTextDetail(t, err, "must be valid UTF-8")
}

func assertTextDetail(t *testing.T, err error, want string) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["q"] != want {
		t.Fatalf("expected q detail %q, got %v", want, typed.Details())
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?row=2&column=x&big=99", nil)
	if v, err := ParseQueryInt(req, "row", -1, 0, 10); err != nil || v != 2 {
		t.Fatalf("expected 2, got %d (%v)", v, err)
	}
	if v, err := ParseQueryInt(req, "missing", 7, 0, 10); err != nil || v != 7 {
		t.Fatalf("expected default 7, got %d (%v)", v, err)
	}
	if _, err := ParseQueryInt(req, "column", 0, 0, 10); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for non numeric, got %v", err)
	}
	if _, err := ParseQueryInt(req, "big", 0, 0, 10); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for out of range, got %v", err)
	}
}
