package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/craftmarket-backend/pkg/errors"
)

type noteRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=20"`
	Count  int    `json:"count" validate:"min=1"`
}

func TestDecodeJSONBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"damaged","count":2}`))
	var dest noteRequest
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dest.Reason != "damaged" || dest.Count != 2 {
		t.Fatalf("unexpected dest %+v", dest)
	}
}

func TestDecodeJSONBodyValidation(t *testing.T) {
	cases := map[string]string{
		"unknown field": `{"reason":"damaged","count":1,"extra":true}`,
		"malformed":     `{"reason":`,
		"too short":     `{"reason":"no","count":1}`,
		"missing":       `{"count":1}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var dest noteRequest
			err := DecodeJSONBody(req, &dest)
			if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDecodeJSONBodyUsesJSONFieldNames(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"count":1}`))
	var dest noteRequest
	err := DecodeJSONBody(req, &dest)
	typed := pkgerrors.As(err)
	if typed == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["reason"] != "is required" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}

func withRouteParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestParseUUIDParam(t *testing.T) {
	id := uuid.New()
	req := withRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "orderId", id.String())
	got, err := ParseUUIDParam(req, "orderId")
	if err != nil || got != id {
		t.Fatalf("unexpected result %s %v", got, err)
	}

	bad := withRouteParam(httptest.NewRequest(http.MethodGet, "/", nil), "orderId", "nope")
	if _, err := ParseUUIDParam(bad, "orderId"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := ParseUUIDParam(httptest.NewRequest(http.MethodGet, "/", nil), "orderId"); err == nil {
		t.Fatal("expected missing param error")
	}
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?unread=true&limit=500&seller=bad", nil)
	if v, err := ParseQueryBool(req, "unread"); err != nil || !v {
		t.Fatalf("unexpected bool %v %v", v, err)
	}
	if _, err := ParseQueryBool(httptest.NewRequest(http.MethodGet, "/?unread=maybe", nil), "unread"); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected bool error, got %v", err)
	}
	if _, err := ParseOptionalUUIDQuery(req, "seller"); err == nil {
		t.Fatal("expected uuid error")
	}
	if id, err := ParseOptionalUUIDQuery(req, "missing"); err != nil || id != nil {
		t.Fatalf("expected nil, got %v %v", id, err)
	}
}

func TestSanitizeString(t *testing.T) {
	cases := map[string]struct {
		in   string
		max  int
		want string
	}{
		"trims":         {"  hello world  ", 0, "hello world"},
		"caps runes":    {"héllo wörld", 5, "héllo"},
		"drops control": {"box\x00 dented\x07", 0, "box dented"},
		"keeps newline": {"line one\nline two", 0, "line one\nline two"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if got := SanitizeString(tc.in, tc.max); got != tc.want {
				t.Fatalf("got %q want %q", got, tc.want)
			}
		})
	}
	blank := "   "
	if SanitizeOptional(&blank, 10) != nil {
		t.Fatal("blank optional should collapse to nil")
	}
}

type sanitizedRequest struct {
	Reason string `json:"reason" validate:"required"`
}

func (r *sanitizedRequest) Sanitize() { r.Reason = SanitizeString(r.Reason, 10) }

func TestDecodeJSONBodySanitizesBeforeValidation(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"    "}`))
	var dest sanitizedRequest
	if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("whitespace-only reason should fail required, got %v", err)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"reason":"  arrived broken, box crushed  "}`))
	if err := DecodeJSONBody(req, &dest); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dest.Reason != "arrived br" {
		t.Fatalf("unexpected sanitized reason %q", dest.Reason)
	}
}

func TestDecodeJSONBodyRejectsEmptyAndTrailing(t *testing.T) {
	for name, body := range map[string]string{
		"empty":    "",
		"trailing": `{"reason":"damaged","count":1}{"reason":"again","count":1}`,
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			var dest noteRequest
			if err := DecodeJSONBody(req, &dest); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

type lineList struct {
	Lines []struct {
		Quantity int `json:"quantity" validate:"min=1"`
	} `json:"lines" validate:"dive"`
}

func TestDecodeJSONBodyReportsNestedPaths(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"lines":[{"quantity":1},{"quantity":0}]}`))
	var dest lineList
	typed := pkgerrors.As(DecodeJSONBody(req, &dest))
	if typed == nil {
		t.Fatal("expected typed error")
	}
	details, ok := typed.Details().(map[string]string)
	if !ok || details["lines[1].quantity"] != "must be at least 1" {
		t.Fatalf("unexpected details %#v", typed.Details())
	}
}
