package imagecrop

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type ratioPayload struct {
	Data []struct {
		Key     string   `json:"key"`
		Ratio   *float64 `json:"ratio"`
		Label   string   `json:"label"`
		Checked bool     `json:"checked"`
	} `json:"data"`
}

func decodeRatios(t *testing.T, rec *httptest.ResponseRecorder) ratioPayload {
	t.Helper()
	var payload ratioPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return payload
}

func payloadKeys(p ratioPayload) []string {
	keys := make([]string, 0, len(p.Data))
	for _, item := range p.Data {
		keys = append(keys, item.Key)
	}
	return keys
}

func TestHandler_ServesCanonicalRatios(t *testing.T) {
	handler := NewHandler(CanonicalAspectRatios(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/image-crop/aspect-ratios", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Fatalf("unexpected content type %q", ct)
	}
	payload := decodeRatios(t, rec)
	want := []string{"16_9", "4_3", "1", "2_3", "nan"}
	if diff := cmp.Diff(want, payloadKeys(payload)); diff != "" {
		t.Fatalf("keys mismatch (-want +got):\n%s", diff)
	}
	last := payload.Data[4]
	if last.Ratio != nil || !last.Checked || last.Label != "aspect_ratio.nan" {
		t.Fatalf("unexpected unconstrained entry: %#v", last)
	}
	if payload.Data[0].Ratio == nil || *payload.Data[0].Ratio != 1.78 {
		t.Fatalf("unexpected 16_9 ratio: %#v", payload.Data[0])
	}
}

func TestHandler_FiltersByKey(t *testing.T) {
	handler := NewHandler(CanonicalAspectRatios(nil))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?key=nan&key=4_3&key=missing", nil))

	if diff := cmp.Diff([]string{"4_3", "nan"}, payloadKeys(decodeRatios(t, rec))); diff != "" {
		t.Fatalf("filter mismatch (-want +got):\n%s", diff)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/?key=missing", nil))
	if body := rec.Body.String(); body != "{\"data\":[]}\n" {
		t.Fatalf("expected empty data array, got %q", body)
	}
}

func TestHandler_CustomKeyParamAndSource(t *testing.T) {
	source := func(r *http.Request) AspectRatios {
		if r.Header.Get("Accept-Language") == "fr" {
			ratios := CanonicalAspectRatios(nil)
			ratios[0].Value.Label = "Paysage"
			return ratios
		}
		return CanonicalAspectRatios(nil)
	}
	handler := NewHandler(nil, WithKeyParam("only"), WithRatioSource(source))

	req := httptest.NewRequest(http.MethodGet, "/?only=16_9", nil)
	req.Header.Set("Accept-Language", "fr")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	payload := decodeRatios(t, rec)
	if len(payload.Data) != 1 || payload.Data[0].Label != "Paysage" {
		t.Fatalf("unexpected payload: %#v", payload)
	}
}

func TestHandler_Methods(t *testing.T) {
	handler := NewHandler(CanonicalAspectRatios(nil))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != "GET, HEAD" {
		t.Fatalf("unexpected Allow header %q", allow)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/", nil))
	if rec.Code != http.StatusOK || rec.Body.Len() != 0 {
		t.Fatalf("expected empty 200 for HEAD, got %d (%d bytes)", rec.Code, rec.Body.Len())
	}
}

func TestHandler_Guard(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "plain error", err: errors.New("nope"), want: http.StatusForbidden},
		{name: "status error", err: StatusError{Code: http.StatusUnauthorized}, want: http.StatusUnauthorized},
		{name: "wrapped status", err: StatusError{Code: http.StatusTooManyRequests, Err: errors.New("slow down")}, want: http.StatusTooManyRequests},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(CanonicalAspectRatios(nil), WithGuard(func(*http.Request) error { return tc.err }))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			if rec.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, rec.Code)
			}
		})
	}
}

func TestHandler_FixedRatiosAreCopied(t *testing.T) {
	ratios := CanonicalAspectRatios(nil)
	handler := NewHandler(ratios)
	ratios[0].Key = "mutated"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if keys := payloadKeys(decodeRatios(t, rec)); keys[0] != "16_9" {
		t.Fatalf("handler should not observe caller mutation, got %v", keys)
	}
}
