package ops

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeCatalog struct {
	degraded bool
	cities   int
}

func (f fakeCatalog) Degraded() bool { return f.degraded }
func (f fakeCatalog) Len() int       { return f.cities }

type fakeSessions int

func (f fakeSessions) Len() int { return int(f) }

func TestHealthz(t *testing.T) {
	srv := httptest.NewServer(NewRouter(fakeCatalog{}, fakeSessions(0)))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestReadyz(t *testing.T) {
	cases := []struct {
		name     string
		catalog  fakeCatalog
		wantCode int
		want     Status
	}{
		{"ready", fakeCatalog{cities: 3}, http.StatusOK, Status{Status: "ready", Cities: 3, Sessions: 2}},
		{"degraded", fakeCatalog{degraded: true}, http.StatusServiceUnavailable, Status{Status: "degraded", Degraded: true, Sessions: 2}},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		NewRouter(tc.catalog, fakeSessions(2)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
		if rec.Code != tc.wantCode {
			t.Fatalf("%s: status = %d, want %d", tc.name, rec.Code, tc.wantCode)
		}
		var got Status
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: body = %+v, want %+v", tc.name, got, tc.want)
		}
	}
}

func TestUnknownPath(t *testing.T) {
	rec := httptest.NewRecorder()
	NewRouter(nil, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
