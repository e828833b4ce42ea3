package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matzehuels/flowcore/pkg/buildinfo"
	"github.com/matzehuels/flowcore/pkg/config"
	"github.com/matzehuels/flowcore/pkg/edge"
	"github.com/matzehuels/flowcore/pkg/errors"
	"github.com/matzehuels/flowcore/pkg/geom"
	"github.com/matzehuels/flowcore/pkg/input"
	"github.com/matzehuels/flowcore/pkg/store"
)

func newTestServer(t *testing.T) (*server, *httptest.Server) {
	t.Helper()
	srv, err := newServer(testScene(true), config.Default(), quietLogger())
	if err != nil {
		t.Fatalf("newServer() error = %v", err)
	}
	ts := httptest.NewServer(srv.routes())
	t.Cleanup(func() {
		ts.Close()
		srv.close()
	})
	return srv, ts
}

func do(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s response: %v", url, err)
		}
	}
	return resp.StatusCode
}

func TestServeHealth(t *testing.T) {
	_, ts := newTestServer(t)
	var info buildinfo.Info
	if code := do(t, http.MethodGet, ts.URL+"/healthz", nil, &info); code != http.StatusOK {
		t.Fatalf("status = %d, want 200", code)
	}
	if info.Version == "" || info.Commit == "" {
		t.Errorf("healthz = %+v, want a version stamp", info)
	}
}

func TestServeEvents(t *testing.T) {
	_, ts := newTestServer(t)

	var res eventsResponse
	if code := do(t, http.MethodPost, ts.URL+"/events", dragEvents, &res); code != http.StatusOK {
		t.Fatalf("POST /events status = %d", code)
	}
	if res.Gesture != "idle" || res.Stats.Events != 4 {
		t.Errorf("response = %+v", res)
	}
	if len(res.Selected) != 1 || res.Selected[0] != "a" {
		t.Errorf("Selected = %v, want [a]", res.Selected)
	}

	var snap store.Snapshot[sceneData]
	if code := do(t, http.MethodGet, ts.URL+"/snapshot", nil, &snap); code != http.StatusOK {
		t.Fatalf("GET /snapshot status = %d", code)
	}
	if got := snap.Placements["a"].Absolute; got != (geom.Point{X: 150, Y: 150}) {
		t.Errorf("a placement = %v, want (150,150)", got)
	}
}

func TestServeEdgePath(t *testing.T) {
	_, ts := newTestServer(t)

	var p edge.Path
	if code := do(t, http.MethodGet, ts.URL+"/edges/ab/path", nil, &p); code != http.StatusOK {
		t.Fatalf("GET /edges/ab/path status = %d", code)
	}
	want := []geom.Point{{X: 185, Y: 120}, {X: 295, Y: 120}}
	if len(p.Points) != 2 || p.Points[0] != want[0] || p.Points[1] != want[1] {
		t.Errorf("Points = %v, want %v", p.Points, want)
	}

	var e errorResponse
	if code := do(t, http.MethodGet, ts.URL+"/edges/zz/path", nil, &e); code != http.StatusNotFound {
		t.Errorf("unknown edge status = %d, want 404", code)
	}
	if e.Code != errors.ErrCodeNotFound {
		t.Errorf("error code = %v", e.Code)
	}
}

func TestServeFit(t *testing.T) {
	_, ts := newTestServer(t)

	var vp geom.Viewport
	if code := do(t, http.MethodPost, ts.URL+"/fit", map[string]any{"nodes": []string{"b"}, "padding": 0}, &vp); code != http.StatusOK {
		t.Fatalf("POST /fit status = %d", code)
	}
	// b is 80x40 centered at (340,120); the zoom is capped at 2.
	want := geom.Viewport{X: 400 - 340*2, Y: 300 - 120*2, Zoom: 2}
	if vp != want {
		t.Errorf("viewport = %+v, want %+v", vp, want)
	}

	if code := do(t, http.MethodPost, ts.URL+"/fit", nil, &vp); code != http.StatusOK {
		t.Errorf("POST /fit without body status = %d", code)
	}

	var e errorResponse
	if code := do(t, http.MethodPost, ts.URL+"/events", map[string]any{"kind": 1}, &e); code != http.StatusBadRequest {
		t.Errorf("malformed events status = %d, want 400", code)
	}
}

func TestServeReload(t *testing.T) {
	srv, ts := newTestServer(t)
	do(t, http.MethodPost, ts.URL+"/events", []input.Event{input.Down(120, 120), input.Up(120, 120)}, nil)

	cfg := config.Default()
	cfg.Viewport.MaxZoom = 4
	srv.reload(cfg)

	var vp geom.Viewport
	do(t, http.MethodPost, ts.URL+"/fit", map[string]any{"nodes": []string{"b"}, "padding": 0}, &vp)
	if vp.Zoom != 4 {
		t.Errorf("zoom after reload = %v, want the new cap 4", vp.Zoom)
	}

	var snap store.Snapshot[sceneData]
	do(t, http.MethodGet, ts.URL+"/snapshot", nil, &snap)
	if len(snap.SelectedNodes) != 1 || len(snap.Edges) != 1 {
		t.Errorf("state lost on reload: selected %v, %d edges", snap.SelectedNodes, len(snap.Edges))
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeNotFound, http.StatusNotFound},
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeMissingHandle, http.StatusUnprocessableEntity},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
