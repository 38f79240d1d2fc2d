package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldraw/moldraw/pkg/cache"
	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/layout"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	logger := log.New(io.Discard)
	runner := pipeline.NewRunner(nil, nil, logger)
	return New(Config{}, runner, gallery.NewMemory(), logger)
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestHealthz(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestDrawSVG(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", DrawRequest{SMILES: "c1ccccc1"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Equal(t, "C6H6", w.Header().Get("X-Formula"))
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Contains(t, w.Body.String(), "<svg")
}

func TestDrawPNG(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", DrawRequest{SMILES: "CCO", Format: "png"})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	header := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), header))
}

func TestDrawJSON(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", DrawRequest{SMILES: "c1ccccc1", Format: "json"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var snapshot layout.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snapshot))
	assert.Len(t, snapshot.Vertices, 6)
}

func TestDrawParseError(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", DrawRequest{SMILES: "C1CC"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "position")
}

func TestDrawInvalidOptions(t *testing.T) {
	s := testServer(t)

	tests := []struct {
		name string
		req  DrawRequest
		want string
	}{
		{"missing smiles", DrawRequest{}, "source is required"},
		{"bad format", DrawRequest{SMILES: "C", Format: "pdf"}, "invalid format"},
		{"bad theme", DrawRequest{SMILES: "C", Theme: "neon"}, "unknown theme"},
		{"bad scale", DrawRequest{SMILES: "C", Scale: -1}, "scale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", tt.req)
			require.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, decodeError(t, w), tt.want)
		})
	}
}

func TestDrawRejectsBadBody(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/draw", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid json body", decodeError(t, w))

	// Unknown fields are rejected, catching misspelled options.
	w = doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", map[string]string{"smile": "C"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDrawCacheHit(t *testing.T) {
	fileCache, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.New(io.Discard)
	s := New(Config{}, pipeline.NewRunner(fileCache, nil, logger), gallery.NewMemory(), logger)

	req := DrawRequest{SMILES: "CC(=O)O"}
	first := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", req)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := doJSON(t, s.Handler(), http.MethodPost, "/v1/draw", req)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestMetricsEndpoint(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP")
}
