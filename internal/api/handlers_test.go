package api

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/pipeline"
)

func TestGallerySaveAndGet(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/gallery", SaveRequest{SMILES: "c1ccccc1"})
	require.Equal(t, http.StatusCreated, w.Code)

	var saved SaveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, "C6H6", saved.Formula)
	assert.Equal(t, "c1ccccc1", saved.Source)
	assert.False(t, saved.CreatedAt.IsZero())

	w = doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery/"+saved.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var d gallery.Drawing
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &d))
	assert.Equal(t, saved.ID, d.ID)
	require.NotNil(t, d.Snapshot)
	assert.Len(t, d.Snapshot.Vertices, 6)
}

func TestGalleryGetNotFound(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery/no-such-id", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "drawing not found", decodeError(t, w))
}

func TestGallerySaveParseError(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodPost, "/v1/gallery", SaveRequest{SMILES: "C(C"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s.Handler(), http.MethodPost, "/v1/gallery", SaveRequest{})
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeError(t, w), "source is required")
}

func TestGalleryList(t *testing.T) {
	s := testServer(t)

	for _, src := range []string{"CCO", "c1ccccc1", "CC(=O)O"} {
		w := doJSON(t, s.Handler(), http.MethodPost, "/v1/gallery", SaveRequest{SMILES: src})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var list ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 3, list.Count)
	assert.Len(t, list.Drawings, 3)

	w = doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, 2, list.Count)
}

func TestGalleryListEmpty(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"drawings":[],"count":0}`, w.Body.String())
}

func TestGalleryListBadLimit(t *testing.T) {
	s := testServer(t)

	for _, q := range []string{"?limit=abc", "?limit=-1"} {
		w := doJSON(t, s.Handler(), http.MethodGet, "/v1/gallery"+q, nil)
		require.Equal(t, http.StatusBadRequest, w.Code, "query %s", q)
	}
}

func TestGalleryNotConfigured(t *testing.T) {
	logger := log.New(io.Discard)
	s := New(Config{}, pipeline.NewRunner(nil, nil, logger), nil, logger)

	for _, tc := range []struct {
		method, path string
		body         any
	}{
		{http.MethodGet, "/v1/gallery", nil},
		{http.MethodPost, "/v1/gallery", SaveRequest{SMILES: "C"}},
		{http.MethodGet, "/v1/gallery/some-id", nil},
	} {
		w := doJSON(t, s.Handler(), tc.method, tc.path, tc.body)
		require.Equal(t, http.StatusServiceUnavailable, w.Code, "%s %s", tc.method, tc.path)
		assert.Equal(t, "gallery not configured", decodeError(t, w))
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "image/svg+xml", contentTypeFor(pipeline.FormatSVG))
	assert.Equal(t, "image/png", contentTypeFor(pipeline.FormatPNG))
	assert.Equal(t, "application/json", contentTypeFor(pipeline.FormatJSON))
}

func TestCacheHeader(t *testing.T) {
	assert.Equal(t, "MISS", cacheHeader(pipeline.CacheInfo{}))
	assert.Equal(t, "PARTIAL", cacheHeader(pipeline.CacheInfo{LayoutHit: true}))
	assert.Equal(t, "PARTIAL", cacheHeader(pipeline.CacheInfo{RenderHit: true}))
	assert.Equal(t, "HIT", cacheHeader(pipeline.CacheInfo{LayoutHit: true, RenderHit: true}))
}
