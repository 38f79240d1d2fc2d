package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/pipeline"
	"github.com/moldraw/moldraw/pkg/smiles"
)

// maxBodyBytes bounds request bodies; a SMILES string is tiny.
const maxBodyBytes = 1 << 20

// DrawRequest is the body of POST /v1/draw.
type DrawRequest struct {
	SMILES  string  `json:"smiles"`
	Format  string  `json:"format,omitempty"`
	Theme   string  `json:"theme,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
	MaxSize int     `json:"max_size,omitempty"`
	Centers bool    `json:"centers,omitempty"`
	Refresh bool    `json:"refresh,omitempty"`
}

// SaveRequest is the body of POST /v1/gallery.
type SaveRequest struct {
	SMILES string `json:"smiles"`
}

// SaveResponse acknowledges a stored drawing.
type SaveResponse struct {
	ID        string    `json:"id"`
	Formula   string    `json:"formula"`
	Source    string    `json:"source"`
	CreatedAt time.Time `json:"created_at"`
}

// ListResponse is the body of GET /v1/gallery.
type ListResponse struct {
	Drawings []gallery.Summary `json:"drawings"`
	Count    int               `json:"count"`
}

func (s *Server) handleDraw(w http.ResponseWriter, r *http.Request) {
	var req DrawRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	format := req.Format
	if format == "" {
		format = pipeline.FormatSVG
	}

	opts := pipeline.Options{
		Source:      req.SMILES,
		Formats:     []string{format},
		Theme:       req.Theme,
		Scale:       req.Scale,
		MaxSize:     req.MaxSize,
		ShowCenters: req.Centers,
		Refresh:     req.Refresh,
		Logger:      s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.countDraw(format, "invalid")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		if isParseError(err) {
			s.countDraw(format, "parse_error")
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.countDraw(format, "error")
		s.logger.Error("draw failed", "source", req.SMILES, "error", err)
		writeError(w, http.StatusInternalServerError, "drawing failed")
		return
	}
	s.countDraw(format, "ok")

	w.Header().Set("Content-Type", contentTypeFor(format))
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo))
	w.Header().Set("X-Formula", result.Snapshot.Meta.Formula)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

func (s *Server) handleGallerySave(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "gallery not configured")
		return
	}

	var req SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := pipeline.Options{Source: req.SMILES, Logger: s.logger}
	if err := opts.ValidateForLayout(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.runner.Snapshot(r.Context(), opts)
	if err != nil {
		if isParseError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("gallery layout failed", "source", req.SMILES, "error", err)
		writeError(w, http.StatusInternalServerError, "drawing failed")
		return
	}

	d := &gallery.Drawing{Snapshot: snapshot}
	if err := s.store.Save(r.Context(), d); err != nil {
		if errors.Is(err, gallery.ErrExists) {
			writeError(w, http.StatusConflict, "drawing already stored")
			return
		}
		s.logger.Error("gallery save failed", "id", d.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "save failed")
		return
	}

	writeJSON(w, http.StatusCreated, SaveResponse{
		ID:        d.ID,
		Formula:   d.Formula,
		Source:    d.Source,
		CreatedAt: d.CreatedAt,
	})
}

func (s *Server) handleGalleryGet(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "gallery not configured")
		return
	}

	id := chi.URLParam(r, "id")
	d, err := s.store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, gallery.ErrNotFound) {
			writeError(w, http.StatusNotFound, "drawing not found")
			return
		}
		s.logger.Error("gallery get failed", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleGalleryList(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "gallery not configured")
		return
	}

	limit := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		v, err := strconv.Atoi(l)
		if err != nil || v < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = v
	}

	summaries, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("gallery list failed", "error", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if summaries == nil {
		summaries = []gallery.Summary{}
	}

	writeJSON(w, http.StatusOK, ListResponse{Drawings: summaries, Count: len(summaries)})
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid json body")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// isParseError reports whether err came from SMILES parsing, which is the
// caller's fault rather than the server's.
func isParseError(err error) bool {
	for _, sentinel := range []error{
		smiles.ErrUnclosedRing,
		smiles.ErrUnbalancedBranch,
		smiles.ErrBadBracket,
		smiles.ErrUnknownSymbol,
		smiles.ErrRingBondConflict,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func contentTypeFor(format string) string {
	switch format {
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatJSON:
		return "application/json"
	default:
		return "image/svg+xml"
	}
}

func cacheHeader(info pipeline.CacheInfo) string {
	if info.LayoutHit && info.RenderHit {
		return "HIT"
	}
	if info.LayoutHit || info.RenderHit {
		return "PARTIAL"
	}
	return "MISS"
}

func (s *Server) countDraw(format, status string) {
	if s.metrics != nil {
		s.metrics.DrawObserved(format, status)
	}
}
