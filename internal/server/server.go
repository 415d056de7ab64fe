// Package server exposes the map pipeline and store over HTTP.
//
// The API is a small JSON/bytes surface: POST a document to /render for
// a diagram, and manage stored documents under /maps. Stored documents
// keep their uploaded wire form; rendering always goes through the same
// pipeline the CLI uses.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	apperrors "github.com/sbgntools/sbgnmap/pkg/errors"
	"github.com/sbgntools/sbgnmap/pkg/pipeline"
	"github.com/sbgntools/sbgnmap/pkg/store"
)

// maxBodySize bounds uploaded documents. SBGN-ML maps are small; a
// multi-megabyte body is a client error, not a bigger map.
const maxBodySize = 8 << 20

// contentTypes by render format.
var contentTypes = map[string]string{
	pipeline.FormatDOT: "text/vnd.graphviz",
	pipeline.FormatSVG: "image/svg+xml",
	pipeline.FormatPNG: "image/png",
	pipeline.FormatPDF: "application/pdf",
}

// Server handles HTTP requests against the pipeline and the store.
type Server struct {
	Runner *pipeline.Runner
	Store  store.Store
	Logger *log.Logger
}

// New creates a server. A nil store falls back to an in-memory one and
// a nil logger to the default.
func New(runner *pipeline.Runner, st store.Store, logger *log.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{Runner: runner, Store: st, Logger: logger}
}

// Router constructs the route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Post("/render", s.handleRender)

	r.Route("/maps", func(mr chi.Router) {
		mr.Get("/", s.handleListMaps)
		mr.Post("/", s.handleCreateMap)

		mr.Route("/{mapID}", func(item chi.Router) {
			item.Get("/", s.handleGetMap)
			item.Delete("/", s.handleDeleteMap)
			item.Get("/render", s.handleRenderStored)
		})
	})

	return r
}

// logRequests logs each request with its status and duration.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.Logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleRender renders a document posted in the request body. Query
// parameters select format, tidy passes, and scale.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	input, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}
	s.renderAndWrite(w, r, input)
}

// handleRenderStored renders a previously stored document.
func (s *Server) handleRenderStored(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Store.Get(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	s.renderAndWrite(w, r, doc.Data)
}

func (s *Server) renderAndWrite(w http.ResponseWriter, r *http.Request, input []byte) {
	opts, err := renderOptions(r, input)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.Runner.Execute(r.Context(), opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch apperrors.GetCode(err) {
		case apperrors.ErrCodeInvalidSBGNML, apperrors.ErrCodeInvalidLanguage,
			apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidInput:
			status = http.StatusBadRequest
		}
		s.writeError(w, status, err)
		return
	}

	format := opts.Formats[0]
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Content-Hash", result.ContentHash)
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.RenderHit))
	w.WriteHeader(http.StatusOK)
	w.Write(result.Artifacts[format])
}

// renderOptions builds pipeline options from the request's query string.
func renderOptions(r *http.Request, input []byte) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Input:     input,
		Source:    r.URL.Path,
		Tidy:      q.Get("tidy") == "true",
		ClipArcs:  q.Get("clip-arcs") == "true",
		Refresh:   q.Get("refresh") == "true",
	}
	if f := q.Get("format"); f != "" {
		opts.Formats = []string{f}
	}
	if sc := q.Get("scale"); sc != "" {
		v, err := strconv.ParseFloat(sc, 64)
		if err != nil {
			return opts, apperrors.New(apperrors.ErrCodeInvalidInput, "invalid scale %q", sc)
		}
		opts.Scale = v
	}
	return opts, nil
}

// mapMeta is the JSON shape of a stored document's metadata.
type mapMeta struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Flavor  string    `json:"flavor"`
	Created time.Time `json:"created"`
}

func metaOf(doc store.Document) mapMeta {
	return mapMeta{ID: doc.ID, Name: doc.Name, Flavor: doc.Flavor, Created: doc.Created}
}

func (s *Server) handleListMaps(w http.ResponseWriter, r *http.Request) {
	docs, err := s.Store.List(r.Context())
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	out := make([]mapMeta, len(docs))
	for i, doc := range docs {
		out[i] = metaOf(doc)
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateMap stores an uploaded document. The document is read
// through the pipeline first so broken uploads are rejected and the
// flavor is recorded from the parsed map.
func (s *Server) handleCreateMap(w http.ResponseWriter, r *http.Request) {
	input, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	m, err := s.Runner.Read(r.Context(), input, "upload")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		name = "untitled"
	}
	doc := store.Document{
		ID:      uuid.NewString(),
		Name:    name,
		Flavor:  string(m.Flavor),
		Data:    input,
		Created: time.Now().UTC(),
	}
	if err := s.Store.Put(r.Context(), doc); err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, metaOf(doc))
}

func (s *Server) handleGetMap(w http.ResponseWriter, r *http.Request) {
	doc, err := s.Store.Get(r.Context(), chi.URLParam(r, "mapID"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Map-Name", doc.Name)
	w.Header().Set("X-Map-Flavor", doc.Flavor)
	w.WriteHeader(http.StatusOK)
	w.Write(doc.Data)
}

func (s *Server) handleDeleteMap(w http.ResponseWriter, r *http.Request) {
	if err := s.Store.Delete(r.Context(), chi.URLParam(r, "mapID")); err != nil {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, err)
		return
	}
	s.writeError(w, http.StatusInternalServerError, err)
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, map[string]string{"error": apperrors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func cacheHeader(hit bool) string {
	if hit {
		return "HIT"
	}
	return "MISS"
}
