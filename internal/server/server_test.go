package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sbgntools/sbgnmap/pkg/pipeline"
	"github.com/sbgntools/sbgnmap/pkg/store"
)

const pdDoc = `<?xml version="1.0" encoding="UTF-8"?>
<sbgn xmlns="http://sbgn.org/libsbgn/0.2">
  <map id="map1" language="process description">
    <glyph id="g1" class="simple chemical">
      <label text="ATP"/>
      <bbox x="10" y="10" w="80" h="40"/>
    </glyph>
  </map>
</sbgn>`

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	srv := New(pipeline.NewRunner(nil, nil), store.NewMemoryStore(), nil)
	return srv.Router()
}

func doRequest(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestRenderDOT(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodPost, "/render?format=dot", pdDoc)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/vnd.graphviz" {
		t.Errorf("content type = %q", ct)
	}
	if rec.Header().Get("X-Content-Hash") == "" {
		t.Error("content hash header should be set")
	}
	if got := rec.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("cache header = %q, want MISS", got)
	}
	if !strings.Contains(rec.Body.String(), "digraph sbgn") {
		t.Errorf("body should be DOT, got %s", rec.Body.String())
	}
}

func TestRenderBadInput(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/render?format=dot", "this is not xml <")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad document: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/render?format=gif", pdDoc)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad format: status = %d, want 400", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/render?format=dot&scale=huge", pdDoc)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad scale: status = %d, want 400", rec.Code)
	}
}

func TestMapLifecycle(t *testing.T) {
	h := newTestServer(t)

	// Create.
	rec := doRequest(t, h, http.MethodPost, "/maps?name=glycolysis", pdDoc)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var meta struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Flavor string `json:"flavor"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.ID == "" || meta.Name != "glycolysis" || meta.Flavor != "process description" {
		t.Fatalf("meta = %+v", meta)
	}

	// List.
	rec = doRequest(t, h, http.MethodGet, "/maps", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0]["id"] != meta.ID {
		t.Errorf("list = %v", list)
	}

	// Fetch bytes.
	rec = doRequest(t, h, http.MethodGet, "/maps/"+meta.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status = %d", rec.Code)
	}
	if rec.Body.String() != pdDoc {
		t.Error("stored document should come back byte-identical")
	}
	if got := rec.Header().Get("X-Map-Name"); got != "glycolysis" {
		t.Errorf("name header = %q", got)
	}

	// Render stored.
	rec = doRequest(t, h, http.MethodGet, "/maps/"+meta.ID+"/render?format=dot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("render stored: status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"ATP"`) {
		t.Error("rendered output should mention the pool")
	}

	// Delete, then the document is gone.
	rec = doRequest(t, h, http.MethodDelete, "/maps/"+meta.ID, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: status = %d", rec.Code)
	}
	rec = doRequest(t, h, http.MethodGet, "/maps/"+meta.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", rec.Code)
	}
	rec = doRequest(t, h, http.MethodDelete, "/maps/"+meta.ID, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", rec.Code)
	}
}

func TestCreateMapRejectsBrokenUpload(t *testing.T) {
	h := newTestServer(t)

	rec := doRequest(t, h, http.MethodPost, "/maps", "<sbgn><map language=\"klingon\"/></sbgn>")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Error("error body should carry a message")
	}

	// Nothing was stored.
	rec = doRequest(t, h, http.MethodGet, "/maps", "")
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("list = %v, want empty", list)
	}
}

func TestCreateMapDefaultName(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodPost, "/maps", pdDoc)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	var meta struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &meta); err != nil {
		t.Fatalf("decode meta: %v", err)
	}
	if meta.Name != "untitled" {
		t.Errorf("name = %q, want untitled", meta.Name)
	}
}

func TestRenderMissingStoredMap(t *testing.T) {
	h := newTestServer(t)
	rec := doRequest(t, h, http.MethodGet, "/maps/ghost/render?format=dot", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
