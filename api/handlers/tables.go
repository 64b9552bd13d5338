package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/msaio"
	"github.com/aria-lang/msaflow-go/internal/registry"
	"github.com/aria-lang/msaflow-go/internal/remote"
	"github.com/aria-lang/msaflow-go/internal/stats"
)

// UploadRequest creates a table either from file content or from explicit
// sequences.
type UploadRequest struct {
	Name string `json:"name"`
	// Format of Content: a3m (default), fasta or csv.
	Format    string   `json:"format"`
	Content   string   `json:"content"`
	Headers   []string `json:"headers"`
	Sequences []string `json:"sequences"`
	// ParseHits splits aligner hit headers into an id and score columns.
	ParseHits bool `json:"parse_hits"`
}

// ListResponse lists stored tables.
type ListResponse struct {
	Tables []TableSummary `json:"tables"`
}

// UploadTable handles table creation. With a ?format= query the body is
// the raw file and ?name= names it; otherwise the body is an UploadRequest.
func (h *Handler) UploadTable(w http.ResponseWriter, r *http.Request) {
	var req UploadRequest
	if q := r.URL.Query(); q.Has("format") {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		req = UploadRequest{
			Name:      q.Get("name"),
			Format:    q.Get("format"),
			Content:   string(body),
			ParseHits: q.Get("parse_hits") == "true",
		}
	} else if !decode(w, r, &req) {
		return
	}

	var (
		t   *msa.Table
		err error
	)
	switch {
	case req.Content != "" && len(req.Sequences) > 0:
		writeError(w, http.StatusBadRequest, "give either content or sequences, not both")
		return
	case req.Content != "":
		format := msaio.A3M
		if req.Format != "" {
			if format, err = msaio.ParseFormat(req.Format); err != nil {
				h.fail(w, r, err)
				return
			}
		}
		t, err = msaio.Read(strings.NewReader(req.Content), format)
	case len(req.Sequences) > 0:
		t, err = msa.New(req.Headers, req.Sequences)
	default:
		h.fail(w, r, msa.MissingSequences())
		return
	}
	if err == nil && req.ParseHits {
		t, err = remote.ParseHitHeaders(t)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	name := req.Name
	if name == "" {
		name = registry.NewID()
	}
	h.Store.Put(name, t)
	h.Logger.InfoContext(r.Context(), "table stored", "name", name, "depth", t.Len())
	writeJSON(w, http.StatusCreated, summarize(name, t))
}

// ListTables handles table listing.
func (h *Handler) ListTables(w http.ResponseWriter, r *http.Request) {
	names := h.Store.Names()
	resp := ListResponse{Tables: make([]TableSummary, 0, len(names))}
	for _, name := range names {
		if t, ok := h.Store.Get(name); ok {
			resp.Tables = append(resp.Tables, summarize(name, t))
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetTable returns a table as JSON, or as A3M or CSV text with ?format=.
func (h *Handler) GetTable(w http.ResponseWriter, r *http.Request) {
	name, t, ok := h.table(w, r)
	if !ok {
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, tableResponse(name, t))
		return
	}
	f, err := msaio.ParseFormat(format)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if f == msaio.CSV {
		w.Header().Set("Content-Type", "text/csv")
	} else {
		w.Header().Set("Content-Type", "text/plain")
	}
	if err := msaio.Write(w, t, f); err != nil {
		h.Logger.ErrorContext(r.Context(), "writing table", "name", name, "err", err)
	}
}

// DeleteTable handles table removal.
func (h *Handler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !h.Store.Delete(name) {
		writeError(w, http.StatusNotFound, "table not found: "+name)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// TableStats handles summary statistics requests.
func (h *Handler) TableStats(w http.ResponseWriter, r *http.Request) {
	_, t, ok := h.table(w, r)
	if !ok {
		return
	}
	s, err := stats.FromTable(t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
