// Package handlers implements the MSAFlow REST API on top of a table
// registry.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aria-lang/msaflow-go/internal/config"
	"github.com/aria-lang/msaflow-go/internal/msa"
	"github.com/aria-lang/msaflow-go/internal/registry"
	"github.com/aria-lang/msaflow-go/internal/remote"
)

// Handler serves the table endpoints.
type Handler struct {
	Store    registry.Store
	Cluster  config.ClusterConfig
	HHFilter *remote.HHFilter
	Logger   *slog.Logger
}

// New builds a Handler from the loaded configuration.
func New(store registry.Store, cfg *config.Config, logger *slog.Logger) *Handler {
	return &Handler{
		Store:    store,
		Cluster:  cfg.Cluster,
		HHFilter: &remote.HHFilter{Binary: cfg.HHFilter.Binary, Params: cfg.HHFilter.Params},
		Logger:   logger,
	}
}

// Routes mounts the API under r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/tables", func(r chi.Router) {
		r.Get("/", h.ListTables)
		r.Post("/", h.UploadTable)

		r.Route("/{name}", func(r chi.Router) {
			r.Get("/", h.GetTable)
			r.Delete("/", h.DeleteTable)
			r.Get("/stats", h.TableStats)
			r.Post("/edit", h.EditTable)
			r.Post("/split", h.SplitTable)

			r.Route("/cluster", func(r chi.Router) {
				r.Post("/dbscan", h.DBSCAN)
				r.Post("/kmeans", h.KMeans)
				r.Post("/eps", h.GridSearchEps)
			})
		})
	})
	r.Post("/combine", h.Combine)
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	var (
		insufficient *msa.InsufficientDataError
		schema       *msa.SchemaError
		invalid      *msa.InvalidParameterError
		shape        *msa.ShapeMismatchError
		service      *remote.RemoteServiceError
		tooLarge     *http.MaxBytesError
	)
	switch {
	case errors.As(err, &insufficient):
		return http.StatusUnprocessableEntity
	case errors.As(err, &schema), errors.As(err, &invalid), errors.As(err, &shape):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &service):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	writeError(w, status, err.Error())
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// table looks up the {name} URL parameter and writes a 404 when absent.
func (h *Handler) table(w http.ResponseWriter, r *http.Request) (string, *msa.Table, bool) {
	name := chi.URLParam(r, "name")
	t, ok := h.Store.Get(name)
	if !ok {
		writeError(w, http.StatusNotFound, "table not found: "+name)
		return name, nil, false
	}
	return name, t, true
}

// TableSummary describes a stored table without its rows.
type TableSummary struct {
	Name    string   `json:"name"`
	Depth   int      `json:"depth"`
	Length  int      `json:"length"`
	Columns []string `json:"columns"`
}

func summarize(name string, t *msa.Table) TableSummary {
	return TableSummary{
		Name:    name,
		Depth:   t.Len(),
		Length:  len(t.Query()),
		Columns: t.Columns(),
	}
}

// RowResponse is one row of a table in JSON form. NaN values are null.
type RowResponse struct {
	Header   string                 `json:"header"`
	Sequence string                 `json:"sequence"`
	Values   map[string]interface{} `json:"values,omitempty"`
}

// TableResponse is a full table in JSON form.
type TableResponse struct {
	TableSummary
	Rows []RowResponse `json:"rows"`
}

func tableResponse(name string, t *msa.Table) TableResponse {
	rows := make([]RowResponse, t.Len())
	for i := range rows {
		row := t.Row(i)
		rows[i] = RowResponse{Header: row.Header, Sequence: row.Sequence}
		if len(row.Numeric)+len(row.Text) == 0 {
			continue
		}
		rows[i].Values = make(map[string]interface{}, len(row.Numeric)+len(row.Text))
		for k, v := range row.Numeric {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				rows[i].Values[k] = nil
			} else {
				rows[i].Values[k] = v
			}
		}
		for k, v := range row.Text {
			rows[i].Values[k] = v
		}
	}
	return TableResponse{TableSummary: summarize(name, t), Rows: rows}
}

// store saves t under saveAs, or under fallback when saveAs is empty.
func (h *Handler) store(saveAs, fallback string, t *msa.Table) string {
	name := saveAs
	if name == "" {
		name = fallback
	}
	h.Store.Put(name, t)
	return name
}
