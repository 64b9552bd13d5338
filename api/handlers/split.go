package handlers

import (
	"net/http"

	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

// SplitRequest stores each cluster of a clustered table as its own table.
type SplitRequest struct {
	// Kind is cluster, kmeans_cluster or selected_cluster; empty is cluster.
	Kind string `json:"kind"`
	// IDs restricts the split to these clusters.
	IDs []int `json:"ids"`
}

// SplitResponse lists the stored parts in cluster id order.
type SplitResponse struct {
	Tables []TableSummary `json:"tables"`
}

// SplitTable handles cluster splits. Noise rows are not stored.
func (h *Handler) SplitTable(w http.ResponseWriter, r *http.Request) {
	name, t, ok := h.table(w, r)
	if !ok {
		return
	}
	var req SplitRequest
	if !decode(w, r, &req) {
		return
	}
	kind, err := msaflow.ParseSplitKind(req.Kind)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	names, err := msaflow.SaveClusters(h.Store, name, kind, t, req.IDs...)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := SplitResponse{Tables: make([]TableSummary, 0, len(names))}
	for _, n := range names {
		if part, ok := h.Store.Get(n); ok {
			resp.Tables = append(resp.Tables, summarize(n, part))
		}
	}
	h.Logger.InfoContext(r.Context(), "table split", "source", name, "kind", kind, "parts", len(names))
	writeJSON(w, http.StatusCreated, resp)
}
