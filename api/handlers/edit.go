package handlers

import (
	"net/http"

	"github.com/aria-lang/msaflow-go/pkg/msaflow"
)

// EditRequest applies a list of steps to a stored table.
type EditRequest struct {
	Steps []msaflow.Step `json:"steps"`
	// SaveAs names the result; empty overwrites the source table.
	SaveAs string `json:"save_as"`
}

// EditResponse describes the stored result and the rows its filters removed.
type EditResponse struct {
	TableSummary
	Report *msaflow.FilterReport `json:"report"`
}

// EditTable handles edit pipelines.
func (h *Handler) EditTable(w http.ResponseWriter, r *http.Request) {
	name, t, ok := h.table(w, r)
	if !ok {
		return
	}
	var req EditRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Steps) == 0 {
		writeError(w, http.StatusBadRequest, "no steps given")
		return
	}

	out, report, err := msaflow.Edit(r.Context(), t, req.Steps, msaflow.EditOptions{HHFilter: h.HHFilter})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	saved := h.store(req.SaveAs, name, out)
	h.Logger.InfoContext(r.Context(), "table edited",
		"source", name, "saved_as", saved, "steps", len(req.Steps),
		"depth_before", t.Len(), "depth_after", out.Len(), "keep_rate", report.KeepRate())
	writeJSON(w, http.StatusOK, EditResponse{TableSummary: summarize(saved, out), Report: report})
}
