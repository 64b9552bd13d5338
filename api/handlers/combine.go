package handlers

import (
	"fmt"
	"net/http"

	"github.com/aria-lang/msaflow-go/internal/combine"
)

// PartRequest names a stored table and how it joins the result.
type PartRequest struct {
	Name      string         `json:"name"`
	Columns   *combine.Range `json:"columns"`
	Rows      *combine.Range `json:"rows"`
	Direction string         `json:"direction"`
}

// CombineRequest joins stored tables into a new one.
type CombineRequest struct {
	Parts []PartRequest `json:"parts"`
	// Name of the result; empty picks the next free "combined" name.
	Name        string `json:"name"`
	StrictDepth bool   `json:"strict_depth"`
}

// Combine handles table combination.
func (h *Handler) Combine(w http.ResponseWriter, r *http.Request) {
	var req CombineRequest
	if !decode(w, r, &req) {
		return
	}

	parts := make([]combine.Part, len(req.Parts))
	for i, p := range req.Parts {
		t, ok := h.Store.Get(p.Name)
		if !ok {
			writeError(w, http.StatusNotFound, fmt.Sprintf("part %d: table not found: %s", i, p.Name))
			return
		}
		dir, err := combine.ParseDirection(p.Direction)
		if err != nil {
			h.fail(w, r, fmt.Errorf("part %d: %w", i, err))
			return
		}
		parts[i] = combine.Part{Table: t, Columns: p.Columns, Rows: p.Rows, Direction: dir}
	}

	out, err := combine.Combine(parts, combine.Options{StrictDepth: req.StrictDepth})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	var name string
	if req.Name == "" {
		name = h.Store.PutCombined(out)
	} else {
		name = h.store(req.Name, "", out)
	}
	h.Logger.InfoContext(r.Context(), "tables combined", "name", name, "parts", len(parts), "depth", out.Len())
	writeJSON(w, http.StatusCreated, summarize(name, out))
}
