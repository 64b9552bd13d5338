package handlers

import (
	"net/http"

	"github.com/aria-lang/msaflow-go/internal/cluster"
	"github.com/aria-lang/msaflow-go/internal/encode"
)

// DBSCANRequest configures a DBSCAN run. Zero values fall back to the
// server's cluster configuration; a zero eps triggers a grid search.
type DBSCANRequest struct {
	Eps         float64  `json:"eps"`
	MinSamples  int      `json:"min_samples"`
	Columns     []string `json:"columns"`
	Consensus   bool     `json:"consensus"`
	Levenshtein bool     `json:"levenshtein"`
	SaveAs      string   `json:"save_as"`
}

// KMeansRequest configures a k-means run.
type KMeansRequest struct {
	K        int      `json:"k"`
	Encoding string   `json:"encoding"`
	Columns  []string `json:"columns"`
	MaxIter  int      `json:"max_iter"`
	Seed     int64    `json:"seed"`
	SaveAs   string   `json:"save_as"`
}

// GridSearchRequest overrides parts of the configured eps search.
type GridSearchRequest struct {
	MinEps          *float64 `json:"min_eps"`
	MaxEps          *float64 `json:"max_eps"`
	Step            *float64 `json:"step"`
	MinSamples      int      `json:"min_samples"`
	// DesiredClusters is the target count; omitted asks for the most.
	DesiredClusters *int     `json:"desired_clusters"`
	Columns         []string `json:"columns"`
}

// ClusterResponse reports the outcome of a clustering run.
type ClusterResponse struct {
	Name     string      `json:"name"`
	Eps      float64     `json:"eps,omitempty"`
	Clusters int         `json:"clusters"`
	Noise    int         `json:"noise"`
	Sizes    map[int]int `json:"sizes"`
}

// DBSCAN handles density clustering.
func (h *Handler) DBSCAN(w http.ResponseWriter, r *http.Request) {
	name, t, ok := h.table(w, r)
	if !ok {
		return
	}
	var req DBSCANRequest
	if !decode(w, r, &req) {
		return
	}

	search := h.Cluster.GridSearch()
	search.Columns = req.Columns
	d := &cluster.DBSCAN{
		Eps:         req.Eps,
		MinSamples:  req.MinSamples,
		Columns:     req.Columns,
		Consensus:   req.Consensus,
		Levenshtein: req.Levenshtein,
		Search:      &search,
	}
	if d.MinSamples == 0 {
		d.MinSamples = h.Cluster.MinSamples
	}

	res, err := d.Run(r.Context(), t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	saved := h.store(req.SaveAs, name, res.Table)
	h.Logger.InfoContext(r.Context(), "dbscan finished",
		"name", saved, "eps", res.Eps, "clusters", res.Clusters, "noise", res.Noise)
	writeJSON(w, http.StatusOK, ClusterResponse{
		Name:     saved,
		Eps:      res.Eps,
		Clusters: res.Clusters,
		Noise:    res.Noise,
		Sizes:    cluster.Sizes(res.Labels),
	})
}

// KMeans handles centroid clustering.
func (h *Handler) KMeans(w http.ResponseWriter, r *http.Request) {
	name, t, ok := h.table(w, r)
	if !ok {
		return
	}
	var req KMeansRequest
	if !decode(w, r, &req) {
		return
	}
	enc, err := encode.Parse(req.Encoding)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	km := &cluster.KMeans{
		K:        req.K,
		Columns:  req.Columns,
		Encoding: enc,
		MaxIter:  req.MaxIter,
		Seed:     req.Seed,
	}
	if km.MaxIter == 0 {
		km.MaxIter = h.Cluster.KMeansMaxIter
	}
	labels, err := km.Labels(r.Context(), t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	out, err := t.WithClusterIDs(labels)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	saved := h.store(req.SaveAs, name, out)
	writeJSON(w, http.StatusOK, ClusterResponse{
		Name:     saved,
		Clusters: cluster.Count(labels),
		Sizes:    cluster.Sizes(labels),
	})
}

// GridSearchEps handles eps searches without storing labels.
func (h *Handler) GridSearchEps(w http.ResponseWriter, r *http.Request) {
	_, t, ok := h.table(w, r)
	if !ok {
		return
	}
	var req GridSearchRequest
	if !decode(w, r, &req) {
		return
	}

	g := h.Cluster.GridSearch()
	if req.MinEps != nil {
		g.MinEps = *req.MinEps
	}
	if req.MaxEps != nil {
		g.MaxEps = *req.MaxEps
	}
	if req.Step != nil {
		g.Step = *req.Step
	}
	if req.MinSamples != 0 {
		g.MinSamples = req.MinSamples
	}
	if req.DesiredClusters != nil {
		g.DesiredClusters = *req.DesiredClusters
	}
	g.Columns = req.Columns

	res, err := g.Run(r.Context(), t)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
