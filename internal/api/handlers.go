package api

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/impactgraph/impactgraph/pkg/buildinfo"
	"github.com/impactgraph/impactgraph/pkg/errors"
	"github.com/impactgraph/impactgraph/pkg/pipeline"
	"github.com/impactgraph/impactgraph/pkg/scene"
	"github.com/impactgraph/impactgraph/pkg/store"
)

// =============================================================================
// Responses
// =============================================================================

// NetworkInfo is one entry in the network listing: table counts plus the
// grant metadata from the summary row, when one exists.
type NetworkInfo struct {
	ID            int    `json:"id"`
	NodeCount     int    `json:"node_count"`
	EdgeCount     int    `json:"edge_count"`
	Disease       string `json:"disease,omitempty"`
	Treatment     string `json:"treatment,omitempty"`
	GrantID       string `json:"grant_id,omitempty"`
	FundingAmount int64  `json:"funding_amount,omitempty"`
}

// NetworksResponse is the body of GET /api/networks.
type NetworksResponse struct {
	Networks []NetworkInfo `json:"networks"`
}

// SummaryResponse is the body of GET /api/networks/{id}/summary.
type SummaryResponse struct {
	NetworkID int `json:"network_id"`
	scene.Summary
	Grant *store.SummaryRow `json:"grant,omitempty"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "ok",
		Version: buildinfo.Version,
		Uptime:  time.Since(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleNetworks(w http.ResponseWriter, r *http.Request) {
	tables, err := s.runner.Store.Tables(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "read tables"))
		return
	}

	ids := tables.NetworkIDs()
	networks := make([]NetworkInfo, 0, len(ids))
	for _, id := range ids {
		info := NetworkInfo{ID: id}
		for i := range tables.Nodes {
			if tables.Nodes[i].NetworkID == id {
				info.NodeCount++
			}
		}
		for i := range tables.Edges {
			if tables.Edges[i].NetworkID == id {
				info.EdgeCount++
			}
		}
		if row, ok := tables.Summary(id); ok {
			info.Disease = row.Disease
			info.Treatment = row.TreatmentName
			info.GrantID = row.GrantID
			info.FundingAmount = row.FundingAmount
		}
		networks = append(networks, info)
	}

	s.writeJSON(w, r, http.StatusOK, NetworksResponse{Networks: networks})
}

// artifactHandler serves one rendered format through the full pipeline, so
// responses share the runner's cache with every other consumer.
func (s *Server) artifactHandler(format, contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := networkID(r)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		opts, err := renderOptions(id, format, r.URL.Query())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		opts.ThemePath = s.ThemePath

		result, err := s.runner.Execute(r.Context(), opts)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[format])
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	id, err := networkID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	net, err := s.runner.Load(r.Context(), pipeline.Options{
		NetworkID: id,
		Refresh:   boolParam(r.URL.Query(), "refresh"),
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := SummaryResponse{NetworkID: id, Summary: scene.Summarize(net)}

	tables, err := s.runner.Store.Tables(r.Context())
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeStore, err, "read tables"))
		return
	}
	if row, ok := tables.Summary(id); ok {
		resp.Grant = &row
	}

	s.writeJSON(w, r, http.StatusOK, resp)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	metrics, err := s.runner.Report(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, metrics)
}

// =============================================================================
// Request parsing
// =============================================================================

func networkID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "network id must be an integer, got %q", raw)
	}
	return id, nil
}

// renderOptions builds pipeline options from query parameters. Only the SVG
// parameters are format-specific; refresh applies everywhere.
func renderOptions(id int, format string, q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{
		NetworkID: id,
		Formats:   []string{format},
		Refresh:   boolParam(q, "refresh"),
		Title:     q.Get("title"),
	}

	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil || scale <= 0 {
			return pipeline.Options{}, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", v)
		}
		opts.Scale = scale
	}
	if boolParam(q, "labels") {
		opts.Labels = true
	}
	if v := q.Get("background"); v != "" {
		opts.Background = v
	}

	return opts, nil
}

func boolParam(q url.Values, name string) bool {
	switch q.Get(name) {
	case "1", "true", "yes":
		return true
	}
	return false
}
