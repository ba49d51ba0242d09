package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/healthjoin/internal/core"
)

// combinedResponse is the JSON body of /api/combined.
type combinedResponse struct {
	RunID   string           `json:"runId"`
	Year    string           `json:"year"`
	Count   int              `json:"count"`
	Columns []string         `json:"columns"`
	Rows    []core.OutputRow `json:"rows"`
}

// sourceResponse describes one source table.
type sourceResponse struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Path     string   `json:"path"`
	Value    string   `json:"valueColumn"`
	Required []string `json:"requiredColumns"`
}

// handleIndex renders the combined table as an HTML page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	res, err := s.build(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	templ.Handler(combinedPage(res)).ServeHTTP(w, r)
}

// handleCombinedJSON returns the combined table as JSON.
func (s *Server) handleCombinedJSON(w http.ResponseWriter, r *http.Request) {
	res, err := s.build(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, r, combinedResponse{
		RunID:   res.RunID,
		Year:    res.Year,
		Count:   len(res.Rows),
		Columns: core.OutputHeader(),
		Rows:    res.Rows,
	})
}

// handleCombinedCSV downloads the combined table in the same format the CLI writes.
func (s *Server) handleCombinedCSV(w http.ResponseWriter, r *http.Request) {
	res, err := s.build(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	// Serialize fully before sending headers so a failure can still be reported
	var buf bytes.Buffer
	if err := core.WriteCombined(&buf, res.Rows); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="combined_%s.csv"`, res.Year))
	w.Write(buf.Bytes())
}

// handleSummary returns the histogram summary of the combined table. The
// optional bins query parameter sets the bin count per value column.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	bins := core.DefaultBins
	if q := r.URL.Query().Get("bins"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 || n > core.MaxBins {
			respondErrorJSON(w, core.UserMessage{
				Message: "Invalid bin count",
				Action:  fmt.Sprintf("Use a whole number from 1 to %d", core.MaxBins),
				Code:    "SUM400",
			}, http.StatusBadRequest)
			return
		}
		bins = n
	}

	res, err := s.build(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	summary, err := core.Summarize(res, bins)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, r, summary)
}

// handleListSources lists the source tables and where they are read from.
func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	defs := core.All()
	out := make([]sourceResponse, 0, len(defs))
	for _, def := range defs {
		out = append(out, s.describeSource(def))
	}
	writeJSON(w, r, out)
}

// handleGetSource describes a single source table.
func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "sourceKey")
	def, ok := core.Get(key)
	if !ok {
		respondErrorJSON(w, core.UserMessage{
			Message: "Unknown source",
			Action:  "Use one of the keys listed at /api/sources",
			Code:    "SRC404",
		}, http.StatusNotFound)
		return
	}
	writeJSON(w, r, s.describeSource(def))
}

// handleHealth reports liveness and run slot usage. It never reads the inputs.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, map[string]any{
		"status": "ok",
		"year":   s.runner.Options().Year,
		"runs":   s.limiter.Status(),
	})
}

func (s *Server) describeSource(def core.SourceDefinition) sourceResponse {
	paths := s.runner.Options().Paths
	path := paths.Life
	if def.Info.Key == core.SourceHealth {
		path = paths.Health
	}
	return sourceResponse{
		Key:      def.Info.Key,
		Label:    def.Info.Label,
		Path:     path,
		Value:    def.Info.Value,
		Required: def.Required(),
	}
}
