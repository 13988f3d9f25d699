package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aampere/ev-valuation/internal/core"
	"github.com/aampere/ev-valuation/internal/logging"
)

// valuationRequest is the JSON body of POST /api/valuation.
type valuationRequest struct {
	Make              string `json:"make"`
	Model             string `json:"model"`
	MileageKm         int    `json:"mileageKm"`
	FirstRegistration string `json:"firstRegistration"` // YYYY-MM-DD
}

// valuationResponse is the JSON body of a successful valuation.
type valuationResponse struct {
	Estimate   float64 `json:"estimate"`
	Currency   string  `json:"currency"`
	Confidence float64 `json:"confidence"`
}

// handleIndex serves the embedded form page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleValuation computes an estimate for the posted vehicle.
func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	var body valuationRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.respondError(w, r,
			&core.InvalidRequestError{Field: "body", Reason: "must be valid JSON"},
			http.StatusBadRequest)
		return
	}

	firstReg, err := time.Parse("2006-01-02", body.FirstRegistration)
	if err != nil && body.FirstRegistration != "" {
		s.respondError(w, r,
			&core.InvalidRequestError{Field: "firstRegistration", Reason: "must be a YYYY-MM-DD date"},
			http.StatusBadRequest)
		return
	}

	req := core.ValuationRequest{
		Make:              body.Make,
		Model:             body.Model,
		MileageKm:         body.MileageKm,
		FirstRegistration: firstReg,
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	result, err := s.engine.Estimate(req, s.store.Current())
	if err != nil {
		s.respondError(w, r, err, statusForError(err))
		return
	}

	logging.FromContext(r.Context()).Debug("valuation computed",
		"make", req.Make, "model", req.Model, "estimate", result.Estimate)

	writeJSON(w, valuationResponse{
		Estimate:   result.Estimate,
		Currency:   result.Currency,
		Confidence: result.Confidence,
	})
}

// handleMakes lists all available makes from the dataset.
func (s *Server) handleMakes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"makes": s.store.Current().Makes()})
}

// handleModels lists all available models for a specific make.
// Unknown makes yield an empty list, not an error.
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string][]string{"models": s.store.Current().Models(chi.URLParam(r, "make"))})
}

// handleHealth reports process liveness and the serving table generation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	table := s.store.Current()
	writeJSON(w, map[string]interface{}{
		"status":     "ok",
		"records":    table.Size(),
		"buildId":    table.BuildID.String(),
		"builtAt":    table.BuiltAt.UTC().Format(time.RFC3339),
		"loadedFrom": table.Source,
	})
}

// handleReload rebuilds the table from disk and swaps it in atomically.
// On failure the current table keeps serving.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	table, err := s.reload()
	if err != nil {
		logger.Error("dataset reload failed, keeping current table", "error", err)
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	old := s.store.Swap(table)
	logger.Info("reference table reloaded",
		"records", table.Size(),
		"build_id", table.BuildID,
		"previous_build_id", old.BuildID,
	)

	writeJSON(w, map[string]interface{}{
		"status":  "reloaded",
		"records": table.Size(),
		"buildId": table.BuildID.String(),
	})
}
