package adapthttp

import (
	"encoding/json"
	"net/http"
	"time"

	"healthcharts/internal/domain"
)

type sampleRequest struct {
	Metric  string      `json:"metric" validate:"required,oneof=steps weight"`
	Value   json.Number `json:"value" validate:"required"`
	Unit    string      `json:"unit" validate:"omitempty,oneof=kg lb"`
	TakenAt *time.Time  `json:"takenAt"`
}

func (s *Server) handleSamplesList(w http.ResponseWriter, r *http.Request) {
	metric, err := domain.ParseMetric(r.PathValue("metric"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	items, err := s.charts.Samples(r.Context(), userFromContext(r).ID, metric)
	if err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metric": metric, "items": items})
}

func (s *Server) handleSampleCreate(w http.ResponseWriter, r *http.Request) {
	var req sampleRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var takenAt time.Time
	if req.TakenAt != nil {
		takenAt = *req.TakenAt
	}
	metric := domain.Metric(req.Metric)
	if err := s.samples.Record(r.Context(), userFromContext(r).ID, metric, req.Value.String(), req.Unit, takenAt); err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"ok": true, "metric": metric})
}
