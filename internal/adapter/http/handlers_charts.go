package adapthttp

import (
	"net/http"
)

func (s *Server) handleChartsRefresh(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r)
	if err := s.charts.Refresh(r.Context(), user.ID); err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleStepChart(w http.ResponseWriter, r *http.Request) {
	selected, err := dateQuery(r, "selected", s.charts.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.charts.Steps(r.Context(), userFromContext(r).ID, selected)
	if err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStepWeekdays(w http.ResponseWriter, r *http.Request) {
	selected, err := floatQuery(r, "selected")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.charts.StepWeekdays(r.Context(), userFromContext(r).ID, selected)
	if err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeightChart(w http.ResponseWriter, r *http.Request) {
	selected, err := dateQuery(r, "selected", s.charts.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.charts.Weight(r.Context(), userFromContext(r).ID, selected)
	if err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleWeightDiffs(w http.ResponseWriter, r *http.Request) {
	selected, err := dateQuery(r, "selected", s.charts.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	out, err := s.charts.WeightDiffs(r.Context(), userFromContext(r).ID, selected)
	if err != nil {
		writeSourceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}
