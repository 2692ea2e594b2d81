package adapthttp

import (
	"net/http"

	"healthcharts/internal/domain"
)

type permissionRequest struct {
	Metric string `json:"metric" validate:"required,oneof=steps weight"`
	Status string `json:"status" validate:"required,oneof=sharingDenied sharingAuthorized"`
}

func (s *Server) handlePermissionsGet(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.perms.Statuses(r.Context(), userFromContext(r).ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"permissions": statuses})
}

func (s *Server) handlePermissionsPut(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := parseJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	user := userFromContext(r)
	metric := domain.Metric(req.Metric)
	if err := s.perms.Set(r.Context(), user.ID, metric, domain.AuthorizationStatus(req.Status)); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.handlePermissionsGet(w, r)
}
