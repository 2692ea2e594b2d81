package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"healthcharts/internal/chart"
	"healthcharts/internal/domain"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}

// writeSourceError maps the sample source errors to a status and carries the
// user-facing reason alongside the message.
func writeSourceError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var denied *domain.SharingDeniedError
	switch {
	case errors.As(err, &denied), errors.Is(err, domain.ErrAuthNotDetermined):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidValue):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNoData):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUnableToComplete):
		status = http.StatusServiceUnavailable
	case errors.Is(err, chart.ErrWindowMisaligned):
		status = http.StatusBadGateway
	}
	if status >= http.StatusInternalServerError {
		log.Printf("http: %s id=%s: %v", r.URL.Path, requestID(r), err)
	}
	body := map[string]any{"error": err.Error()}
	if reason := domain.FailureReason(err); reason != "" {
		body["reason"] = reason
	}
	writeJSON(w, status, body)
}

func parseJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return nil
}

// dateQuery reads key as YYYY-MM-DD in loc, or RFC3339. Missing is nil.
func dateQuery(r *http.Request, key string, loc *time.Location) (*time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	if t, err := time.ParseInLocation("2006-01-02", v, loc); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, fmt.Errorf("%s: expected YYYY-MM-DD or RFC3339, got %q", key, v)
	}
	t = t.In(loc)
	return &t, nil
}

// floatQuery reads key as a number. Missing is nil.
func floatQuery(r *http.Request, key string) (*float64, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: expected a number, got %q", key, v)
	}
	return &f, nil
}

// patternPath strips the method from a ServeMux pattern.
func patternPath(pattern string) string {
	if i := strings.IndexByte(pattern, ' '); i >= 0 {
		return pattern[i+1:]
	}
	return pattern
}

func withNoCache(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

func spaFromDisk(dir string) http.Handler {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := path.Join(dir, "index.html")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqPath := path.Clean(r.URL.Path)
		if reqPath == "/" {
			http.ServeFile(w, r, indexPath)
			return
		}

		staticPath := path.Join(dir, reqPath)
		if _, err := os.Stat(staticPath); err == nil {
			fileServer.ServeHTTP(w, r)
			return
		}

		http.ServeFile(w, r, indexPath)
	})
}
