package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// idParam reads a positive int64 URL parameter
func idParam(r *http.Request, name string) (int64, bool) {
	return parseID(chi.URLParam(r, name))
}

// idQuery reads an optional positive int64 query parameter. A missing value
// is reported as 0, true.
func idQuery(r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, true
	}
	return parseID(raw)
}

func parseID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
