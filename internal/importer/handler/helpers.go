package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mapa-service/internal/fileio"
	"mapa-service/internal/importer/model"
	"mapa-service/internal/importer/service"
	"mapa-service/internal/importer/session"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeFile(w http.ResponseWriter, name, contentType string, b []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

// statusForFile maps upload and pipeline errors. Anything the user can
// fix by editing the file is 422.
func statusForFile(err error) int {
	switch {
	case errors.Is(err, fileio.ErrUnsupported):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, fileio.ErrEmptyFile),
		errors.Is(err, fileio.ErrUnreadable),
		errors.Is(err, service.ErrNoHeader),
		errors.Is(err, service.ErrMissingColumn),
		errors.Is(err, service.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrUnknownFlow):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func statusForSession(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrInvalidState):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// defaultsFrom collects request-level values for empty cells.
func defaultsFrom(r *http.Request) map[model.Field]string {
	d := make(map[model.Field]string)
	if c := strings.TrimSpace(r.FormValue("city")); c != "" {
		d[model.FieldCity] = c
	}
	if s := strings.TrimSpace(r.FormValue("status")); s != "" {
		d[model.FieldStatus] = s
	}
	return d
}
