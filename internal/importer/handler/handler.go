package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"mapa-service/internal/fileio"
	"mapa-service/internal/importer/model"
	"mapa-service/internal/importer/service"
	"mapa-service/internal/importer/session"
	"mapa-service/internal/middleware"
	"mapa-service/internal/store"
)

// Importer is what the handlers need from service.Importer.
type Importer interface {
	Preview(ctx context.Context, flow *service.Flow, t fileio.Table, defaults map[model.Field]string) (model.Preview, error)
	Commit(ctx context.Context, sessionID string, flow *service.Flow, p model.Preview) (store.Result, error)
}

type CityReader interface {
	Cities(ctx context.Context) ([]model.City, error)
	City(ctx context.Context, id string) (*model.City, error)
	CityStatuses(ctx context.Context) ([]model.CityStatus, error)
}

type Handler struct {
	imp      Importer
	sessions *session.Manager
	cities   CityReader
	log      zerolog.Logger
}

func New(imp Importer, sessions *session.Manager, cities CityReader, log zerolog.Logger) *Handler {
	return &Handler{imp: imp, sessions: sessions, cities: cities, log: log}
}

// Routes mounts the import and city endpoints.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/flows", h.Flows())
	r.Get("/flows/{flow}/template", h.Template())
	r.Post("/flows/{flow}/imports", h.Preview())

	r.Get("/imports/{id}", h.Get())
	r.Delete("/imports/{id}", h.Discard())
	r.Post("/imports/{id}/commit", h.Commit())

	r.Get("/cities", h.Cities())
	r.Get("/cities/status", h.CityStatuses())
	r.Get("/cities/{id}", h.City())
}

func (h *Handler) reqLog(r *http.Request) zerolog.Logger {
	return h.log.With().Str("rid", middleware.GetRequestID(r)).Logger()
}

// Preview handles POST /flows/{flow}/imports: multipart "file", optional "city"
// applied to rows that leave the city column empty.
func (h *Handler) Preview() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := h.reqLog(r)

		flow, err := service.FlowByName(chi.URLParam(r, "flow"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		log = log.With().Str("flow", string(flow.Name)).Logger()

		if err := r.ParseMultipartForm(32 << 20); err != nil {
			var tooBig *http.MaxBytesError
			if errors.As(err, &tooBig) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Errorf("arquivo maior que %d bytes", tooBig.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, fmt.Errorf("formulário inválido: %w", err))
			return
		}
		defer r.MultipartForm.RemoveAll()

		file, hdr, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, errors.New("campo \"file\" ausente"))
			return
		}
		defer file.Close()

		sess := h.sessions.Create(flow.Name, hdr.Filename)
		log = log.With().Str("session", sess.ID).Logger()

		tbl, err := fileio.ReadTable(file, hdr.Filename)
		if err != nil {
			_ = h.sessions.Discard(sess.ID)
			log.Info().Err(err).Str("file", hdr.Filename).Msg("upload rejected")
			writeError(w, statusForFile(err), err)
			return
		}

		p, err := h.imp.Preview(r.Context(), flow, tbl, defaultsFrom(r))
		if err != nil {
			_ = h.sessions.Discard(sess.ID)
			status := statusForFile(err)
			if status == http.StatusInternalServerError {
				log.Error().Err(err).Msg("preview")
			} else {
				log.Info().Err(err).Str("file", hdr.Filename).Msg("upload rejected")
			}
			writeError(w, status, err)
			return
		}

		sess, err = h.sessions.SetPreview(sess.ID, p)
		if err != nil {
			writeError(w, statusForSession(err), err)
			return
		}
		writeJSON(w, http.StatusCreated, sess)

		log.Info().
			Str("file", hdr.Filename).
			Str("format", tbl.Format).
			Str("encoding", tbl.Encoding).
			Int("rows", p.Summary.Total).
			Int("matched", p.Summary.Matched).
			Int("row_errors", len(p.RowErrors)).
			Dur("elapsed", time.Since(start)).
			Msg("preview ready")
	}
}

// Get handles GET /imports/{id}.
func (h *Handler) Get() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.sessions.Get(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, statusForSession(err), err)
			return
		}
		writeJSON(w, http.StatusOK, s)
	}
}

// Commit handles POST /imports/{id}/commit. The write is detached from
// the request context: once started it runs to completion even if the
// client goes away.
func (h *Handler) Commit() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := chi.URLParam(r, "id")
		log := h.reqLog(r).With().Str("session", id).Logger()
		ctx := context.WithoutCancel(r.Context())

		s, err := h.sessions.Commit(ctx, id, func(ctx context.Context, s session.Session) (store.Result, error) {
			flow, err := service.FlowByName(string(s.Flow))
			if err != nil {
				return store.Result{}, err
			}
			return h.imp.Commit(ctx, s.ID, flow, *s.Preview)
		})
		switch {
		case errors.Is(err, session.ErrNotFound), errors.Is(err, session.ErrInvalidState):
			writeError(w, statusForSession(err), err)
			return
		case err != nil:
			log.Error().Err(err).Str("flow", string(s.Flow)).Msg("import write failed")
			writeJSON(w, http.StatusBadGateway, commitFailure{Error: "falha ao gravar importação: " + err.Error(), Session: s})
			return
		}
		writeJSON(w, http.StatusOK, s)

		log.Info().
			Str("flow", string(s.Flow)).
			Int("written", s.Result.Total()).
			Dur("elapsed", time.Since(start)).
			Msg("import committed")
	}
}

type commitFailure struct {
	Error   string          `json:"error"`
	Session session.Session `json:"session"`
}

// Discard handles DELETE /imports/{id}.
func (h *Handler) Discard() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.sessions.Discard(chi.URLParam(r, "id")); err != nil {
			writeError(w, statusForSession(err), err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// Template handles GET /flows/{flow}/template[?format=xlsx].
func (h *Handler) Template() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flow, err := service.FlowByName(chi.URLParam(r, "flow"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		name := "modelo_" + string(flow.Name)
		if strings.EqualFold(r.URL.Query().Get("format"), "xlsx") {
			b, err := service.TemplateXLSX(flow)
			if err != nil {
				log := h.reqLog(r)
				log.Error().Err(err).Msg("xlsx template")
				writeError(w, http.StatusInternalServerError, err)
				return
			}
			writeFile(w, name+".xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", b)
			return
		}
		writeFile(w, name+".csv", "text/csv; charset=utf-8", service.Template(flow))
	}
}

// Flows handles GET /flows: what can be imported and how.
func (h *Handler) Flows() http.HandlerFunc {
	type flowInfo struct {
		Name     model.FlowName `json:"name"`
		Title    string         `json:"title"`
		Required []model.Field  `json:"required"`
		Headers  []string       `json:"headers"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]flowInfo, 0)
		for _, f := range service.Flows() {
			headers := make([]string, len(f.Template))
			for i, c := range f.Template {
				headers[i] = c.Header
			}
			out = append(out, flowInfo{Name: f.Name, Title: f.Title, Required: f.FileRequired, Headers: headers})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// Cities handles GET /cities.
func (h *Handler) Cities() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cities, err := h.cities.Cities(r.Context())
		if err != nil {
			log := h.reqLog(r)
			log.Error().Err(err).Msg("list cities")
			writeError(w, http.StatusInternalServerError, errors.New("falha ao consultar cidades"))
			return
		}
		writeJSON(w, http.StatusOK, cities)
	}
}

// City handles GET /cities/{id}.
func (h *Handler) City() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := h.cities.City(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			log := h.reqLog(r)
			log.Error().Err(err).Msg("get city")
			writeError(w, http.StatusInternalServerError, errors.New("falha ao consultar cidade"))
			return
		}
		if c == nil {
			writeError(w, http.StatusNotFound, errors.New("cidade não encontrada"))
			return
		}
		writeJSON(w, http.StatusOK, c)
	}
}

// CityStatuses handles GET /cities/status, the map colouring query.
func (h *Handler) CityStatuses() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, err := h.cities.CityStatuses(r.Context())
		if err != nil {
			log := h.reqLog(r)
			log.Error().Err(err).Msg("city statuses")
			writeError(w, http.StatusInternalServerError, errors.New("falha ao consultar status"))
			return
		}
		writeJSON(w, http.StatusOK, st)
	}
}
