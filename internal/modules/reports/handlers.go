package reports

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler handles report HTTP requests
type Handler struct {
	service   *Service
	formatter *Formatter
	renderer  *Renderer
	log       zerolog.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, formatter *Formatter, renderer *Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		service:   service,
		formatter: formatter,
		renderer:  renderer,
		log:       log.With().Str("handler", "reports").Logger(),
	}
}

// HandleRun executes a report batch on demand and returns the result
func (h *Handler) HandleRun(w http.ResponseWriter, r *http.Request) {
	batch, err := h.service.Run(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	title := h.formatter.Title(batch)
	body := h.formatter.Format(batch)
	if _, err := h.renderer.Render(batch, title, body); err != nil {
		h.log.Warn().Err(err).Msg("Could not persist on-demand report")
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"title":    title,
		"markdown": body,
		"batch":    batch,
	})
}

// HandleLatest returns the most recently rendered report
func (h *Handler) HandleLatest(w http.ResponseWriter, r *http.Request) {
	name, body, err := h.renderer.Latest()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if name == "" {
		h.writeError(w, http.StatusNotFound, "no report generated yet")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"name":     name,
		"markdown": body,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
