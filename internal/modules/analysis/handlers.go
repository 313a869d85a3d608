package analysis

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/domain"
	"github.com/aristath/fund-sentry/internal/modules/holdings"
)

// PositionLookup resolves whether a fund is held or watched
type PositionLookup interface {
	Get(fundCode string) (*holdings.Holding, error)
	GetWatch(fundCode string) (*holdings.WatchItem, error)
}

// Handler handles analysis HTTP requests
type Handler struct {
	service *Service
	lookup  PositionLookup
	log     zerolog.Logger
}

// NewHandler creates a new analysis handler
func NewHandler(service *Service, lookup PositionLookup, log zerolog.Logger) *Handler {
	return &Handler{
		service: service,
		lookup:  lookup,
		log:     log.With().Str("handler", "analysis").Logger(),
	}
}

// HandleAnalyzeFund runs an on-demand analysis for one fund. Held funds get
// full return figures; anything else is analyzed watch-style.
func (h *Handler) HandleAnalyzeFund(w http.ResponseWriter, r *http.Request) {
	fundCode := chi.URLParam(r, "fundCode")
	includeAux := r.URL.Query().Get("aux") == "true"

	req := Request{FundCode: fundCode, IncludeAux: includeAux}

	holding, err := h.lookup.Get(fundCode)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var record *AnalysisRecord
	if holding != nil {
		req.FundName = holding.Name
		req.CostBasis = holding.CostBasis
		req.Amount = holding.Amount
		req.StartDate = holding.InvestmentStartDate
		record, err = h.service.AnalyzeHolding(r.Context(), req)
	} else {
		if watch, lookupErr := h.lookup.GetWatch(fundCode); lookupErr == nil && watch != nil {
			req.FundName = watch.Name
			req.StartDate = watch.WatchStartDate
		}
		record, err = h.service.AnalyzeWatch(r.Context(), req)
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDataUnavailable):
			h.writeError(w, http.StatusBadGateway, err.Error())
		case errors.Is(err, domain.ErrInvalidInput):
			h.writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.writeJSON(w, http.StatusOK, record)
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
