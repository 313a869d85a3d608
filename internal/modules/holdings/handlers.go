package holdings

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/domain"
)

// Handler handles holdings and watchlist HTTP requests
type Handler struct {
	repo *Repository
	log  zerolog.Logger
}

// NewHandler creates a new holdings handler
func NewHandler(repo *Repository, log zerolog.Logger) *Handler {
	return &Handler{
		repo: repo,
		log:  log.With().Str("handler", "holdings").Logger(),
	}
}

// HandleListHoldings returns all holdings
func (h *Handler) HandleListHoldings(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []Holding{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleGetHolding returns one holding by fund code
func (h *Handler) HandleGetHolding(w http.ResponseWriter, r *http.Request) {
	holding, err := h.repo.Get(chi.URLParam(r, "fundCode"))
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if holding == nil {
		h.writeError(w, http.StatusNotFound, "holding not found")
		return
	}
	h.writeJSON(w, http.StatusOK, holding)
}

// HandleSaveHolding creates or updates a holding
func (h *Handler) HandleSaveHolding(w http.ResponseWriter, r *http.Request) {
	var holding Holding
	if err := json.NewDecoder(r.Body).Decode(&holding); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.Upsert(holding); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "fund_code": holding.FundCode})
}

// HandleDeleteHolding removes a holding
func (h *Handler) HandleDeleteHolding(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.Delete(chi.URLParam(r, "fundCode")); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleMoveToWatchlist converts a holding into a watch item
func (h *Handler) HandleMoveToWatchlist(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.MoveToWatchlist(chi.URLParam(r, "fundCode")); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

// HandleListWatchlist returns all watch items
func (h *Handler) HandleListWatchlist(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListWatchlist()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if list == nil {
		list = []WatchItem{}
	}
	h.writeJSON(w, http.StatusOK, list)
}

// HandleSaveWatch creates or updates a watch item
func (h *Handler) HandleSaveWatch(w http.ResponseWriter, r *http.Request) {
	var item WatchItem
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.UpsertWatch(item); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "saved", "fund_code": item.FundCode})
}

// HandleDeleteWatch removes a watch item
func (h *Handler) HandleDeleteWatch(w http.ResponseWriter, r *http.Request) {
	if err := h.repo.DeleteWatch(chi.URLParam(r, "fundCode")); err != nil {
		h.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// HandleMoveToHoldings converts a watch item into a holding
func (h *Handler) HandleMoveToHoldings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CostBasis    float64 `json:"cost_basis"`
		Amount       float64 `json:"amount"`
		PurchaseDate string  `json:"purchase_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.repo.MoveToHoldings(chi.URLParam(r, "fundCode"), body.CostBasis, body.Amount, body.PurchaseDate); err != nil {
		h.writeRepoError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
}

func (h *Handler) writeRepoError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrInvalidInput) {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	h.writeError(w, http.StatusInternalServerError, err.Error())
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
