package holdings

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/aristath/fund-sentry/internal/domain"
)

// settingDisclaimerShown persists whether the risk disclaimer was already
// presented, so it is shown exactly once across restarts
const settingDisclaimerShown = "disclaimer_shown"

// Repository handles holdings, watchlist and settings database operations
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new holdings repository
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repo", "holdings").Logger(),
	}
}

func validateHolding(h Holding) error {
	if strings.TrimSpace(h.FundCode) == "" {
		return fmt.Errorf("%w: fund code is required", domain.ErrInvalidInput)
	}
	if h.CostBasis <= 0 {
		return fmt.Errorf("%w: cost basis must be positive", domain.ErrInvalidInput)
	}
	if h.Amount <= 0 {
		return fmt.Errorf("%w: invested amount must be positive", domain.ErrInvalidInput)
	}
	return nil
}

// List returns all holdings ordered by fund code
func (r *Repository) List() ([]Holding, error) {
	rows, err := r.db.Query(`SELECT fund_code, name, cost_basis, amount, purchase_date,
		investment_start_date, note, created_at, updated_at
		FROM holdings ORDER BY fund_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	var result []Holding
	for rows.Next() {
		var h Holding
		if err := rows.Scan(&h.FundCode, &h.Name, &h.CostBasis, &h.Amount, &h.PurchaseDate,
			&h.InvestmentStartDate, &h.Note, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		result = append(result, h)
	}
	return result, rows.Err()
}

// Get returns a holding by fund code, or nil when absent
func (r *Repository) Get(fundCode string) (*Holding, error) {
	var h Holding
	err := r.db.QueryRow(`SELECT fund_code, name, cost_basis, amount, purchase_date,
		investment_start_date, note, created_at, updated_at
		FROM holdings WHERE fund_code = ?`, fundCode).
		Scan(&h.FundCode, &h.Name, &h.CostBasis, &h.Amount, &h.PurchaseDate,
			&h.InvestmentStartDate, &h.Note, &h.CreatedAt, &h.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query holding: %w", err)
	}
	return &h, nil
}

// Upsert inserts or replaces a holding
func (r *Repository) Upsert(h Holding) error {
	if err := validateHolding(h); err != nil {
		return err
	}

	_, err := r.db.Exec(`INSERT INTO holdings
		(fund_code, name, cost_basis, amount, purchase_date, investment_start_date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET
			name = excluded.name,
			cost_basis = excluded.cost_basis,
			amount = excluded.amount,
			purchase_date = excluded.purchase_date,
			investment_start_date = excluded.investment_start_date,
			note = excluded.note,
			updated_at = datetime('now')`,
		h.FundCode, h.Name, h.CostBasis, h.Amount, h.PurchaseDate, h.InvestmentStartDate, h.Note)
	if err != nil {
		return fmt.Errorf("failed to upsert holding: %w", err)
	}

	r.log.Info().Str("fund", h.FundCode).Msg("Holding saved")
	return nil
}

// Delete removes a holding. Missing rows are not an error.
func (r *Repository) Delete(fundCode string) error {
	if _, err := r.db.Exec("DELETE FROM holdings WHERE fund_code = ?", fundCode); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}
	return nil
}

// ListWatchlist returns all watch items ordered by fund code
func (r *Repository) ListWatchlist() ([]WatchItem, error) {
	rows, err := r.db.Query(`SELECT fund_code, name, watch_start_date, note, created_at, updated_at
		FROM watchlist ORDER BY fund_code`)
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var result []WatchItem
	for rows.Next() {
		var w WatchItem
		if err := rows.Scan(&w.FundCode, &w.Name, &w.WatchStartDate, &w.Note, &w.CreatedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch item: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// GetWatch returns a watch item by fund code, or nil when absent
func (r *Repository) GetWatch(fundCode string) (*WatchItem, error) {
	var w WatchItem
	err := r.db.QueryRow(`SELECT fund_code, name, watch_start_date, note, created_at, updated_at
		FROM watchlist WHERE fund_code = ?`, fundCode).
		Scan(&w.FundCode, &w.Name, &w.WatchStartDate, &w.Note, &w.CreatedAt, &w.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query watch item: %w", err)
	}
	return &w, nil
}

// UpsertWatch inserts or replaces a watch item
func (r *Repository) UpsertWatch(w WatchItem) error {
	if strings.TrimSpace(w.FundCode) == "" {
		return fmt.Errorf("%w: fund code is required", domain.ErrInvalidInput)
	}

	_, err := r.db.Exec(`INSERT INTO watchlist (fund_code, name, watch_start_date, note)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET
			name = excluded.name,
			watch_start_date = excluded.watch_start_date,
			note = excluded.note,
			updated_at = datetime('now')`,
		w.FundCode, w.Name, w.WatchStartDate, w.Note)
	if err != nil {
		return fmt.Errorf("failed to upsert watch item: %w", err)
	}

	r.log.Info().Str("fund", w.FundCode).Msg("Watch item saved")
	return nil
}

// DeleteWatch removes a watch item. Missing rows are not an error.
func (r *Repository) DeleteWatch(fundCode string) error {
	if _, err := r.db.Exec("DELETE FROM watchlist WHERE fund_code = ?", fundCode); err != nil {
		return fmt.Errorf("failed to delete watch item: %w", err)
	}
	return nil
}

// MoveToWatchlist converts a holding into a watch item in one transaction.
// The purchase date carries over as the watch start date.
func (r *Repository) MoveToWatchlist(fundCode string) error {
	h, err := r.Get(fundCode)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("%w: holding %s not found", domain.ErrInvalidInput, fundCode)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO watchlist (fund_code, name, watch_start_date, note)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET name = excluded.name, updated_at = datetime('now')`,
		h.FundCode, h.Name, h.PurchaseDate, h.Note); err != nil {
		return fmt.Errorf("failed to insert watch item: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM holdings WHERE fund_code = ?", fundCode); err != nil {
		return fmt.Errorf("failed to remove holding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	r.log.Info().Str("fund", fundCode).Msg("Holding moved to watchlist")
	return nil
}

// MoveToHoldings converts a watch item into a holding in one transaction
func (r *Repository) MoveToHoldings(fundCode string, costBasis, amount float64, purchaseDate string) error {
	w, err := r.GetWatch(fundCode)
	if err != nil {
		return err
	}
	if w == nil {
		return fmt.Errorf("%w: watch item %s not found", domain.ErrInvalidInput, fundCode)
	}
	if err := validateHolding(Holding{FundCode: fundCode, CostBasis: costBasis, Amount: amount}); err != nil {
		return err
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO holdings
		(fund_code, name, cost_basis, amount, purchase_date, investment_start_date, note)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(fund_code) DO UPDATE SET
			cost_basis = excluded.cost_basis,
			amount = excluded.amount,
			purchase_date = excluded.purchase_date,
			updated_at = datetime('now')`,
		w.FundCode, w.Name, costBasis, amount, purchaseDate, w.WatchStartDate, w.Note); err != nil {
		return fmt.Errorf("failed to insert holding: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM watchlist WHERE fund_code = ?", fundCode); err != nil {
		return fmt.Errorf("failed to remove watch item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit move: %w", err)
	}

	r.log.Info().Str("fund", fundCode).Msg("Watch item moved to holdings")
	return nil
}

// GetSetting returns a settings value, empty when unset
func (r *Repository) GetSetting(key string) (string, error) {
	var value string
	err := r.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query setting: %w", err)
	}
	return value, nil
}

// SetSetting stores a settings value
func (r *Repository) SetSetting(key, value string) error {
	_, err := r.db.Exec(`INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("failed to store setting: %w", err)
	}
	return nil
}

// DisclaimerShown reports whether the risk disclaimer was already presented
func (r *Repository) DisclaimerShown() (bool, error) {
	value, err := r.GetSetting(settingDisclaimerShown)
	return value == "true", err
}

// MarkDisclaimerShown records that the risk disclaimer was presented
func (r *Repository) MarkDisclaimerShown() error {
	return r.SetSetting(settingDisclaimerShown, "true")
}
