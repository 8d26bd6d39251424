package repository

import (
	"database/sql"
	"fmt"

	"mathmotion/internal/models"
)

// EstimateRepository persists quick estimates. Rows are write-once: there is
// deliberately no update or delete method.
type EstimateRepository struct {
	db *sql.DB
}

func NewEstimateRepository(db *sql.DB) *EstimateRepository {
	return &EstimateRepository{db: db}
}

func (r *EstimateRepository) Create(animationType string, durationSeconds int, complexity float64, currency string, priceMinor int64, email string) (*models.QuickEstimate, error) {
	e := &models.QuickEstimate{}
	err := r.db.QueryRow(
		`INSERT INTO quick_estimates (animation_type, duration_seconds, complexity, currency, price_minor, email)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, animation_type, duration_seconds, complexity, currency, price_minor, email, created_at`,
		animationType, durationSeconds, complexity, currency, priceMinor, email,
	).Scan(&e.ID, &e.AnimationType, &e.DurationSeconds, &e.Complexity, &e.Currency, &e.PriceMinor, &e.Email, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert estimate: %w", err)
	}
	return e, nil
}

func (r *EstimateRepository) ListByEmail(email string) ([]models.QuickEstimate, error) {
	return r.list(`SELECT id, animation_type, duration_seconds, complexity, currency, price_minor, email, created_at
		FROM quick_estimates WHERE email = $1 ORDER BY created_at DESC`, email)
}

func (r *EstimateRepository) ListRecent(limit int) ([]models.QuickEstimate, error) {
	if limit < 1 {
		limit = 50
	}
	return r.list(`SELECT id, animation_type, duration_seconds, complexity, currency, price_minor, email, created_at
		FROM quick_estimates ORDER BY created_at DESC LIMIT $1`, limit)
}

func (r *EstimateRepository) list(query string, args ...any) ([]models.QuickEstimate, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimates []models.QuickEstimate
	for rows.Next() {
		var e models.QuickEstimate
		if err := rows.Scan(&e.ID, &e.AnimationType, &e.DurationSeconds, &e.Complexity, &e.Currency, &e.PriceMinor, &e.Email, &e.CreatedAt); err != nil {
			return nil, err
		}
		estimates = append(estimates, e)
	}
	return estimates, rows.Err()
}
