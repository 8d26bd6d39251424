package repository

import (
	"database/sql"
	"time"

	"mathmotion/internal/models"
)

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

type ContractParams struct {
	Email          string
	ContactName    string
	Organization   string
	Plan           string
	Currency       string
	MonthlyBudget  *int
	Timeframe      string
	PreferredStart *time.Time
	Description    string
}

const contractColumns = `id, email, contact_name, organization, plan, currency,
	monthly_budget, timeframe, preferred_start, description, status, created_at, updated_at`

func scanContract(row interface{ Scan(...any) error }) (*models.ContractRequest, error) {
	c := &models.ContractRequest{}
	var budget sql.NullInt32
	var start sql.NullTime
	err := row.Scan(
		&c.ID, &c.Email, &c.ContactName, &c.Organization, &c.Plan, &c.Currency,
		&budget, &c.Timeframe, &start, &c.Description, &c.Status, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if budget.Valid {
		b := int(budget.Int32)
		c.MonthlyBudget = &b
	}
	if start.Valid {
		c.PreferredStart = &start.Time
	}
	return c, nil
}

func (r *ContractRepository) Create(params ContractParams) (*models.ContractRequest, error) {
	row := r.db.QueryRow(`
		INSERT INTO contract_requests (email, contact_name, organization, plan, currency,
			monthly_budget, timeframe, preferred_start, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+contractColumns,
		params.Email, params.ContactName, params.Organization, params.Plan, params.Currency,
		params.MonthlyBudget, params.Timeframe, params.PreferredStart, params.Description,
	)
	return scanContract(row)
}

func (r *ContractRepository) GetByID(id int64) (*models.ContractRequest, error) {
	row := r.db.QueryRow(`SELECT `+contractColumns+` FROM contract_requests WHERE id = $1`, id)
	return scanContract(row)
}

func (r *ContractRepository) List(statusFilter string) ([]models.ContractRequest, error) {
	query := `SELECT ` + contractColumns + ` FROM contract_requests`
	args := []any{}
	if statusFilter != "" {
		query += ` WHERE status = $1`
		args = append(args, statusFilter)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contracts []models.ContractRequest
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, err
		}
		contracts = append(contracts, *c)
	}
	return contracts, rows.Err()
}

func (r *ContractRepository) UpdateStatus(id int64, status string) (*models.ContractRequest, error) {
	row := r.db.QueryRow(
		`UPDATE contract_requests SET status = $1, updated_at = NOW() WHERE id = $2 RETURNING `+contractColumns,
		status, id,
	)
	return scanContract(row)
}
