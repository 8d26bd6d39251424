package repository

import (
	"database/sql"
	"fmt"

	"mathmotion/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(email, password, fullName, phone, company string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{}
	err = r.db.QueryRow(
		`INSERT INTO users (email, password_hash, full_name, phone, company)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, email, full_name, phone, company, created_at`,
		email, hash, fullName, phone, company,
	).Scan(&u.ID, &u.Email, &u.FullName, &u.Phone, &u.Company, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("insert user: %w", ErrDuplicate)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(
		`SELECT id, email, password_hash, full_name, phone, company, created_at
		 FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Company, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) GetByID(id int64) (*models.User, error) {
	u := &models.User{}
	err := r.db.QueryRow(
		`SELECT id, email, password_hash, full_name, phone, company, created_at
		 FROM users WHERE id = $1`,
		id,
	).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.FullName, &u.Phone, &u.Company, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) UpdateProfile(id int64, fullName, phone, company string) error {
	_, err := r.db.Exec(
		`UPDATE users SET full_name = $1, phone = $2, company = $3 WHERE id = $4`,
		fullName, phone, company, id,
	)
	return err
}

// ListProfiles joins users with project aggregates for the admin clients
// screen. Total spent counts completed projects only, final price winning
// over the estimate.
func (r *UserRepository) ListProfiles() ([]models.ClientProfile, error) {
	rows, err := r.db.Query(`
		SELECT u.id, u.email, u.full_name, u.phone, u.company, u.created_at,
		       COUNT(p.id),
		       COALESCE(SUM(CASE WHEN p.status = 'completed'
		           THEN COALESCE(p.final_price_minor, p.estimated_price_minor, 0)
		           ELSE 0 END), 0)
		FROM users u
		LEFT JOIN projects p ON p.user_id = u.id
		GROUP BY u.id
		ORDER BY u.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []models.ClientProfile
	for rows.Next() {
		var c models.ClientProfile
		if err := rows.Scan(&c.UserID, &c.Email, &c.FullName, &c.Phone, &c.Company, &c.CreatedAt,
			&c.ProjectCount, &c.TotalSpentMinor); err != nil {
			return nil, err
		}
		profiles = append(profiles, c)
	}
	return profiles, rows.Err()
}
