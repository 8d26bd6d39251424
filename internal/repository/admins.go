package repository

import (
	"database/sql"
	"fmt"

	"mathmotion/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type AdminRepository struct {
	db *sql.DB
}

func NewAdminRepository(db *sql.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

func (r *AdminRepository) Create(username, email, password string) (*models.AdminUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &models.AdminUser{}
	err = r.db.QueryRow(
		`INSERT INTO admin_users (username, email, password_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id, username, email, active, created_at`,
		username, email, hash,
	).Scan(&a.ID, &a.Username, &a.Email, &a.Active, &a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert admin: %w", err)
	}
	return a, nil
}

func (r *AdminRepository) GetByUsername(username string) (*models.AdminUser, error) {
	a := &models.AdminUser{}
	var authUserID sql.NullInt64
	var lastLogin sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, username, email, password_hash, active, auth_user_id, last_login, created_at
		 FROM admin_users WHERE username = $1`,
		username,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Active, &authUserID, &lastLogin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authUserID.Valid {
		a.AuthUserID = &authUserID.Int64
	}
	if lastLogin.Valid {
		a.LastLogin = &lastLogin.Time
	}
	return a, nil
}

func (r *AdminRepository) GetByID(id int64) (*models.AdminUser, error) {
	a := &models.AdminUser{}
	var authUserID sql.NullInt64
	var lastLogin sql.NullTime
	err := r.db.QueryRow(
		`SELECT id, username, email, password_hash, active, auth_user_id, last_login, created_at
		 FROM admin_users WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.Username, &a.Email, &a.PasswordHash, &a.Active, &authUserID, &lastLogin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	if authUserID.Valid {
		a.AuthUserID = &authUserID.Int64
	}
	if lastLogin.Valid {
		a.LastLogin = &lastLogin.Time
	}
	return a, nil
}

func (r *AdminRepository) List() ([]models.AdminUser, error) {
	rows, err := r.db.Query(
		`SELECT id, username, email, active, auth_user_id, last_login, created_at
		 FROM admin_users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var admins []models.AdminUser
	for rows.Next() {
		var a models.AdminUser
		var authUserID sql.NullInt64
		var lastLogin sql.NullTime
		if err := rows.Scan(&a.ID, &a.Username, &a.Email, &a.Active, &authUserID, &lastLogin, &a.CreatedAt); err != nil {
			return nil, err
		}
		if authUserID.Valid {
			a.AuthUserID = &authUserID.Int64
		}
		if lastLogin.Valid {
			a.LastLogin = &lastLogin.Time
		}
		admins = append(admins, a)
	}
	return admins, rows.Err()
}

func (r *AdminRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM admin_users`).Scan(&count)
	return count, err
}

func (r *AdminRepository) SetActive(id int64, active bool) error {
	_, err := r.db.Exec(`UPDATE admin_users SET active = $1 WHERE id = $2`, active, id)
	return err
}

func (r *AdminRepository) LinkAuthUser(id, authUserID int64) error {
	_, err := r.db.Exec(`UPDATE admin_users SET auth_user_id = $1 WHERE id = $2`, authUserID, id)
	return err
}

func (r *AdminRepository) UpdateLastLogin(id int64) error {
	_, err := r.db.Exec(`UPDATE admin_users SET last_login = NOW() WHERE id = $1`, id)
	return err
}

func (r *AdminRepository) UpdatePassword(id int64, newPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = r.db.Exec(`UPDATE admin_users SET password_hash = $1 WHERE id = $2`, hash, id)
	return err
}
