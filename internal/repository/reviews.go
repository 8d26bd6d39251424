package repository

import (
	"database/sql"
	"encoding/json"

	"mathmotion/internal/models"
)

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type ReviewParams struct {
	ProjectID    *int64
	UserID       *int64
	Quote        string
	Author       string
	Role         string
	Organization string
	Link         string
	Topics       []string
	Rating       int
}

const reviewColumns = `id, project_id, user_id, quote, author, role, organization,
	link, topics, rating, approved, verified, created_at`

func scanReview(row interface{ Scan(...any) error }) (*models.Review, error) {
	rv := &models.Review{}
	var projectID, userID sql.NullInt64
	var topics string
	err := row.Scan(
		&rv.ID, &projectID, &userID, &rv.Quote, &rv.Author, &rv.Role, &rv.Organization,
		&rv.Link, &topics, &rv.Rating, &rv.Approved, &rv.Verified, &rv.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if projectID.Valid {
		rv.ProjectID = &projectID.Int64
	}
	if userID.Valid {
		rv.UserID = &userID.Int64
	}
	if err := json.Unmarshal([]byte(topics), &rv.Topics); err != nil {
		rv.Topics = nil
	}
	return rv, nil
}

func encodeTopics(topics []string) string {
	if topics == nil {
		topics = []string{}
	}
	data, err := json.Marshal(topics)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func (r *ReviewRepository) Create(params ReviewParams) (*models.Review, error) {
	row := r.db.QueryRow(`
		INSERT INTO reviews (project_id, user_id, quote, author, role, organization, link, topics, rating)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+reviewColumns,
		params.ProjectID, params.UserID, params.Quote, params.Author, params.Role,
		params.Organization, params.Link, encodeTopics(params.Topics), params.Rating,
	)
	return scanReview(row)
}

func (r *ReviewRepository) Update(id int64, params ReviewParams) (*models.Review, error) {
	row := r.db.QueryRow(`
		UPDATE reviews SET quote = $1, author = $2, role = $3, organization = $4,
			link = $5, topics = $6, rating = $7
		WHERE id = $8
		RETURNING `+reviewColumns,
		params.Quote, params.Author, params.Role, params.Organization,
		params.Link, encodeTopics(params.Topics), params.Rating, id,
	)
	return scanReview(row)
}

// ListApproved is the public testimonial feed.
func (r *ReviewRepository) ListApproved() ([]models.Review, error) {
	return r.list(`SELECT ` + reviewColumns + ` FROM reviews WHERE approved ORDER BY created_at DESC`)
}

func (r *ReviewRepository) ListAll() ([]models.Review, error) {
	return r.list(`SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at DESC`)
}

func (r *ReviewRepository) list(query string, args ...any) ([]models.Review, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []models.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *rv)
	}
	return reviews, rows.Err()
}

func (r *ReviewRepository) SetApproved(id int64, approved bool) error {
	_, err := r.db.Exec(`UPDATE reviews SET approved = $1 WHERE id = $2`, approved, id)
	return err
}

func (r *ReviewRepository) SetVerified(id int64, verified bool) error {
	_, err := r.db.Exec(`UPDATE reviews SET verified = $1 WHERE id = $2`, verified, id)
	return err
}

func (r *ReviewRepository) Delete(id int64) error {
	_, err := r.db.Exec(`DELETE FROM reviews WHERE id = $1`, id)
	return err
}
