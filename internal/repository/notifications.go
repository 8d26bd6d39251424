package repository

import (
	"database/sql"

	"mathmotion/internal/models"
)

type NotificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(userID int64, title, body string) (*models.Notification, error) {
	n := &models.Notification{}
	err := r.db.QueryRow(
		`INSERT INTO notifications (user_id, title, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, title, body, read, created_at`,
		userID, title, body,
	).Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return n, nil
}

func (r *NotificationRepository) ListByUser(userID int64) ([]models.Notification, error) {
	rows, err := r.db.Query(
		`SELECT id, user_id, title, body, read, created_at
		 FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead only touches the caller's own rows.
func (r *NotificationRepository) MarkRead(id, userID int64) error {
	_, err := r.db.Exec(`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

func (r *NotificationRepository) MarkAllRead(userID int64) error {
	_, err := r.db.Exec(`UPDATE notifications SET read = TRUE WHERE user_id = $1`, userID)
	return err
}
