package repository

import (
	"database/sql"

	"mathmotion/internal/models"
)

// MessageRepository is the append-only support message log. Threads are not
// a separate entity: a thread is every message sharing a user_id, ordered
// strictly by creation time (id as tiebreak).
type MessageRepository struct {
	db *sql.DB
}

func NewMessageRepository(db *sql.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Append(userID, senderID int64, fromAdmin bool, content string) (*models.SupportMessage, error) {
	m := &models.SupportMessage{}
	err := r.db.QueryRow(
		`INSERT INTO support_messages (user_id, sender_id, from_admin, content)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, user_id, sender_id, from_admin, content, created_at`,
		userID, senderID, fromAdmin, content,
	).Scan(&m.ID, &m.UserID, &m.SenderID, &m.FromAdmin, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// ListThread returns the whole thread. afterID > 0 narrows to messages newer
// than that id, which serves both the push-replacement incremental fetch and
// the bounded admin poll.
func (r *MessageRepository) ListThread(userID, afterID int64) ([]models.SupportMessage, error) {
	query := `SELECT id, user_id, sender_id, from_admin, content, created_at
		FROM support_messages WHERE user_id = $1`
	args := []any{userID}
	if afterID > 0 {
		query += ` AND id > $2`
		args = append(args, afterID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.SupportMessage
	for rows.Next() {
		var m models.SupportMessage
		if err := rows.Scan(&m.ID, &m.UserID, &m.SenderID, &m.FromAdmin, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// Threads lists the admin inbox: the latest message per client, newest first.
func (r *MessageRepository) Threads() ([]models.ThreadSummary, error) {
	rows, err := r.db.Query(`
		SELECT m.user_id, u.email, u.full_name, m.content, m.created_at, agg.total
		FROM support_messages m
		JOIN (
			SELECT user_id, MAX(id) AS last_id, COUNT(*) AS total
			FROM support_messages GROUP BY user_id
		) agg ON agg.last_id = m.id
		JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threads []models.ThreadSummary
	for rows.Next() {
		var t models.ThreadSummary
		if err := rows.Scan(&t.UserID, &t.Email, &t.FullName, &t.LastMessage, &t.LastAt, &t.MessageCount); err != nil {
			return nil, err
		}
		threads = append(threads, t)
	}
	return threads, rows.Err()
}
