package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"imobilBack/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

func (r *MessageRepository) CreateMessage(ctx context.Context, m models.Message) (models.Message, error) {
	m.CreatedAt = time.Now()
	res, err := r.DB.ExecContext(ctx, `INSERT INTO messages (name, email, phone, subject, message, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		m.Name, m.Email, m.Phone, m.Subject, m.Message, m.CreatedAt)
	if err != nil {
		return models.Message{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Message{}, err
	}
	m.ID = int(id)
	return m, nil
}

func (r *MessageRepository) GetMessageByID(ctx context.Context, id int) (models.Message, error) {
	var m models.Message
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, email, phone, subject, message, created_at FROM messages WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, models.ErrMessageNotFound
	}
	return m, err
}

func (r *MessageRepository) GetMessages(ctx context.Context) ([]models.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, name, email, phone, subject, message, created_at FROM messages ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *MessageRepository) DeleteMessage(ctx context.Context, id int) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM messages WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrMessageNotFound
	}
	return nil
}
