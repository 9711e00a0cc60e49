package repository

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/staffdesk/internal/domain"
)

// PostgresContactRepository implements domain.ContactRepository using PostgreSQL
type PostgresContactRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresContactRepository creates a new contact repository
func NewPostgresContactRepository(db *sql.DB, logger *slog.Logger) *PostgresContactRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresContactRepository{
		db:     db,
		logger: logger,
	}
}

// Create appends a contact message
func (r *PostgresContactRepository) Create(msg *domain.ContactMessage) error {
	query := `
		INSERT INTO messages (email, message)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(query, msg.Email, msg.Message).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create contact message", slog.String("error", err.Error()))
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// List returns all contact messages, newest first
func (r *PostgresContactRepository) List() ([]*domain.ContactMessage, error) {
	query := `SELECT id, email, message, created_at FROM messages ORDER BY created_at DESC`

	rows, err := r.db.Query(query)
	if err != nil {
		r.logger.Error("failed to list contact messages", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	var msgs []*domain.ContactMessage
	for rows.Next() {
		msg := &domain.ContactMessage{}
		if err := rows.Scan(&msg.ID, &msg.Email, &msg.Message, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan contact message: %w", err)
		}
		msgs = append(msgs, msg)
	}

	return msgs, rows.Err()
}
