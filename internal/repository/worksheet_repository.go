package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/yourorg/staffdesk/internal/domain"
)

// PostgresWorkEntryRepository implements domain.WorkEntryRepository using PostgreSQL
type PostgresWorkEntryRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresWorkEntryRepository creates a new work entry repository
func NewPostgresWorkEntryRepository(db *sql.DB, logger *slog.Logger) *PostgresWorkEntryRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresWorkEntryRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new work entry
func (r *PostgresWorkEntryRepository) Create(entry *domain.WorkEntry) error {
	query := `
		INSERT INTO work_sheets (user_id, email, task, hours_worked, work_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		entry.UserID,
		entry.Email,
		entry.Task,
		entry.HoursWorked,
		entry.Date,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create work entry",
			slog.String("user_id", entry.UserID),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create work entry: %w", err)
	}

	return nil
}

// GetByID retrieves a work entry by ID
func (r *PostgresWorkEntryRepository) GetByID(id string) (*domain.WorkEntry, error) {
	entry := &domain.WorkEntry{}

	query := `
		SELECT id, user_id, email, task, hours_worked, work_date, created_at
		FROM work_sheets
		WHERE id = $1
	`

	err := r.db.QueryRow(query, id).Scan(
		&entry.ID,
		&entry.UserID,
		&entry.Email,
		&entry.Task,
		&entry.HoursWorked,
		&entry.Date,
		&entry.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: work sheet not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get work entry: %w", err)
	}

	return entry, nil
}

// List returns entries matching the filter, newest work date first.
func (r *PostgresWorkEntryRepository) List(filter domain.WorkEntryFilter) ([]*domain.WorkEntry, error) {
	var conds []string
	var args []interface{}

	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.Month > 0 && filter.Year > 0 {
		start := time.Date(filter.Year, time.Month(filter.Month), 1, 0, 0, 0, 0, time.UTC)
		end := start.AddDate(0, 1, 0)
		args = append(args, start)
		conds = append(conds, fmt.Sprintf("work_date >= $%d", len(args)))
		args = append(args, end)
		conds = append(conds, fmt.Sprintf("work_date < $%d", len(args)))
	}

	query := `SELECT id, user_id, email, task, hours_worked, work_date, created_at FROM work_sheets`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY work_date DESC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list work entries", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list work entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.WorkEntry
	for rows.Next() {
		entry := &domain.WorkEntry{}
		err := rows.Scan(
			&entry.ID,
			&entry.UserID,
			&entry.Email,
			&entry.Task,
			&entry.HoursWorked,
			&entry.Date,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan work entry: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, rows.Err()
}

// Update applies only the supplied fields.
func (r *PostgresWorkEntryRepository) Update(id string, upd domain.WorkEntryUpdate) error {
	var sets []string
	var args []interface{}

	if upd.Task != nil {
		args = append(args, *upd.Task)
		sets = append(sets, fmt.Sprintf("task = $%d", len(args)))
	}
	if upd.HoursWorked != nil {
		args = append(args, *upd.HoursWorked)
		sets = append(sets, fmt.Sprintf("hours_worked = $%d", len(args)))
	}
	if upd.Date != nil {
		args = append(args, *upd.Date)
		sets = append(sets, fmt.Sprintf("work_date = $%d", len(args)))
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE work_sheets SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))

	result, err := r.db.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("failed to update work entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: work sheet not found", domain.ErrNotFound)
	}
	return nil
}

// Delete removes a work entry permanently
func (r *PostgresWorkEntryRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM work_sheets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete work entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: work sheet not found", domain.ErrNotFound)
	}
	return nil
}
