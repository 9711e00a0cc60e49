package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/staffdesk/internal/domain"
)

const userColumns = `id, email, password_hash, name, role, bank_account_no, salary, designation, photo, is_verified, is_fired, created_at`

// PostgresUserRepository implements domain.UserRepository using PostgreSQL
type PostgresUserRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresUserRepository creates a new user repository
func NewPostgresUserRepository(db *sql.DB, logger *slog.Logger) *PostgresUserRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresUserRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new user. A duplicate email surfaces as domain.ErrConflict
// via the unique index on users(email).
func (r *PostgresUserRepository) Create(user *domain.User) error {
	query := `
		INSERT INTO users (email, password_hash, name, role, bank_account_no, salary, designation, photo, is_verified, is_fired)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.BankAccountNo,
		user.Salary,
		user.Designation,
		user.Photo,
		user.IsVerified,
		user.IsFired,
	).Scan(&user.ID, &user.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: email already registered", domain.ErrConflict)
		}
		r.logger.Error("failed to create user",
			slog.String("email", user.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByEmail retrieves a user by email
func (r *PostgresUserRepository) GetByEmail(email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return r.scanOne(r.db.QueryRow(query, email))
}

// SetVerified sets the verification flag
func (r *PostgresUserRepository) SetVerified(id string, verified bool) error {
	return r.exec(`UPDATE users SET is_verified = $1 WHERE id = $2`, verified, id)
}

// SetFired marks a user fired. Never reversed by any operation.
func (r *PostgresUserRepository) SetFired(id string) error {
	return r.exec(`UPDATE users SET is_fired = true WHERE id = $1`, id)
}

// SetRole changes a user's role
func (r *PostgresUserRepository) SetRole(id, role string) error {
	return r.exec(`UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

// SetSalary changes a user's salary
func (r *PostgresUserRepository) SetSalary(id string, salary float64) error {
	return r.exec(`UPDATE users SET salary = $1 WHERE id = $2`, salary, id)
}

// ListByRole lists all users with the given role
func (r *PostgresUserRepository) ListByRole(role string) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 ORDER BY created_at DESC`
	return r.list(query, role)
}

// ListVerifiedActive lists verified users that have not been fired
func (r *PostgresUserRepository) ListVerifiedActive() ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE is_verified = true AND is_fired = false ORDER BY created_at DESC`
	return r.list(query)
}

// CountActive counts users that have not been fired
func (r *PostgresUserRepository) CountActive() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM users WHERE is_fired = false`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *PostgresUserRepository) exec(query string, args ...interface{}) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		r.logger.Error("failed to update user", slog.String("error", err.Error()))
		return fmt.Errorf("failed to update user: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}
	return nil
}

func (r *PostgresUserRepository) scanOne(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.Role,
		&user.BankAccountNo,
		&user.Salary,
		&user.Designation,
		&user.Photo,
		&user.IsVerified,
		&user.IsFired,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepository) list(query string, args ...interface{}) ([]*domain.User, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		r.logger.Error("failed to list users", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		user := &domain.User{}
		err := rows.Scan(
			&user.ID,
			&user.Email,
			&user.PasswordHash,
			&user.Name,
			&user.Role,
			&user.BankAccountNo,
			&user.Salary,
			&user.Designation,
			&user.Photo,
			&user.IsVerified,
			&user.IsFired,
			&user.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
