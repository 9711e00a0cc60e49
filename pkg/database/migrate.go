package database

import (
	"context"
	"fmt"
	"log/slog"
)

// migrations are idempotent DDL statements applied on startup. The unique
// indexes on payroll and payments back the at-most-one-per-period invariant
// at the storage layer, not just in the service pre-checks.
var migrations = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id              uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email           text NOT NULL UNIQUE,
		password_hash   text NOT NULL,
		name            text NOT NULL,
		role            text NOT NULL,
		bank_account_no text NOT NULL DEFAULT '',
		salary          double precision NOT NULL DEFAULT 0,
		designation     text NOT NULL DEFAULT '',
		photo           text NOT NULL DEFAULT '',
		is_verified     boolean NOT NULL DEFAULT false,
		is_fired        boolean NOT NULL DEFAULT false,
		created_at      timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS work_sheets (
		id           uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id      uuid NOT NULL REFERENCES users(id),
		email        text NOT NULL,
		task         text NOT NULL,
		hours_worked double precision NOT NULL,
		work_date    timestamptz NOT NULL,
		created_at   timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS payroll (
		id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id    uuid NOT NULL REFERENCES users(id),
		employee_name  text NOT NULL,
		amount         double precision NOT NULL,
		month          integer NOT NULL,
		year           integer NOT NULL,
		requested_by   uuid NOT NULL,
		requested_at   timestamptz NOT NULL DEFAULT now(),
		payment_date   timestamptz,
		paid           boolean NOT NULL DEFAULT false,
		transaction_id text,
		UNIQUE (employee_id, month, year)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id             uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		employee_id    uuid NOT NULL REFERENCES users(id),
		name           text NOT NULL,
		amount         double precision NOT NULL,
		month          integer NOT NULL,
		year           integer NOT NULL,
		transaction_id text NOT NULL,
		payment_date   timestamptz NOT NULL,
		UNIQUE (employee_id, month, year)
	)`,
	`CREATE TABLE IF NOT EXISTS messages (
		id         uuid PRIMARY KEY DEFAULT gen_random_uuid(),
		email      text NOT NULL,
		message    text NOT NULL,
		created_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_sheets_user_date ON work_sheets (user_id, work_date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_payments_employee ON payments (employee_id, year, month)`,
}

// Migrate applies the schema. Safe to run on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := cp.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	cp.logger.Info("migrations applied", slog.Int("statements", len(migrations)))
	return nil
}
