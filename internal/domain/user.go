package domain

import "time"

// User represents a staff account
type User struct {
	ID            string    `json:"id"`
	Email         string    `json:"email"` // Unique
	PasswordHash  string    `json:"-"`     // Bcrypt hash, never returned in API
	Name          string    `json:"name"`
	Role          string    `json:"role"` // Employee, HR or Admin
	BankAccountNo string    `json:"bank_account_no,omitempty"`
	Salary        float64   `json:"salary"`
	Designation   string    `json:"designation,omitempty"`
	Photo         string    `json:"photo,omitempty"`
	IsVerified    bool      `json:"isVerified"`
	IsFired       bool      `json:"isFired"`
	CreatedAt     time.Time `json:"createdAt"`
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(user *User) error
	GetByID(id string) (*User, error)
	GetByEmail(email string) (*User, error)
	SetVerified(id string, verified bool) error
	SetFired(id string) error
	SetRole(id, role string) error
	SetSalary(id string, salary float64) error
	ListByRole(role string) ([]*User, error)
	ListVerifiedActive() ([]*User, error)
	CountActive() (int, error)
}
