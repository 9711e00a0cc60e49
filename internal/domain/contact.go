package domain

import "time"

// ContactMessage is an unauthenticated inbound message, append-only.
type ContactMessage struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactRepository defines data access for contact messages
type ContactRepository interface {
	Create(msg *ContactMessage) error
	List() ([]*ContactMessage, error)
}
