package domain

import "time"

// WorkEntry is a single time-logged unit of work, owned by the employee who
// created it.
type WorkEntry struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"` // Owning employee
	Email       string    `json:"email"`
	Task        string    `json:"task"`
	HoursWorked float64   `json:"hoursWorked"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WorkEntryUpdate carries a partial update. Nil fields are untouched, so a
// legitimate zero value is never mistaken for "absent".
type WorkEntryUpdate struct {
	Task        *string
	HoursWorked *float64
	Date        *time.Time
}

// WorkEntryFilter narrows a listing. UserID empty means all owners; Month and
// Year together select the half-open interval [firstOfMonth, firstOfNextMonth).
type WorkEntryFilter struct {
	UserID string
	Month  int
	Year   int
}

// WorkEntryRepository defines data access for work entries
type WorkEntryRepository interface {
	Create(entry *WorkEntry) error
	GetByID(id string) (*WorkEntry, error)
	List(filter WorkEntryFilter) ([]*WorkEntry, error)
	Update(id string, upd WorkEntryUpdate) error
	Delete(id string) error
}
