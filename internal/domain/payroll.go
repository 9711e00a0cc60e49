package domain

import "time"

// PayrollRequest tracks one payable cycle for an employee. At most one request
// may exist per (employee, month, year); the storage layer enforces this with a
// unique index so concurrent duplicate requests cannot slip past the pre-check.
type PayrollRequest struct {
	ID            string     `json:"id"`
	EmployeeID    string     `json:"employeeId"`
	EmployeeName  string     `json:"employeeName"` // Snapshot at request time
	Amount        float64    `json:"amount"`
	Month         int        `json:"month"`
	Year          int        `json:"year"`
	RequestedBy   string     `json:"requestedBy"` // HR user id
	RequestedAt   time.Time  `json:"requestedAt"`
	PaymentDate   *time.Time `json:"paymentDate"`
	Paid          bool       `json:"paid"`
	TransactionID *string    `json:"transactionId"`
}

// PaymentRecord is one row of the append-only payment ledger. Uniqueness per
// (employee, month, year) is enforced independently of PayrollRequest.Paid.
type PaymentRecord struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employeeId"`
	Name          string    `json:"name"`
	Amount        float64   `json:"amount"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	TransactionID string    `json:"transactionId"`
	PaymentDate   time.Time `json:"paymentDate"`
}

// PaymentPage is one page of an employee's payment history.
type PaymentPage struct {
	Payments []*PaymentRecord
	Total    int
	Page     int
	Pages    int
}

// PayrollRepository defines data access for payroll requests and the payment
// ledger. Pay must mutate the request and append the ledger row in a single
// database transaction.
type PayrollRepository interface {
	CreateRequest(req *PayrollRequest) error
	GetRequestByID(id string) (*PayrollRequest, error)
	RequestExists(employeeID string, month, year int) (bool, error)
	ListRequests() ([]*PayrollRequest, error)
	Pay(requestID, transactionID string, paidAt time.Time) error
	PaymentExists(employeeID string, month, year int) (bool, error)
	ListPaymentsByEmployee(employeeID string, offset, limit int) ([]*PaymentRecord, int, error)
	ListAllPaymentsByEmployee(employeeID string) ([]*PaymentRecord, error)
	CountPendingRequests() (int, error)
}
