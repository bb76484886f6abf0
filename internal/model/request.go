package model

import "time"

// Status represents a request's position in the fulfillment lifecycle.
// The string values are stored verbatim in the database.
type Status string

// Request statuses.
const (
	StatusPendingDeptApproval Status = "Pending Department Approval"
	StatusDeptApproved        Status = "Department Approved"
	StatusDeptRejected        Status = "Department Rejected"
	StatusAdminApproved       Status = "Admin Approved"
	StatusAdminRejected       Status = "Admin Rejected"
	StatusPacking             Status = "Packing"
	StatusDispatched          Status = "Dispatched"
	StatusDelivered           Status = "Delivered"
)

// String returns the stored representation of the status.
func (s Status) String() string {
	return string(s)
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingDeptApproval, StatusDeptApproved, StatusDeptRejected,
		StatusAdminApproved, StatusAdminRejected,
		StatusPacking, StatusDispatched, StatusDelivered:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are permitted out of s.
func (s Status) Terminal() bool {
	switch s {
	case StatusDeptRejected, StatusAdminRejected, StatusDelivered:
		return true
	}
	return false
}

// Request represents a supplies request submitted by an employee.
// The requester identity fields are immutable after creation.
type Request struct {
	ID          int64      `json:"id"`
	EmpID       string     `json:"emp_id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Department  string     `json:"department"`
	Description string     `json:"description"`
	Suggestion  string     `json:"suggestion,omitempty"`
	Status      Status     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	DeliveredTo string     `json:"delivered_to,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// RequestLine is one (item, quantity) pair within a request.
// Lines are created atomically with the request and immutable afterward.
type RequestLine struct {
	RequestID int64 `json:"request_id"`
	ItemID    int64 `json:"item_id"`
	Quantity  int   `json:"quantity"`

	// Joined field (not always populated).
	ItemName string `json:"item_name,omitempty"`
}
