package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jvolk/stockroom/internal/model"
)

// Requester identifies the employee submitting a request.
type Requester struct {
	EmpID string
	Email string
	Name  string
}

// NewLine is one (item, quantity) pair in a request being created.
type NewLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// CreateRequest persists a request with all its lines as one unit.
//
// Every line's quantity is validated against the item's current availability
// at submission time; the first shortfall aborts the whole create with a
// model.InsufficientStockError and nothing is persisted. This is a read-time
// check only: stock is not reserved until admin approval, so quantities may
// drift in between.
func CreateRequest(ctx context.Context, db *sql.DB, requester Requester, department string, lines []NewLine, description, suggestion string) (*model.Request, error) {
	if strings.TrimSpace(requester.Name) == "" {
		return nil, model.Invalid("requester name required")
	}
	if strings.TrimSpace(requester.EmpID) == "" || strings.TrimSpace(requester.Email) == "" {
		return nil, model.Invalid("requester identity required")
	}
	if strings.TrimSpace(department) == "" {
		return nil, model.Invalid("department required")
	}
	if len(lines) == 0 {
		return nil, model.Invalid("at least one item required")
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, model.Invalid("item quantity must be positive")
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	// Validate every line against current stock and collect item names for
	// the legacy-style description.
	var parts []string
	for _, line := range lines {
		var name string
		var available int
		err := tx.QueryRowContext(ctx,
			`SELECT name, quantity FROM items WHERE id = ?`, line.ItemID,
		).Scan(&name, &available)
		if err == sql.ErrNoRows {
			return nil, model.ErrNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("checking item availability: %w", err)
		}
		if line.Quantity > available {
			return nil, &model.InsufficientStockError{Item: name, Requested: line.Quantity, Available: available}
		}
		parts = append(parts, fmt.Sprintf("%s (Quantity: %d)", name, line.Quantity))
	}

	if description == "" {
		description = strings.Join(parts, ", ")
	}

	result, err := tx.ExecContext(ctx,
		`INSERT INTO requests (emp_id, name, email, department, description, suggestion)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		requester.EmpID, requester.Name, requester.Email, department, description, suggestion,
	)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	requestID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting request id: %w", err)
	}

	for _, line := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO request_items (request_id, item_id, quantity) VALUES (?, ?, ?)`,
			requestID, line.ItemID, line.Quantity,
		)
		if err != nil {
			return nil, fmt.Errorf("creating request line: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing request: %w", err)
	}

	return GetRequest(ctx, db, requestID)
}

const requestColumns = `id, emp_id, name, email, department, description, suggestion,
	        status, created_at, updated_at, delivered_to, delivered_at`

func scanRequest(row interface{ Scan(dest ...any) error }) (*model.Request, error) {
	req := &model.Request{}
	var suggestion, deliveredTo sql.NullString
	err := row.Scan(&req.ID, &req.EmpID, &req.Name, &req.Email, &req.Department,
		&req.Description, &suggestion, &req.Status, &req.CreatedAt,
		&req.UpdatedAt, &deliveredTo, &req.DeliveredAt)
	if err != nil {
		return nil, err
	}
	req.Suggestion = suggestion.String
	req.DeliveredTo = deliveredTo.String
	return req, nil
}

// GetRequest returns a request by ID, or model.ErrNotFound.
func GetRequest(ctx context.Context, db *sql.DB, id int64) (*model.Request, error) {
	req, err := scanRequest(db.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM requests WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	return req, nil
}

// ListRequestsByEmployee returns an employee's requests, newest first.
func ListRequestsByEmployee(ctx context.Context, db *sql.DB, empID string) ([]model.Request, error) {
	return listRequests(ctx, db,
		`SELECT `+requestColumns+` FROM requests WHERE emp_id = ? ORDER BY created_at DESC`, empID)
}

// ListRequestsByDepartment returns a department's requests, newest first.
func ListRequestsByDepartment(ctx context.Context, db *sql.DB, department string) ([]model.Request, error) {
	return listRequests(ctx, db,
		`SELECT `+requestColumns+` FROM requests WHERE department = ? ORDER BY created_at DESC`, department)
}

// ListRequests returns all requests, newest first.
func ListRequests(ctx context.Context, db *sql.DB) ([]model.Request, error) {
	return listRequests(ctx, db,
		`SELECT `+requestColumns+` FROM requests ORDER BY created_at DESC`)
}

func listRequests(ctx context.Context, db *sql.DB, query string, args ...any) ([]model.Request, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing requests: %w", err)
	}
	defer rows.Close()

	var requests []model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

// GetRequestLines returns a request's line items with item names joined.
func GetRequestLines(ctx context.Context, db *sql.DB, requestID int64) ([]model.RequestLine, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT ri.request_id, ri.item_id, ri.quantity, i.name
		 FROM request_items ri
		 JOIN items i ON i.id = ri.item_id
		 WHERE ri.request_id = ?
		 ORDER BY i.name`, requestID,
	)
	if err != nil {
		return nil, fmt.Errorf("getting request lines: %w", err)
	}
	defer rows.Close()

	var lines []model.RequestLine
	for rows.Next() {
		var line model.RequestLine
		if err := rows.Scan(&line.RequestID, &line.ItemID, &line.Quantity, &line.ItemName); err != nil {
			return nil, fmt.Errorf("scanning request line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// DeleteRequest permanently removes a request and all its lines.
// Already-reserved stock is not restored. Returns model.ErrNotFound if the
// request does not exist.
func DeleteRequest(ctx context.Context, db *sql.DB, id int64) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM request_items WHERE request_id = ?`, id,
	); err != nil {
		return fmt.Errorf("deleting request lines: %w", err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM requests WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting request: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing request deletion: %w", err)
	}
	return nil
}
