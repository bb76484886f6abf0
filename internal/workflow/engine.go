// Package workflow implements the request lifecycle: which role may move a
// request between which statuses, and the inventory reservation that happens
// on admin approval.
package workflow

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jvolk/stockroom/internal/model"
	"github.com/jvolk/stockroom/internal/notify"
	"github.com/jvolk/stockroom/internal/store"
)

// Actor is the authenticated identity performing a transition.
type Actor struct {
	UserID     int64
	EmpID      string
	Name       string
	Email      string
	Role       string
	Department string
}

// Label returns the actor description used in notifications.
func (a Actor) Label() string {
	switch a.Role {
	case model.RoleHead:
		return fmt.Sprintf("Department Head (%s)", a.Department)
	case model.RoleAdmin:
		return "Admin"
	case model.RoleStore:
		return "Store"
	default:
		return a.Name
	}
}

// Engine applies lifecycle transitions against the database and informs the
// notifier after each one.
type Engine struct {
	DB       *sql.DB
	Notifier notify.Notifier
}

// Result is the outcome of a successful transition. NotifyErr carries a
// notification delivery failure; the status change it reports on has already
// been committed and is never rolled back.
type Result struct {
	Request   *model.Request
	NotifyErr error
}

// Transition moves a request to next on behalf of actor.
//
// The current status is re-read and the new status written inside a single
// transaction, with the write conditioned on the status still matching, so
// two roles racing on the same request cannot both win. On the admin-approval
// edge every line's quantity is reserved against inventory all-or-nothing:
// any shortfall rolls back the whole transition and the request stays
// Department Approved.
func (e *Engine) Transition(ctx context.Context, actor Actor, requestID int64, next model.Status, deliveredTo string) (*Result, error) {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var req model.Request
	var suggestion sql.NullString
	err = tx.QueryRowContext(ctx,
		`SELECT id, emp_id, name, email, department, description, suggestion, status
		 FROM requests WHERE id = ?`, requestID,
	).Scan(&req.ID, &req.EmpID, &req.Name, &req.Email, &req.Department,
		&req.Description, &suggestion, &req.Status)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting request: %w", err)
	}
	req.Suggestion = suggestion.String

	if err := CanTransition(req.Status, next, actor.Role); err != nil {
		return nil, err
	}
	if actor.Role == model.RoleHead && actor.Department != req.Department {
		return nil, &model.IllegalTransitionError{
			From: req.Status, To: next, Role: actor.Role,
			Reason: "request belongs to another department",
		}
	}

	if next == model.StatusDelivered && strings.TrimSpace(deliveredTo) == "" {
		return nil, model.ErrDeliveryIncomplete
	}

	// Admin approval commits the request against inventory. Reservation and
	// status change share the transaction, and reservation can only happen on
	// this edge, so a request can never be decremented twice.
	if next == model.StatusAdminApproved {
		if err := e.reserveLines(ctx, tx, requestID); err != nil {
			return nil, err
		}
	}

	var result sql.Result
	if next == model.StatusDelivered {
		result, err = tx.ExecContext(ctx,
			`UPDATE requests
			 SET status = ?, updated_at = CURRENT_TIMESTAMP,
			     delivered_to = ?, delivered_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			next, deliveredTo, requestID, req.Status,
		)
	} else {
		result, err = tx.ExecContext(ctx,
			`UPDATE requests SET status = ?, updated_at = CURRENT_TIMESTAMP
			 WHERE id = ? AND status = ?`,
			next, requestID, req.Status,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		// Someone else moved the request since we read it.
		return nil, &model.IllegalTransitionError{
			From: req.Status, To: next, Role: actor.Role,
			Reason: "request was modified concurrently",
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transition: %w", err)
	}

	updated, err := store.GetRequest(ctx, e.DB, requestID)
	if err != nil {
		return nil, err
	}

	// The transition is committed; notification failure is only a warning.
	notifyErr := e.notifyTransition(ctx, actor, updated)
	if notifyErr != nil {
		slog.Warn("notification delivery failed",
			"request", requestID, "status", next, "error", notifyErr)
	}

	return &Result{Request: updated, NotifyErr: notifyErr}, nil
}

// reserveLines decrements inventory for every line of the request inside tx.
// All-or-nothing: the first shortfall aborts with the item's name and actual
// availability.
func (e *Engine) reserveLines(ctx context.Context, tx *sql.Tx, requestID int64) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT item_id, quantity FROM request_items WHERE request_id = ?`, requestID,
	)
	if err != nil {
		return fmt.Errorf("getting request lines: %w", err)
	}
	defer rows.Close()

	var lines []model.RequestLine
	for rows.Next() {
		var line model.RequestLine
		if err := rows.Scan(&line.ItemID, &line.Quantity); err != nil {
			return fmt.Errorf("scanning request line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading request lines: %w", err)
	}

	for _, line := range lines {
		if err := store.ReserveItemTx(ctx, tx, line.ItemID, line.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// notifyTransition informs the requester about the committed transition.
func (e *Engine) notifyTransition(ctx context.Context, actor Actor, req *model.Request) error {
	if e.Notifier == nil {
		return nil
	}

	msg := notify.Message{
		To:          req.Email,
		Actor:       actor.Label(),
		Subject:     subjectFor(req.Status),
		Body:        bodyFor(req.Status),
		Requester:   req.Name,
		Email:       req.Email,
		Description: req.Description,
		DeliveredTo: req.DeliveredTo,
	}
	if req.DeliveredAt != nil {
		msg.DeliveredAt = *req.DeliveredAt
	}

	return e.Notifier.Send(ctx, msg)
}

// subjectFor builds the notification subject for a transition. The words
// "approved", "rejected", and "delivered" select the mail template.
func subjectFor(status model.Status) string {
	switch status {
	case model.StatusDeptApproved:
		return "Request Approved by Department Head"
	case model.StatusDeptRejected:
		return "Request Rejected by Department Head"
	case model.StatusAdminApproved:
		return "Request Approved"
	case model.StatusAdminRejected:
		return "Request Rejected"
	case model.StatusDelivered:
		return "Request Delivered"
	default:
		return fmt.Sprintf("Request Update: %s", status)
	}
}

func bodyFor(status model.Status) string {
	switch status {
	case model.StatusPacking:
		return "Your request is being packed."
	case model.StatusDispatched:
		return "Your request has been dispatched."
	default:
		return fmt.Sprintf("Your request status is now %s.", status)
	}
}

// Delete removes a request in any state, bypassing the state machine. This is
// the admin escape hatch carried over from the legacy system; reserved stock
// is not restored.
func (e *Engine) Delete(ctx context.Context, requestID int64) error {
	return store.DeleteRequest(ctx, e.DB, requestID)
}
