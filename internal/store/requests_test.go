package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/jvolk/stockroom/internal/db"
	"github.com/jvolk/stockroom/internal/model"
)

var testRequester = Requester{EmpID: "E100", Email: "jan@example.com", Name: "Jan Novak"}

func TestCreateRequest(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 100)
	pad, _ := CreateItem(ctx, database, "NOTE PAD", 50)

	req, err := CreateRequest(ctx, database, testRequester, "IT", []NewLine{
		{ItemID: pen.ID, Quantity: 10},
		{ItemID: pad.ID, Quantity: 2},
	}, "", "please deliver to desk 4")
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}

	if req.Status != model.StatusPendingDeptApproval {
		t.Errorf("expected initial status %q, got %q", model.StatusPendingDeptApproval, req.Status)
	}
	if req.Department != "IT" {
		t.Errorf("expected department IT, got %q", req.Department)
	}
	if req.Description == "" {
		t.Error("expected generated description")
	}
	if req.Suggestion != "please deliver to desk 4" {
		t.Errorf("unexpected suggestion %q", req.Suggestion)
	}

	lines, err := GetRequestLines(ctx, database, req.ID)
	if err != nil {
		t.Fatalf("GetRequestLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	// Submission does not reserve stock.
	got, _ := GetItem(ctx, database, pen.ID)
	if got.Quantity != 100 {
		t.Errorf("expected quantity 100 after submission, got %d", got.Quantity)
	}
}

func TestCreateRequestInsufficientStockAbortsWhole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 5)
	pad, _ := CreateItem(ctx, database, "NOTE PAD", 50)

	_, err := CreateRequest(ctx, database, testRequester, "IT", []NewLine{
		{ItemID: pad.ID, Quantity: 2},
		{ItemID: pen.ID, Quantity: 10},
	}, "", "")

	var stockErr *model.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Item != "PEN" || stockErr.Available != 5 {
		t.Errorf("unexpected error details: %+v", stockErr)
	}

	// Nothing was persisted, not even the valid line.
	requests, _ := ListRequests(ctx, database)
	if len(requests) != 0 {
		t.Errorf("expected no requests, got %d", len(requests))
	}
	var count int
	database.QueryRow(`SELECT COUNT(*) FROM request_items`).Scan(&count)
	if count != 0 {
		t.Errorf("expected no request lines, got %d", count)
	}
}

func TestCreateRequestValidation(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 5)

	var validationErr *model.ValidationError

	_, err := CreateRequest(ctx, database, Requester{EmpID: "E1", Email: "a@b.c"}, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 1}}, "", "")
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for missing name, got %v", err)
	}

	_, err = CreateRequest(ctx, database, testRequester, "",
		[]NewLine{{ItemID: pen.ID, Quantity: 1}}, "", "")
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for missing department, got %v", err)
	}

	_, err = CreateRequest(ctx, database, testRequester, "IT", nil, "", "")
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for empty lines, got %v", err)
	}

	_, err = CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 0}}, "", "")
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for zero quantity, got %v", err)
	}

	_, err = CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: 999, Quantity: 1}}, "", "")
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestListRequestsNewestFirst(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 100)

	first, _ := CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 1}}, "", "")
	// Creation timestamps have second resolution; force distinct ordering.
	if _, err := database.Exec(
		`UPDATE requests SET created_at = datetime(created_at, '-1 hour') WHERE id = ?`, first.ID,
	); err != nil {
		t.Fatalf("backdating request: %v", err)
	}
	second, _ := CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 2}}, "", "")

	all, err := ListRequests(ctx, database)
	if err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(all))
	}
	if all[0].ID != second.ID {
		t.Errorf("expected newest request first, got id %d", all[0].ID)
	}

	mine, _ := ListRequestsByEmployee(ctx, database, testRequester.EmpID)
	if len(mine) != 2 || mine[0].ID != second.ID {
		t.Errorf("expected employee's requests newest first, got %v", mine)
	}

	other, _ := ListRequestsByEmployee(ctx, database, "E999")
	if len(other) != 0 {
		t.Errorf("expected no requests for other employee, got %d", len(other))
	}
}

func TestListRequestsByDepartment(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 100)

	CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 1}}, "", "")
	CreateRequest(ctx, database, Requester{EmpID: "E200", Email: "x@y.z", Name: "Maja"}, "HR",
		[]NewLine{{ItemID: pen.ID, Quantity: 1}}, "", "")

	it, _ := ListRequestsByDepartment(ctx, database, "IT")
	if len(it) != 1 {
		t.Errorf("expected 1 IT request, got %d", len(it))
	}
}

func TestDeleteRequestCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	pen, _ := CreateItem(ctx, database, "PEN", 100)
	req, _ := CreateRequest(ctx, database, testRequester, "IT",
		[]NewLine{{ItemID: pen.ID, Quantity: 3}}, "", "")

	if err := DeleteRequest(ctx, database, req.ID); err != nil {
		t.Fatalf("DeleteRequest: %v", err)
	}

	if _, err := GetRequest(ctx, database, req.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	lines, _ := GetRequestLines(ctx, database, req.ID)
	if len(lines) != 0 {
		t.Errorf("expected no lines after delete, got %d", len(lines))
	}

	// Deletion never restores stock and is not idempotent.
	got, _ := GetItem(ctx, database, pen.ID)
	if got.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", got.Quantity)
	}
	if err := DeleteRequest(ctx, database, req.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for second delete, got %v", err)
	}
}

func TestGetRequestNotFound(t *testing.T) {
	database := db.NewTestDB(t)

	_, err := GetRequest(context.Background(), database, 12345)
	if !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if errors.Is(err, sql.ErrNoRows) {
		t.Error("sql.ErrNoRows must not leak out of the store")
	}
}
