package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jvolk/stockroom/internal/db"
	"github.com/jvolk/stockroom/internal/model"
)

func TestCreateAndGetUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, err := CreateUser(ctx, database, "E100", "jan@example.com", "Jan Novak", "IT", "hash", model.RoleEmployee)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if user.EmpID != "E100" || user.Role != model.RoleEmployee || user.Department != "IT" {
		t.Errorf("unexpected user: %+v", user)
	}

	byEmail, err := GetUserByEmail(ctx, database, "jan@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != user.ID {
		t.Errorf("expected id %d, got %d", user.ID, byEmail.ID)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "E100", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee)

	_, err := CreateUser(ctx, database, "E100", "other@example.com", "Jan", "IT", "hash", model.RoleEmployee)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for emp_id collision, got %v", err)
	}

	_, err = CreateUser(ctx, database, "E101", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate for email collision, got %v", err)
	}
}

func TestDeletedUserIdentityReusable(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "E100", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee)
	if err := DeleteUser(ctx, database, user.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := GetUserByEmail(ctx, database, "jan@example.com"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected deleted user to be invisible by email, got %v", err)
	}

	// The partial unique index only covers active accounts.
	if _, err := CreateUser(ctx, database, "E100", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee); err != nil {
		t.Errorf("expected identity to be reusable after delete, got %v", err)
	}
}

func TestGetDepartmentHead(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "H1", "head-it@example.com", "Eva", "IT", "hash", model.RoleHead)
	CreateUser(ctx, database, "E1", "emp-it@example.com", "Jan", "IT", "hash", model.RoleEmployee)

	head, err := GetDepartmentHead(ctx, database, "IT")
	if err != nil {
		t.Fatalf("GetDepartmentHead: %v", err)
	}
	if head.EmpID != "H1" {
		t.Errorf("expected head H1, got %q", head.EmpID)
	}

	if _, err := GetDepartmentHead(ctx, database, "Finance"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for department without head, got %v", err)
	}
}

func TestListUsersByRole(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateUser(ctx, database, "A1", "admin@example.com", "Admin", "", "hash", model.RoleAdmin)
	CreateUser(ctx, database, "H1", "head@example.com", "Eva", "IT", "hash", model.RoleHead)
	CreateUser(ctx, database, "E1", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee)

	all, _ := ListUsers(ctx, database, "")
	if len(all) != 3 {
		t.Errorf("expected 3 users, got %d", len(all))
	}

	heads, _ := ListUsers(ctx, database, model.RoleHead)
	if len(heads) != 1 || heads[0].EmpID != "H1" {
		t.Errorf("expected only the head account, got %v", heads)
	}
}

func TestUpdateUser(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	user, _ := CreateUser(ctx, database, "E1", "jan@example.com", "Jan", "IT", "hash", model.RoleEmployee)

	if err := UpdateUser(ctx, database, user.ID, "Jan Novak", "HR", model.RoleHead); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	got, _ := GetUser(ctx, database, user.ID)
	if got.Name != "Jan Novak" || got.Department != "HR" || got.Role != model.RoleHead {
		t.Errorf("unexpected user after update: %+v", got)
	}

	if err := UpdateUserPassword(ctx, database, user.ID, "newhash"); err != nil {
		t.Fatalf("UpdateUserPassword: %v", err)
	}
	got, _ = GetUser(ctx, database, user.ID)
	if got.PasswordHash != "newhash" {
		t.Errorf("expected updated password hash")
	}

	if err := UpdateUser(ctx, database, 9999, "X", "", model.RoleEmployee); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
