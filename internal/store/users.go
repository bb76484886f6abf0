package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jvolk/stockroom/internal/model"
)

// CreateUser creates a new account. Emp IDs and emails collide with active
// accounts only (soft-deleted ones can be re-registered).
func CreateUser(ctx context.Context, db *sql.DB, empID, email, name, department, passwordHash, role string) (*model.User, error) {
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (emp_id, email, name, department, password_hash, role)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		empID, email, name, department, passwordHash, role,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("account for %s: %w", empID, model.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting user id: %w", err)
	}

	return GetUser(ctx, db, id)
}

const userColumns = `id, emp_id, email, name, department, password_hash, role, created_at, deleted_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*model.User, error) {
	u := &model.User{}
	var department sql.NullString
	err := row.Scan(&u.ID, &u.EmpID, &u.Email, &u.Name, &department,
		&u.PasswordHash, &u.Role, &u.CreatedAt, &u.DeletedAt)
	if err != nil {
		return nil, err
	}
	u.Department = department.String
	return u, nil
}

// GetUser returns a user by ID, or model.ErrNotFound.
func GetUser(ctx context.Context, db *sql.DB, id int64) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns an active user by email, or model.ErrNotFound.
func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email,
	))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return u, nil
}

// GetDepartmentHead returns the active head account for a department,
// or model.ErrNotFound.
func GetDepartmentHead(ctx context.Context, db *sql.DB, department string) (*model.User, error) {
	u, err := scanUser(db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role = ? AND department = ? AND deleted_at IS NULL`,
		model.RoleHead, department,
	))
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting department head: %w", err)
	}
	return u, nil
}

// ListUsers returns all active accounts, optionally filtered by role.
func ListUsers(ctx context.Context, db *sql.DB, role string) ([]model.User, error) {
	var rows *sql.Rows
	var err error

	if role != "" {
		rows, err = db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL AND role = ? ORDER BY id`, role)
	} else {
		rows, err = db.QueryContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE deleted_at IS NULL ORDER BY id`)
	}
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUser updates an account's name, department, and role.
func UpdateUser(ctx context.Context, db *sql.DB, id int64, name, department, role string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, department = ?, role = ? WHERE id = ? AND deleted_at IS NULL`,
		name, department, role, id,
	)
	if err != nil {
		return fmt.Errorf("updating user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// UpdateUserPassword updates an account's password hash.
func UpdateUserPassword(ctx context.Context, db *sql.DB, id int64, passwordHash string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET password_hash = ? WHERE id = ? AND deleted_at IS NULL`,
		passwordHash, id,
	)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteUser soft-deletes an account.
func DeleteUser(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`UPDATE users SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}
