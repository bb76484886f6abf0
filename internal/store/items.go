package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jvolk/stockroom/internal/model"
)

// CreateItem adds a new catalog item with an initial quantity.
// Item names collide case-sensitively; a collision returns model.ErrDuplicate.
func CreateItem(ctx context.Context, db *sql.DB, name string, quantity int) (*model.Item, error) {
	if strings.TrimSpace(name) == "" {
		return nil, model.Invalid("item name required")
	}
	if quantity < 0 {
		return nil, model.Invalid("quantity must not be negative")
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, quantity) VALUES (?, ?)`,
		name, quantity,
	)
	if isUniqueViolation(err) {
		return nil, fmt.Errorf("item %q: %w", name, model.ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting item id: %w", err)
	}

	return GetItem(ctx, db, id)
}

// GetItem returns an item by ID, or model.ErrNotFound.
func GetItem(ctx context.Context, db *sql.DB, id int64) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, quantity, image_mime, created_at, updated_at
		 FROM items WHERE id = ?`, id,
	).Scan(&item.ID, &item.Name, &item.Quantity, &imageMime, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// GetItemByName returns an item by its exact (case-sensitive) name,
// or model.ErrNotFound.
func GetItemByName(ctx context.Context, db *sql.DB, name string) (*model.Item, error) {
	item := &model.Item{}
	var imageMime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT id, name, quantity, image_mime, created_at, updated_at
		 FROM items WHERE name = ?`, name,
	).Scan(&item.ID, &item.Name, &item.Quantity, &imageMime, &item.CreatedAt, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting item by name: %w", err)
	}
	item.ImageMime = imageMime.String
	return item, nil
}

// ListItems returns the full catalog, including zero-quantity items.
// Callers filter for display.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, name, quantity, image_mime, created_at, updated_at
		 FROM items ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		var item model.Item
		var imageMime sql.NullString
		if err := rows.Scan(&item.ID, &item.Name, &item.Quantity, &imageMime, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.ImageMime = imageMime.String
		items = append(items, item)
	}
	return items, rows.Err()
}

// SetItemQuantity overwrites an item's available quantity absolutely.
func SetItemQuantity(ctx context.Context, db *sql.DB, id int64, quantity int) error {
	if quantity < 0 {
		return model.Invalid("quantity must not be negative")
	}

	result, err := db.ExecContext(ctx,
		`UPDATE items SET quantity = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		quantity, id,
	)
	if err != nil {
		return fmt.Errorf("setting item quantity: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// DeleteItem removes an item from the catalog. Deletion is permanent.
func DeleteItem(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx,
		`DELETE FROM items WHERE id = ?`, id,
	)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// ReserveItem atomically decrements an item's quantity if sufficient stock is
// available. The check and decrement are a single conditional UPDATE, so
// concurrent reservations for the same item can never drive quantity negative.
// On a shortfall it returns a model.InsufficientStockError carrying the
// item's name and actual availability.
func ReserveItem(ctx context.Context, db *sql.DB, id int64, quantity int) error {
	return reserveItem(ctx, db, id, quantity)
}

// ReserveItemTx is ReserveItem inside a caller-owned transaction.
func ReserveItemTx(ctx context.Context, tx *sql.Tx, id int64, quantity int) error {
	return reserveItem(ctx, tx, id, quantity)
}

func reserveItem(ctx context.Context, q execer, id int64, quantity int) error {
	if quantity <= 0 {
		return model.Invalid("quantity must be positive")
	}

	result, err := q.ExecContext(ctx,
		`UPDATE items SET quantity = quantity - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND quantity >= ?`,
		quantity, id, quantity,
	)
	if err != nil {
		return fmt.Errorf("reserving item: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserving item: %w", err)
	}
	if n > 0 {
		return nil
	}

	// The conditional update matched nothing: either the item is unknown or
	// the stock is short. Distinguish and report the actual availability.
	var name string
	var available int
	err = q.QueryRowContext(ctx,
		`SELECT name, quantity FROM items WHERE id = ?`, id,
	).Scan(&name, &available)
	if err == sql.ErrNoRows {
		return model.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking item availability: %w", err)
	}

	return &model.InsufficientStockError{Item: name, Requested: quantity, Available: available}
}

// SetItemImage stores an item's catalog photo.
func SetItemImage(ctx context.Context, db *sql.DB, id int64, image []byte, mime string) error {
	result, err := db.ExecContext(ctx,
		`UPDATE items SET image = ?, image_mime = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		image, mime, id,
	)
	if err != nil {
		return fmt.Errorf("setting item image: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return model.ErrNotFound
	}
	return nil
}

// GetItemImage returns an item's catalog photo and MIME type.
// Returns nil data if the item has no photo.
func GetItemImage(ctx context.Context, db *sql.DB, id int64) ([]byte, string, error) {
	var image []byte
	var mime sql.NullString
	err := db.QueryRowContext(ctx,
		`SELECT image, image_mime FROM items WHERE id = ?`, id,
	).Scan(&image, &mime)
	if err == sql.ErrNoRows {
		return nil, "", model.ErrNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("getting item image: %w", err)
	}
	return image, mime.String, nil
}
