package store

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jvolk/stockroom/internal/db"
	"github.com/jvolk/stockroom/internal/model"
)

func TestCreateAndGetItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := CreateItem(ctx, database, "A4 PAPER", 100)
	if err != nil {
		t.Fatalf("CreateItem: %v", err)
	}
	if item.Name != "A4 PAPER" {
		t.Errorf("expected name 'A4 PAPER', got %q", item.Name)
	}
	if item.Quantity != 100 {
		t.Errorf("expected quantity 100, got %d", item.Quantity)
	}

	byName, err := GetItemByName(ctx, database, "A4 PAPER")
	if err != nil {
		t.Fatalf("GetItemByName: %v", err)
	}
	if byName.ID != item.ID {
		t.Errorf("expected id %d by name, got %d", item.ID, byName.ID)
	}
	if _, err := GetItemByName(ctx, database, "a4 paper"); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("name lookup is case-sensitive, expected ErrNotFound, got %v", err)
	}
}

func TestCreateItemDuplicateName(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "PEN", 10)
	_, err := CreateItem(ctx, database, "PEN", 5)
	if !errors.Is(err, model.ErrDuplicate) {
		t.Errorf("expected ErrDuplicate, got %v", err)
	}

	// Names collide case-sensitively; a different casing is a new item.
	if _, err := CreateItem(ctx, database, "Pen", 5); err != nil {
		t.Errorf("expected differently-cased name to be accepted, got %v", err)
	}
}

func TestCreateItemRejectsBadInput(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	var validationErr *model.ValidationError

	_, err := CreateItem(ctx, database, "", 10)
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for empty name, got %v", err)
	}

	_, err = CreateItem(ctx, database, "STAPLER", -1)
	if !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for negative quantity, got %v", err)
	}
}

func TestListItemsIncludesZeroQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	CreateItem(ctx, database, "ERASER", 0)
	CreateItem(ctx, database, "PENCIL", 50)

	items, err := ListItems(ctx, database)
	if err != nil {
		t.Fatalf("ListItems: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestSetItemQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "SCISSOR", 10)

	if err := SetItemQuantity(ctx, database, item.ID, 25); err != nil {
		t.Fatalf("SetItemQuantity: %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 25 {
		t.Errorf("expected quantity 25, got %d", got.Quantity)
	}

	var validationErr *model.ValidationError
	if err := SetItemQuantity(ctx, database, item.ID, -5); !errors.As(err, &validationErr) {
		t.Errorf("expected validation error for negative quantity, got %v", err)
	}

	if err := SetItemQuantity(ctx, database, 9999, 1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown item, got %v", err)
	}
}

func TestDeleteItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "CUTTER", 5)

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}
	if _, err := GetItem(ctx, database, item.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := DeleteItem(ctx, database, item.ID); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound for double delete, got %v", err)
	}
}

func TestReserveItem(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "NOTE PAD", 10)

	if err := ReserveItem(ctx, database, item.ID, 4); err != nil {
		t.Fatalf("ReserveItem: %v", err)
	}
	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 6 {
		t.Errorf("expected quantity 6, got %d", got.Quantity)
	}
}

func TestReserveItemInsufficientStock(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "PEN", 5)

	err := ReserveItem(ctx, database, item.ID, 10)
	var stockErr *model.InsufficientStockError
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.Item != "PEN" || stockErr.Available != 5 || stockErr.Requested != 10 {
		t.Errorf("unexpected error details: %+v", stockErr)
	}

	// Quantity is untouched by the failed reservation.
	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 5 {
		t.Errorf("expected quantity 5 after failed reservation, got %d", got.Quantity)
	}
}

func TestReserveItemUnknown(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := ReserveItem(ctx, database, 42, 1); !errors.Is(err, model.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReserveItemConcurrent(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "STICKY NOTE", 5)

	// 20 goroutines compete for 5 units; exactly 5 may win and the quantity
	// must never go negative.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := ReserveItem(ctx, database, item.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 5 {
		t.Errorf("expected exactly 5 successful reservations, got %d", succeeded)
	}

	got, _ := GetItem(ctx, database, item.ID)
	if got.Quantity != 0 {
		t.Errorf("expected quantity 0, got %d", got.Quantity)
	}
}

func TestItemImage(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, "BOX FILE", 5)
	if err := SetItemImage(ctx, database, item.ID, []byte("fake image data"), "image/jpeg"); err != nil {
		t.Fatalf("SetItemImage: %v", err)
	}

	data, mime, err := GetItemImage(ctx, database, item.ID)
	if err != nil {
		t.Fatalf("GetItemImage: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}
	if mime != "image/jpeg" {
		t.Errorf("expected mime 'image/jpeg', got %q", mime)
	}
}
