package db

import (
	"database/sql"
	"fmt"
)

// defaultCatalog is the stationery catalog loaded on first run, each
// item starting at 100 units. Admins adjust from there.
var defaultCatalog = []string{
	"A3 ENVELOPE GREEN", "A3 PAPER", "A3 TRANSPARENT FOLDER",
	"A4 ENVELOPE GREEN", "A4 LOGO ENVELOPE", "A4 PAPER",
	"A4 TRANSPARENT FOLDER", "BINDER CLIP 19MM", "BINDER CLIP 25MM",
	"BINDER CLIP 41MM", "BOX FILE", "CD MARKER",
	"CALCULATOR", "CARBON PAPERS", "CELLO TAPE",
	"CUTTER", "DUSTER", "ERASER", "FEVI STICK",
	"GEL PEN BLACK", "HIGH LIGHTER", "L FOLDER",
	"LETTER HEAD", "LOGO ENVELOPE SMALL", "NOTE PAD",
	"PEN", "PENCIL", "PERMANENT MARKER",
	"PUNCHING MACHINE", "PUSH PIN", "REGISTER",
	"ROOM SPRAY", "RUBBER BAND BAG", "SCALE",
	"SCISSOR", "FILE SEPARATOR", "SHARPENER",
	"SKETCH PEN", "SILVER PEN", "SPRING FILE",
	"STAMP PAD", "STAMP PAD INK", "STAPLER",
	"STAPLER PIN BIG", "STAPLER PIN SMALL", "STICKY NOTE",
	"TRANSPARENT FILE", "U PIN", "VISITING CARD HOLDER",
	"WHITE BOARD MARKER", "WHITE INK",
}

const seedQuantity = 100

// SeedCatalog inserts the default stationery catalog. Existing items
// are left untouched, so re-running is safe.
func SeedCatalog(db *sql.DB) error {
	stmt, err := db.Prepare(`INSERT OR IGNORE INTO items (name, quantity) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing catalog seed: %w", err)
	}
	defer stmt.Close()

	for _, name := range defaultCatalog {
		if _, err := stmt.Exec(name, seedQuantity); err != nil {
			return fmt.Errorf("seeding item %q: %w", name, err)
		}
	}
	return nil
}
