package quotes

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // register sqlite driver
)

const cacheSchemaSQL = `
CREATE TABLE IF NOT EXISTS quotes (
    symbol     TEXT NOT NULL,
    day        TEXT NOT NULL,
    price      REAL NOT NULL,
    PRIMARY KEY (symbol, day)
);
`

// Cache stores one quote per symbol per day so a profile can be
// re-projected all day without refetching prices.
type Cache struct {
	db *sql.DB
}

// OpenCache opens or creates the quote cache database at the given path.
func OpenCache(dbPath string) (*Cache, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)")
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}

	if _, err := db.Exec(cacheSchemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Cache{db: db}, nil
}

// Close closes the cache database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached quote for symbol on the given day, if present.
func (c *Cache) Get(symbol, day string) (Quote, bool, error) {
	var price float64
	err := c.db.QueryRow("SELECT price FROM quotes WHERE symbol = ? AND day = ?", symbol, day).Scan(&price)
	if err == sql.ErrNoRows {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, err
	}
	return Quote{Price: price, AsOf: day}, true, nil
}

// Put stores a quote for symbol on the given day, replacing any earlier
// entry for the same day.
func (c *Cache) Put(symbol, day string, quote Quote) error {
	_, err := c.db.Exec(`INSERT OR REPLACE INTO quotes (symbol, day, price)
		VALUES (?, ?, ?)`, symbol, day, quote.Price)
	return err
}

// Prune deletes entries older than the given day.
func (c *Cache) Prune(day string) error {
	_, err := c.db.Exec("DELETE FROM quotes WHERE day < ?", day)
	return err
}
