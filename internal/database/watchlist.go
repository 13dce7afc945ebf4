package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jdoyle7/stock-valuation-system/internal/models"
)

// UpsertWatchlistEntry adds a ticker to the valuation watchlist, or
// updates it if the symbol is already present
func (db *DB) UpsertWatchlistEntry(e *models.WatchlistEntry) error {
	query := `
		INSERT INTO watchlist (symbol, enabled, priority, note, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (symbol) DO UPDATE SET
			enabled = EXCLUDED.enabled,
			priority = EXCLUDED.priority,
			note = EXCLUDED.note,
			updated_at = EXCLUDED.updated_at
	`
	now := time.Now()
	if e.Priority == 0 {
		e.Priority = 1
	}

	_, err := db.conn.Exec(query, e.Symbol, e.Enabled, e.Priority, e.Note, now, now)
	if err != nil {
		return fmt.Errorf("failed to upsert watchlist entry: %w", err)
	}
	e.AddedAt = now
	e.UpdatedAt = now
	return nil
}

// GetWatchlistEntry retrieves a watchlist entry by symbol
func (db *DB) GetWatchlistEntry(symbol string) (*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, priority, note, added_at, updated_at
		FROM watchlist
		WHERE symbol = $1
	`
	var e models.WatchlistEntry
	var note sql.NullString

	err := db.conn.QueryRow(query, symbol).Scan(
		&e.Symbol, &e.Enabled, &e.Priority, &note, &e.AddedAt, &e.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get watchlist entry: %w", err)
	}

	if note.Valid {
		e.Note = note.String
	}
	return &e, nil
}

// GetAllWatchlistEntries retrieves every watchlist entry
func (db *DB) GetAllWatchlistEntries() ([]*models.WatchlistEntry, error) {
	query := `
		SELECT symbol, enabled, priority, note, added_at, updated_at
		FROM watchlist
		ORDER BY priority ASC, symbol ASC
	`
	return db.scanWatchlistEntries(db.conn.Query(query))
}

// GetEnabledSymbols returns the symbols of enabled watchlist entries,
// in priority order. This is the ticker universe for a valuation run.
func (db *DB) GetEnabledSymbols() ([]string, error) {
	query := `
		SELECT symbol
		FROM watchlist
		WHERE enabled = true
		ORDER BY priority ASC, symbol ASC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get enabled symbols: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// EnableWatchlistEntry enables a watchlist entry
func (db *DB) EnableWatchlistEntry(symbol string) error {
	return db.setEnabled(symbol, true)
}

// DisableWatchlistEntry disables a watchlist entry without removing it
func (db *DB) DisableWatchlistEntry(symbol string) error {
	return db.setEnabled(symbol, false)
}

func (db *DB) setEnabled(symbol string, enabled bool) error {
	query := `UPDATE watchlist SET enabled = $2, updated_at = $3 WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol, enabled, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}

// DeleteWatchlistEntry removes a ticker from the watchlist
func (db *DB) DeleteWatchlistEntry(symbol string) error {
	query := `DELETE FROM watchlist WHERE symbol = $1`
	result, err := db.conn.Exec(query, symbol)
	if err != nil {
		return fmt.Errorf("failed to delete watchlist entry: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("watchlist entry not found: %s", symbol)
	}
	return nil
}

func (db *DB) scanWatchlistEntries(rows *sql.Rows, err error) ([]*models.WatchlistEntry, error) {
	if err != nil {
		return nil, fmt.Errorf("failed to query watchlist: %w", err)
	}
	defer rows.Close()

	var entries []*models.WatchlistEntry
	for rows.Next() {
		var e models.WatchlistEntry
		var note sql.NullString

		err := rows.Scan(&e.Symbol, &e.Enabled, &e.Priority, &note, &e.AddedAt, &e.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan watchlist entry: %w", err)
		}

		if note.Valid {
			e.Note = note.String
		}
		entries = append(entries, &e)
	}

	return entries, nil
}
