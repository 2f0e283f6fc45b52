package database

import (
	"fmt"
	"time"

	"github.com/lawnchairsociety/gameconsole/internal/console"
)

// HistoryEntry is one stored sub-command.
type HistoryEntry struct {
	ID        int64
	Source    string
	Command   string
	Input     string
	Status    string
	Message   string
	CreatedAt time.Time
}

// OK reports whether the stored sub-command succeeded.
func (e HistoryEntry) OK() bool {
	return e.Status == console.Success.String()
}

// Append stores entry and returns its ID.
func (d *Database) Append(entry console.Entry, at time.Time) (int64, error) {
	query := d.qb.BuildWithReturning(
		`INSERT INTO console_history (source, command, input, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`, "id")
	args := []any{entry.Source, entry.Command, entry.Input, entry.Status.String(), entry.Message, at.UnixMilli()}

	if !d.dialect.SupportsLastInsertID() {
		var id int64
		if err := d.db.QueryRow(query, args...).Scan(&id); err != nil {
			return 0, fmt.Errorf("append history: %w", err)
		}
		return id, nil
	}

	result, err := d.db.Exec(query, args...)
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}
	return result.LastInsertId()
}

// Record implements console.Recorder synchronously.
func (d *Database) Record(entry console.Entry) error {
	_, err := d.Append(entry, time.Now())
	return err
}

// Recent returns up to limit entries, oldest first.
func (d *Database) Recent(limit int) ([]HistoryEntry, error) {
	return d.query(`SELECT id, source, command, input, status, message, created_at
		FROM console_history ORDER BY id DESC LIMIT ?`, limit)
}

// RecentBySource returns up to limit entries submitted by source, oldest first.
func (d *Database) RecentBySource(source string, limit int) ([]HistoryEntry, error) {
	return d.query(`SELECT id, source, command, input, status, message, created_at
		FROM console_history WHERE source = ? ORDER BY id DESC LIMIT ?`, source, limit)
}

// Count returns the number of stored entries.
func (d *Database) Count() (int, error) {
	var n int
	err := d.db.QueryRow("SELECT COUNT(*) FROM console_history").Scan(&n)
	return n, err
}

// Prune deletes entries older than cutoff and returns how many were removed.
func (d *Database) Prune(cutoff time.Time) (int64, error) {
	result, err := d.db.Exec(d.qb.Build("DELETE FROM console_history WHERE created_at < ?"), cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("prune history: %w", err)
	}
	return result.RowsAffected()
}

func (d *Database) query(query string, args ...any) ([]HistoryEntry, error) {
	rows, err := d.db.Query(d.qb.Build(query), args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e  HistoryEntry
			ms int64
		)
		if err := rows.Scan(&e.ID, &e.Source, &e.Command, &e.Input, &e.Status, &e.Message, &ms); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		e.CreatedAt = time.UnixMilli(ms)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
