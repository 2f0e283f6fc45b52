package database

import (
	"fmt"
)

// copyBatch is the number of rows read from the source per query.
const copyBatch = 500

// CopyResult counts the rows seen by CopyHistory.
type CopyResult struct {
	Read    int64
	Copied  int64
	Skipped int64
}

// CopyHistory copies every history entry of src into dst, keeping ids so
// that a repeated run skips rows already present. With dryRun set nothing
// is written and Copied counts the rows that would be.
func CopyHistory(src, dst *Database, dryRun bool) (CopyResult, error) {
	var res CopyResult

	insert := dst.qb.Build(`INSERT INTO console_history (id, source, command, input, status, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	exists := dst.qb.Build(`SELECT COUNT(*) FROM console_history WHERE id = ?`)
	page := src.qb.Build(`SELECT id, source, command, input, status, message, created_at
		FROM console_history WHERE id > ? ORDER BY id LIMIT ?`)

	var after int64
	for {
		rows, err := src.db.Query(page, after, copyBatch)
		if err != nil {
			return res, fmt.Errorf("read history: %w", err)
		}

		var batch []historyRow
		for rows.Next() {
			var r historyRow
			if err := rows.Scan(&r.id, &r.source, &r.command, &r.input, &r.status, &r.message, &r.createdAt); err != nil {
				rows.Close()
				return res, fmt.Errorf("scan history: %w", err)
			}
			batch = append(batch, r)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return res, fmt.Errorf("read history: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		tx, err := dst.db.Begin()
		if err != nil {
			return res, fmt.Errorf("begin copy: %w", err)
		}
		for _, r := range batch {
			res.Read++
			after = r.id

			var n int
			if err := tx.QueryRow(exists, r.id).Scan(&n); err != nil {
				tx.Rollback()
				return res, fmt.Errorf("check entry %d: %w", r.id, err)
			}
			if n > 0 {
				res.Skipped++
				continue
			}
			res.Copied++
			if dryRun {
				continue
			}
			if _, err := tx.Exec(insert, r.id, r.source, r.command, r.input, r.status, r.message, r.createdAt); err != nil {
				tx.Rollback()
				return res, fmt.Errorf("copy entry %d: %w", r.id, err)
			}
		}
		if err := tx.Commit(); err != nil {
			return res, fmt.Errorf("commit copy: %w", err)
		}
	}

	if !dryRun && res.Copied > 0 {
		if stmt := dst.dialect.ResetSequence("console_history", "id"); stmt != "" {
			if _, err := dst.db.Exec(stmt); err != nil {
				return res, fmt.Errorf("reset id sequence: %w", err)
			}
		}
	}
	return res, nil
}

type historyRow struct {
	id        int64
	source    string
	command   string
	input     string
	status    string
	message   string
	createdAt int64
}
