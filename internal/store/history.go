package store

import (
	"context"
	"database/sql"
	"strconv"

	"musicalist/internal/history"
)

const metaHistoryIndex = "history_index"

// LoadHistory restores the persisted navigation history so the CLI can undo
// across invocations. A fresh store yields an empty stack.
func (s Store) LoadHistory(ctx context.Context, limit int) (*history.Stack, error) {
	db, err := s.openSQLite(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT location FROM history ORDER BY seq ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		entries = append(entries, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	index := len(entries) - 1
	if v, ok, err := s.metaGet(ctx, db, metaHistoryIndex); err != nil {
		return nil, err
	} else if ok {
		if n, err := strconv.Atoi(v); err == nil {
			index = n
		}
	}
	return history.RestoreStack(entries, index, limit), nil
}

// SaveHistory replaces the persisted history with st.
func (s Store) SaveHistory(ctx context.Context, st *history.Stack) error {
	entries, index := st.Snapshot()

	db, err := s.openSQLite(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM history`); err != nil {
		return err
	}
	for i, loc := range entries {
		if _, err := tx.ExecContext(ctx, `INSERT INTO history(seq, location) VALUES(?, ?)`, i, loc); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `INSERT OR REPLACE INTO meta(k, v) VALUES(?, ?)`, metaHistoryIndex, strconv.Itoa(index)); err != nil {
		return err
	}
	return tx.Commit()
}
