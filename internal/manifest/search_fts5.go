//go:build sqlite_fts5

package manifest

import (
	"database/sql"
	"fmt"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS pages_fts USING fts5(
			source_path UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, sourcePath, title, body string) error {
	_, _ = tx.Exec(`DELETE FROM pages_fts WHERE source_path = ?`, sourcePath)
	_, err := tx.Exec(`INSERT INTO pages_fts (source_path, title, body) VALUES (?, ?, ?)`,
		sourcePath, title, body)
	if err != nil {
		return fmt.Errorf("manifest: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, sourcePath string) {
	_, _ = tx.Exec(`DELETE FROM pages_fts WHERE source_path = ?`, sourcePath)
}

// Search performs an FTS5 full-text search and returns hits with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT f.source_path,
		       p.output_path,
		       f.title,
		       snippet(pages_fts, 2, '<b>', '</b>', '...', 64)
		FROM pages_fts f
		JOIN pages p ON p.source_path = f.source_path
		WHERE pages_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("manifest: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.SourcePath, &r.OutputPath, &r.Title, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
