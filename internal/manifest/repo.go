package manifest

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/pagesmith/internal/apperr"
)

// PageRow represents a row in the pages table.
type PageRow struct {
	SourcePath string    `json:"source_path"`
	OutputPath string    `json:"output_path"`
	Processor  string    `json:"processor"`
	Title      string    `json:"title"`
	Checksum   string    `json:"checksum"`
	BuiltAt    time.Time `json:"built_at"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	SourcePath string `json:"source_path"`
	OutputPath string `json:"output_path"`
	Title      string `json:"title"`
	Snippet    string `json:"snippet"`
}

// UpsertPage inserts or replaces a page and its search entry within a transaction.
func (db *DB) UpsertPage(p PageRow, body string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("manifest: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if p.BuiltAt.IsZero() {
		p.BuiltAt = time.Now().UTC()
	}
	_, err = tx.Exec(`
		INSERT INTO pages (source_path, output_path, processor, title, checksum, body, built_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_path) DO UPDATE SET
			output_path = excluded.output_path,
			processor   = excluded.processor,
			title       = excluded.title,
			checksum    = excluded.checksum,
			body        = excluded.body,
			built_at    = excluded.built_at
	`, p.SourcePath, p.OutputPath, p.Processor, p.Title, p.Checksum, body, p.BuiltAt)
	if err != nil {
		return fmt.Errorf("manifest: upsert page: %w", err)
	}

	if err := ftsUpsert(tx, p.SourcePath, p.Title, body); err != nil {
		return err
	}
	return tx.Commit()
}

// DeletePage removes a page and its search entry.
func (db *DB) DeletePage(sourcePath string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("manifest: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, sourcePath)
	if _, err := tx.Exec(`DELETE FROM pages WHERE source_path = ?`, sourcePath); err != nil {
		return fmt.Errorf("manifest: delete page: %w", err)
	}
	return tx.Commit()
}

// GetPage returns one page row, or ErrNotFound.
func (db *DB) GetPage(sourcePath string) (*PageRow, error) {
	var p PageRow
	err := db.conn.QueryRow(`
		SELECT source_path, output_path, processor, title, checksum, built_at
		FROM pages WHERE source_path = ?
	`, sourcePath).Scan(&p.SourcePath, &p.OutputPath, &p.Processor, &p.Title, &p.Checksum, &p.BuiltAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("manifest: page %s: %w", sourcePath, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("manifest: get page: %w", err)
	}
	return &p, nil
}

// AllChecksums returns source path → checksum for every recorded page.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT source_path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("manifest: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// ListPages returns a page of rows ordered by source path, optionally
// filtered by processor, together with the total match count.
func (db *DB) ListPages(limit, offset int, processor string) ([]PageRow, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	where := ""
	args := []any{}
	if processor != "" {
		where = "WHERE processor = ?"
		args = append(args, processor)
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM pages `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("manifest: count pages: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT source_path, output_path, processor, title, checksum, built_at
		FROM pages `+where+`
		ORDER BY source_path
		LIMIT ? OFFSET ?
	`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("manifest: list pages: %w", err)
	}
	defer rows.Close()

	var out []PageRow
	for rows.Next() {
		var p PageRow
		if err := rows.Scan(&p.SourcePath, &p.OutputPath, &p.Processor, &p.Title, &p.Checksum, &p.BuiltAt); err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}
