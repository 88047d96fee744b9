package images

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Manifest is the on-disk bookkeeping for generated variants. The cache
// itself is addressed purely by file name; the manifest exists so operators
// can inspect what a pass produced and prune stale variants out of band.
type Manifest struct {
	db *sql.DB
}

const manifestSchema = `
CREATE TABLE IF NOT EXISTS variants (
	source_hash TEXT NOT NULL,
	source_path TEXT NOT NULL,
	width       INTEGER NOT NULL,
	format      TEXT NOT NULL,
	file        TEXT NOT NULL,
	created_at  TIMESTAMP NOT NULL,
	PRIMARY KEY (source_hash, width, format)
);
`

// OpenManifest opens (creating if needed) the variant manifest database.
func OpenManifest(path string) (*Manifest, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", path, err)
	}
	if _, err := db.Exec(manifestSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init manifest schema: %w", err)
	}
	return &Manifest{db: db}, nil
}

// Record upserts one generated variant.
func (m *Manifest) Record(ctx context.Context, sourceHash, sourcePath string, width int, format Format, file string) error {
	_, err := m.db.ExecContext(ctx, `
		INSERT INTO variants (source_hash, source_path, width, format, file, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (source_hash, width, format) DO UPDATE SET file = excluded.file`,
		sourceHash, sourcePath, width, string(format), file, time.Now().UTC())
	return err
}

// Count returns the number of recorded variants.
func (m *Manifest) Count(ctx context.Context) (int, error) {
	var n int
	err := m.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM variants`).Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (m *Manifest) Close() error {
	return m.db.Close()
}
