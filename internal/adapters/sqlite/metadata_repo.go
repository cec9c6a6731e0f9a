package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Guilhem-Bonnet/xdraft/internal/domain"
)

type MetadataRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewMetadataRepository(db *sql.DB) *MetadataRepository {
	return &MetadataRepository{db: db, now: time.Now}
}

func (r *MetadataRepository) SetMetadata(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata(key, value) VALUES(?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func (r *MetadataRepository) Metadata(ctx context.Context, key string) (string, error) {
	var v sql.NullString
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NeverUpdated, nil
		}
		return "", err
	}
	return v.String, nil
}

// TouchLastUpdated stamps the last_updated key with the current time.
func (r *MetadataRepository) TouchLastUpdated(ctx context.Context) (string, error) {
	ts := r.now().UTC().Format(time.RFC3339)
	return ts, r.SetMetadata(ctx, domain.MetaLastUpdated, ts)
}

func (r *MetadataRepository) LastUpdated(ctx context.Context) (string, error) {
	return r.Metadata(ctx, domain.MetaLastUpdated)
}
