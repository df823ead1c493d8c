package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type BackupStore struct {
	db *sql.DB
}

func NewBackupStore(db *sql.DB) *BackupStore {
	return &BackupStore{db: db}
}

func (s *BackupStore) Create(ctx context.Context, objectKey string, sizeBytes int64) (*model.Backup, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO backups (object_key, size_bytes) VALUES (?, ?)`,
		objectKey, sizeBytes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert backup: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, object_key, size_bytes, created_at FROM backups WHERE id = ?`, id)
	var b model.Backup
	if err := row.Scan(&b.ID, &b.ObjectKey, &b.SizeBytes, &b.CreatedAt); err != nil {
		return nil, fmt.Errorf("get backup: %w", err)
	}
	return &b, nil
}

// Latest returns the most recent backup record, or nil if none exist.
func (s *BackupStore) Latest(ctx context.Context) (*model.Backup, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, object_key, size_bytes, created_at FROM backups ORDER BY id DESC LIMIT 1`)
	var b model.Backup
	err := row.Scan(&b.ID, &b.ObjectKey, &b.SizeBytes, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest backup: %w", err)
	}
	return &b, nil
}
