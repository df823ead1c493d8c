// Package backup snapshots the SQLite database, encrypts the snapshot,
// and ships it to S3-compatible storage on a daily schedule.
package backup

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sethvargo/go-retry"

	"github.com/fitdesert/fitdesert/internal/model"
	"github.com/fitdesert/fitdesert/internal/store"
)

// s3Client is the slice of the S3 API the manager uses. Narrowed for
// tests.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config holds S3-compatible storage configuration.
type S3Config struct {
	Endpoint  string
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
}

// Config holds backup manager configuration.
type Config struct {
	S3           S3Config
	DBPath       string
	Passphrase   string
	ScheduleHour int // UTC hour for the daily run
}

// Manager runs scheduled and on-demand encrypted database backups.
type Manager struct {
	cfg     Config
	db      *sql.DB
	store   *store.BackupStore
	client  s3Client
	logger  *slog.Logger
	backoff time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(cfg Config, db *sql.DB, bs *store.BackupStore, logger *slog.Logger) *Manager {
	m := &Manager{cfg: cfg, db: db, store: bs, logger: logger, backoff: 2 * time.Second}
	if m.Configured() {
		m.client = newS3Client(cfg.S3)
	}
	return m
}

// Configured reports whether storage credentials and a passphrase are set.
func (m *Manager) Configured() bool {
	return m.cfg.S3.Bucket != "" && m.cfg.S3.AccessKey != "" &&
		m.cfg.S3.SecretKey != "" && m.cfg.Passphrase != ""
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Start begins the daily backup loop. It returns immediately when the
// manager is not configured.
func (m *Manager) Start(ctx context.Context) {
	if !m.Configured() {
		m.logger.Info("backups disabled: storage not configured")
		return
	}

	m.mu.Lock()
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	m.mu.Unlock()

	go func() {
		defer close(m.done)
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().UTC()
				if now.Hour() != m.cfg.ScheduleHour || now.Minute() != 0 {
					continue
				}
				if _, err := m.RunNow(ctx); err != nil {
					m.logger.Error("scheduled backup failed", "error", err)
				}
			}
		}
	}()
}

// Stop halts the backup loop and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// RunNow snapshots, encrypts, and uploads the database, then records
// the backup. The upload is retried with backoff on transient failures.
func (m *Manager) RunNow(ctx context.Context) (*model.Backup, error) {
	if !m.Configured() {
		return nil, fmt.Errorf("backups not configured")
	}

	// Fold the WAL into the main file so the snapshot is complete.
	if _, err := m.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return nil, fmt.Errorf("wal checkpoint: %w", err)
	}

	snapshot, err := os.ReadFile(m.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}

	encrypted, err := Encrypt(snapshot, m.cfg.Passphrase)
	if err != nil {
		return nil, fmt.Errorf("encrypt snapshot: %w", err)
	}

	key := fmt.Sprintf("backups/%s.db.enc", time.Now().UTC().Format("2006-01-02T150405Z"))

	backoff := retry.WithMaxRetries(3, retry.NewExponential(m.backoff))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(m.cfg.S3.Bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(encrypted),
			ContentLength: aws.Int64(int64(len(encrypted))),
		})
		if err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("upload backup: %w", err)
	}

	record, err := m.store.Create(ctx, key, int64(len(encrypted)))
	if err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}

	m.logger.Info("backup uploaded", "key", key, "size_bytes", record.SizeBytes)
	return record, nil
}
