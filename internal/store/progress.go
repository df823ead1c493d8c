package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type ProgressStore struct {
	db *sql.DB
}

func NewProgressStore(db *sql.DB) *ProgressStore {
	return &ProgressStore{db: db}
}

func scanProgressLog(scanner interface{ Scan(...any) error }) (*model.ProgressLog, error) {
	var p model.ProgressLog
	var measurements, photos *string
	err := scanner.Scan(&p.ID, &p.MemberID, &p.GymID, &p.Weight, &p.BodyFatPercentage,
		&measurements, &photos, &p.Notes, &p.LoggedDate)
	if err != nil {
		return nil, err
	}
	if measurements != nil {
		if err := json.Unmarshal([]byte(*measurements), &p.Measurements); err != nil {
			return nil, fmt.Errorf("decode measurements: %w", err)
		}
	}
	if photos != nil {
		if err := json.Unmarshal([]byte(*photos), &p.Photos); err != nil {
			return nil, fmt.Errorf("decode photos: %w", err)
		}
	}
	return &p, nil
}

const progressCols = `id, member_id, gym_id, weight, body_fat_percentage, measurements, photos, notes, logged_date`

type NewProgressLog struct {
	MemberID          string
	GymID             string
	Weight            *float64
	BodyFatPercentage *float64
	Measurements      map[string]float64
	Photos            []string
	Notes             *string
}

func (s *ProgressStore) Create(ctx context.Context, n NewProgressLog) (*model.ProgressLog, error) {
	var measurements, photos *string
	if n.Measurements != nil {
		encoded, err := json.Marshal(n.Measurements)
		if err != nil {
			return nil, fmt.Errorf("encode measurements: %w", err)
		}
		str := string(encoded)
		measurements = &str
	}
	if n.Photos != nil {
		encoded, err := json.Marshal(n.Photos)
		if err != nil {
			return nil, fmt.Errorf("encode photos: %w", err)
		}
		str := string(encoded)
		photos = &str
	}

	id := newID("prog")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO progress_logs (id, member_id, gym_id, weight, body_fat_percentage, measurements, photos, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, n.MemberID, n.GymID, n.Weight, n.BodyFatPercentage, measurements, photos, n.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert progress log: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+progressCols+` FROM progress_logs WHERE id = ?`, id)
	return scanProgressLog(row)
}

// ListByMember returns the member's progress history, newest first.
func (s *ProgressStore) ListByMember(ctx context.Context, memberID string, limit int) ([]*model.ProgressLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+progressCols+` FROM progress_logs WHERE member_id = ?
		 ORDER BY logged_date DESC LIMIT ?`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list progress logs: %w", err)
	}
	defer rows.Close()

	var logs []*model.ProgressLog
	for rows.Next() {
		p, err := scanProgressLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan progress log: %w", err)
		}
		logs = append(logs, p)
	}
	return logs, rows.Err()
}

func (s *ProgressStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress_logs WHERE member_id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete progress logs by member: %w", err)
	}
	return nil
}

func (s *ProgressStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM progress_logs WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete progress logs by gym: %w", err)
	}
	return nil
}
