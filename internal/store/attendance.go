package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/fitdesert/fitdesert/internal/model"
)

type AttendanceStore struct {
	db *sql.DB
}

func NewAttendanceStore(db *sql.DB) *AttendanceStore {
	return &AttendanceStore{db: db}
}

func scanAttendance(scanner interface{ Scan(...any) error }) (*model.Attendance, error) {
	var a model.Attendance
	err := scanner.Scan(&a.ID, &a.MemberID, &a.GymID, &a.CheckInTime, &a.CheckOutTime, &a.Date)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const attendanceCols = `id, member_id, gym_id, check_in_time, check_out_time, date`

// CheckIn records a member's arrival for the given calendar date.
func (s *AttendanceStore) CheckIn(ctx context.Context, memberID, gymID string, at time.Time, date string) (*model.Attendance, error) {
	id := newID("att")
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO attendance (id, member_id, gym_id, check_in_time, date) VALUES (?, ?, ?, ?, ?)`,
		id, memberID, gymID, at, date,
	)
	if err != nil {
		return nil, fmt.Errorf("insert attendance: %w", err)
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+attendanceCols+` FROM attendance WHERE id = ?`, id)
	return scanAttendance(row)
}

// GetByMemberAndDate returns the member's attendance row for one day at
// one gym, or nil.
func (s *AttendanceStore) GetByMemberAndDate(ctx context.Context, memberID, gymID, date string) (*model.Attendance, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+attendanceCols+` FROM attendance WHERE member_id = ? AND gym_id = ? AND date = ?`,
		memberID, gymID, date,
	)
	a, err := scanAttendance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance: %w", err)
	}
	return a, nil
}

func (s *AttendanceStore) SetCheckOut(ctx context.Context, id string, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE attendance SET check_out_time = ? WHERE id = ?`, at, id)
	if err != nil {
		return fmt.Errorf("set check out: %w", err)
	}
	return nil
}

// ListByMember returns the member's most recent visits, newest first.
func (s *AttendanceStore) ListByMember(ctx context.Context, memberID string, limit int) ([]*model.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendanceCols+` FROM attendance WHERE member_id = ?
		 ORDER BY check_in_time DESC LIMIT ?`, memberID, limit)
	if err != nil {
		return nil, fmt.Errorf("list attendance by member: %w", err)
	}
	defer rows.Close()

	var records []*model.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

// ListByGymBetween returns a gym's attendance with check-in times in
// [from, to).
func (s *AttendanceStore) ListByGymBetween(ctx context.Context, gymID string, from, to time.Time) ([]*model.Attendance, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+attendanceCols+` FROM attendance
		 WHERE gym_id = ? AND check_in_time >= ? AND check_in_time < ?
		 ORDER BY check_in_time`, gymID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list attendance by gym: %w", err)
	}
	defer rows.Close()

	var records []*model.Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (s *AttendanceStore) CountByGymAndDate(ctx context.Context, gymID, date string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE gym_id = ? AND date = ?`, gymID, date).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

func (s *AttendanceStore) CountByGymSince(ctx context.Context, gymID string, since time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attendance WHERE gym_id = ? AND check_in_time >= ?`,
		gymID, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count attendance since: %w", err)
	}
	return count, nil
}

func (s *AttendanceStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE member_id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete attendance by member: %w", err)
	}
	return nil
}

func (s *AttendanceStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete attendance by gym: %w", err)
	}
	return nil
}
