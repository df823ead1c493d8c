package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type WorkoutPlanStore struct {
	db *sql.DB
}

func NewWorkoutPlanStore(db *sql.DB) *WorkoutPlanStore {
	return &WorkoutPlanStore{db: db}
}

func scanWorkoutPlan(scanner interface{ Scan(...any) error }) (*model.WorkoutPlan, error) {
	var p model.WorkoutPlan
	var days string
	err := scanner.Scan(&p.ID, &p.MemberID, &p.TrainerID, &p.GymID, &p.PlanName,
		&days, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(days), &p.WorkoutDays); err != nil {
		return nil, fmt.Errorf("decode workout days: %w", err)
	}
	return &p, nil
}

const workoutPlanCols = `id, member_id, trainer_id, gym_id, plan_name, workout_days, created_at, updated_at`

func (s *WorkoutPlanStore) Create(ctx context.Context, memberID, trainerID, gymID, planName string, days []model.WorkoutDay) (*model.WorkoutPlan, error) {
	encoded, err := json.Marshal(days)
	if err != nil {
		return nil, fmt.Errorf("encode workout days: %w", err)
	}

	id := newID("workout")
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workout_plans (id, member_id, trainer_id, gym_id, plan_name, workout_days)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, memberID, trainerID, gymID, planName, string(encoded),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout plan: %w", err)
	}
	return s.getByID(ctx, id)
}

func (s *WorkoutPlanStore) getByID(ctx context.Context, id string) (*model.WorkoutPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+workoutPlanCols+` FROM workout_plans WHERE id = ?`, id)
	p, err := scanWorkoutPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workout plan: %w", err)
	}
	return p, nil
}

// GetByMember returns the member's current plan (the most recently
// created one), or nil.
func (s *WorkoutPlanStore) GetByMember(ctx context.Context, memberID string) (*model.WorkoutPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+workoutPlanCols+` FROM workout_plans WHERE member_id = ?
		 ORDER BY created_at DESC LIMIT 1`, memberID)
	p, err := scanWorkoutPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workout plan by member: %w", err)
	}
	return p, nil
}

func (s *WorkoutPlanStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workout_plans WHERE member_id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete workout plans by member: %w", err)
	}
	return nil
}

func (s *WorkoutPlanStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM workout_plans WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete workout plans by gym: %w", err)
	}
	return nil
}
