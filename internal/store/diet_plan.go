package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fitdesert/fitdesert/internal/model"
)

type DietPlanStore struct {
	db *sql.DB
}

func NewDietPlanStore(db *sql.DB) *DietPlanStore {
	return &DietPlanStore{db: db}
}

func scanDietPlan(scanner interface{ Scan(...any) error }) (*model.DietPlan, error) {
	var p model.DietPlan
	var meals string
	err := scanner.Scan(&p.ID, &p.MemberID, &p.TrainerID, &p.GymID, &p.PlanName,
		&meals, &p.TotalCalories, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(meals), &p.DailyMeals); err != nil {
		return nil, fmt.Errorf("decode daily meals: %w", err)
	}
	return &p, nil
}

const dietPlanCols = `id, member_id, trainer_id, gym_id, plan_name, daily_meals, total_calories, created_at, updated_at`

func (s *DietPlanStore) Create(ctx context.Context, memberID, trainerID, gymID, planName string, meals []model.Meal, totalCalories *int) (*model.DietPlan, error) {
	encoded, err := json.Marshal(meals)
	if err != nil {
		return nil, fmt.Errorf("encode daily meals: %w", err)
	}

	id := newID("diet")
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO diet_plans (id, member_id, trainer_id, gym_id, plan_name, daily_meals, total_calories)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, memberID, trainerID, gymID, planName, string(encoded), totalCalories,
	)
	if err != nil {
		return nil, fmt.Errorf("insert diet plan: %w", err)
	}
	return s.getByID(ctx, id)
}

func (s *DietPlanStore) getByID(ctx context.Context, id string) (*model.DietPlan, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+dietPlanCols+` FROM diet_plans WHERE id = ?`, id)
	p, err := scanDietPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diet plan: %w", err)
	}
	return p, nil
}

// GetByMember returns the member's current diet plan, or nil.
func (s *DietPlanStore) GetByMember(ctx context.Context, memberID string) (*model.DietPlan, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+dietPlanCols+` FROM diet_plans WHERE member_id = ?
		 ORDER BY created_at DESC LIMIT 1`, memberID)
	p, err := scanDietPlan(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get diet plan by member: %w", err)
	}
	return p, nil
}

func (s *DietPlanStore) DeleteByMember(ctx context.Context, memberID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM diet_plans WHERE member_id = ?`, memberID)
	if err != nil {
		return fmt.Errorf("delete diet plans by member: %w", err)
	}
	return nil
}

func (s *DietPlanStore) DeleteByGym(ctx context.Context, gymID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM diet_plans WHERE gym_id = ?`, gymID)
	if err != nil {
		return fmt.Errorf("delete diet plans by gym: %w", err)
	}
	return nil
}
