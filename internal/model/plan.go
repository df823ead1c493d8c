package model

import "time"

type Exercise struct {
	Name        string  `json:"name"`
	Sets        int     `json:"sets"`
	Reps        int     `json:"reps"`
	RestSeconds int     `json:"rest_seconds"`
	Notes       *string `json:"notes,omitempty"`
}

type WorkoutDay struct {
	Day       string     `json:"day"` // Monday, Tuesday, ...
	Exercises []Exercise `json:"exercises"`
}

type WorkoutPlan struct {
	ID          string       `json:"id"`
	MemberID    string       `json:"member_id"`
	TrainerID   string       `json:"trainer_id"`
	GymID       string       `json:"gym_id"`
	PlanName    string       `json:"plan_name"`
	WorkoutDays []WorkoutDay `json:"workout_days"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Meal struct {
	MealTime string   `json:"meal_time"` // Breakfast, Lunch, Dinner, Snack
	Items    []string `json:"items"`
	Calories *int     `json:"calories,omitempty"`
	Notes    *string  `json:"notes,omitempty"`
}

type DietPlan struct {
	ID            string    `json:"id"`
	MemberID      string    `json:"member_id"`
	TrainerID     string    `json:"trainer_id"`
	GymID         string    `json:"gym_id"`
	PlanName      string    `json:"plan_name"`
	DailyMeals    []Meal    `json:"daily_meals"`
	TotalCalories *int      `json:"total_calories"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
