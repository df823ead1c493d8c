package model

import "time"

// ProgressLog is a trainee's self-reported measurement snapshot.
// Measurements is free-form (chest, waist, arms, ...); photos are
// base64-encoded images from the mobile client.
type ProgressLog struct {
	ID                string             `json:"id"`
	MemberID          string             `json:"member_id"`
	GymID             string             `json:"gym_id"`
	Weight            *float64           `json:"weight"`
	BodyFatPercentage *float64           `json:"body_fat_percentage"`
	Measurements      map[string]float64 `json:"measurements,omitempty"`
	Photos            []string           `json:"photos,omitempty"`
	Notes             *string            `json:"notes"`
	LoggedDate        time.Time          `json:"logged_date"`
}
