package model

import "time"

type MembershipStatus string

const (
	StatusActive       MembershipStatus = "active"
	StatusExpiringSoon MembershipStatus = "expiring_soon"
	StatusExpired      MembershipStatus = "expired"
	StatusFrozen       MembershipStatus = "frozen"
)

// Member is one user's membership at one gym. A user may hold memberships
// at several gyms; (user_id, gym_id) is unique.
type Member struct {
	ID                 string           `json:"id"`
	UserID             string           `json:"user_id"`
	GymID              string           `json:"gym_id"`
	Role               Role             `json:"role"` // trainer or trainee
	Photo              *string          `json:"photo"`
	ContactInfo        string           `json:"contact_info"`
	JoiningDate        time.Time        `json:"joining_date"`
	MembershipPlan     *string          `json:"membership_plan"`
	PlanDurationMonths int              `json:"plan_duration_months"`
	MembershipExpiry   time.Time        `json:"membership_expiry"`
	Goal               *string          `json:"goal"`
	AssignedTrainerID  *string          `json:"assigned_trainer_id"`
	Status             MembershipStatus `json:"status"`
	Height             *float64         `json:"height"`
	Weight             *float64         `json:"weight"`
	Age                *int             `json:"age"`

	// Enriched from the users table on read; not stored on the member row.
	UserName  string `json:"user_name,omitempty"`
	UserEmail string `json:"user_email,omitempty"`
}
