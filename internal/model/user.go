package model

import "time"

// Role is the closed set of account roles. Roles are fixed at account
// creation; there is no role-change endpoint.
type Role string

const (
	RoleHeadAdmin  Role = "head_admin"
	RoleGymManager Role = "gym_manager"
	RoleTrainer    Role = "trainer"
	RoleTrainee    Role = "trainee"

	// RoleAny matches any authenticated user in role-gated middleware.
	RoleAny Role = ""
)

// Valid reports whether r is one of the four concrete roles.
func (r Role) Valid() bool {
	switch r {
	case RoleHeadAdmin, RoleGymManager, RoleTrainer, RoleTrainee:
		return true
	}
	return false
}

type User struct {
	ID                 string    `json:"id"`
	Email              string    `json:"email"`
	Name               string    `json:"name"`
	Picture            *string   `json:"picture"`
	Role               Role      `json:"role"`
	Phone              *string   `json:"phone"`
	PasswordHash       string    `json:"-"`
	MustChangePassword bool      `json:"must_change_password"`
	CreatedAt          time.Time `json:"created_at"`
}
