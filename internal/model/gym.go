package model

import "time"

type SubscriptionPlan string

const (
	PlanBasic   SubscriptionPlan = "basic"
	PlanPro     SubscriptionPlan = "pro"
	PlanPremium SubscriptionPlan = "premium"
)

func (p SubscriptionPlan) Valid() bool {
	switch p {
	case PlanBasic, PlanPro, PlanPremium:
		return true
	}
	return false
}

type Gym struct {
	ID                 string           `json:"id"`
	Name               string           `json:"name"`
	Address            string           `json:"address"`
	City               string           `json:"city"`
	State              string           `json:"state"`
	OwnerID            string           `json:"owner_id"`
	QRCode             string           `json:"qr_code"` // base64-encoded PNG
	KYCVerified        bool             `json:"kyc_verified"`
	IsActive           bool             `json:"is_active"`
	Phone              string           `json:"phone"`
	Email              string           `json:"email"`
	RegistrationDate   time.Time        `json:"registration_date"`
	SubscriptionPlan   SubscriptionPlan `json:"subscription_plan"`
	SubscriptionExpiry *time.Time       `json:"subscription_expiry"`
	StripeCustomerID   string           `json:"-"`
}

// GymStats is the member/attendance summary attached to gym responses.
type GymStats struct {
	TotalMembers    int `json:"total_members"`
	ActiveMembers   int `json:"active_members"`
	TodayAttendance int `json:"today_attendance,omitempty"`
}
