package model

import "time"

type PaymentType string

const (
	PaymentNewMembership    PaymentType = "new_membership"
	PaymentRenewal          PaymentType = "renewal"
	PaymentPersonalTraining PaymentType = "personal_training"
	PaymentDietPlan         PaymentType = "diet_plan"
	PaymentAddOn            PaymentType = "add_on"
)

func (t PaymentType) Valid() bool {
	switch t {
	case PaymentNewMembership, PaymentRenewal, PaymentPersonalTraining, PaymentDietPlan, PaymentAddOn:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

type Payment struct {
	ID                string        `json:"id"`
	MemberID          string        `json:"member_id"`
	GymID             string        `json:"gym_id"`
	Amount            float64       `json:"amount"`
	PaymentType       PaymentType   `json:"payment_type"`
	Status            PaymentStatus `json:"status"`
	RazorpayOrderID   *string       `json:"razorpay_order_id"`
	RazorpayPaymentID *string       `json:"razorpay_payment_id"`
	RazorpaySignature *string       `json:"razorpay_signature"`
	InvoiceNumber     *string       `json:"invoice_number"`
	GSTNumber         *string       `json:"gst_number"`
	CreatedAt         time.Time     `json:"created_at"`
	PaymentDate       *time.Time    `json:"payment_date"`

	MemberName string `json:"member_name,omitempty"`
}
