package model

import "time"

// Attendance is one member's visit on one day. CheckOutTime stays nil
// until the member scans a second time.
type Attendance struct {
	ID           string     `json:"id"`
	MemberID     string     `json:"member_id"`
	GymID        string     `json:"gym_id"`
	CheckInTime  time.Time  `json:"check_in_time"`
	CheckOutTime *time.Time `json:"check_out_time"`
	Date         string     `json:"date"` // YYYY-MM-DD
}
