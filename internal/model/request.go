package model

import (
	"time"

	"github.com/google/uuid"
)

// TrackStatus is the state of a single approval track (staff or admin).
// The two tracks are updated independently and never by the same mutation
// path; the customer-visible overall status is derived, never stored.
type TrackStatus string

const (
	TrackPending  TrackStatus = "pending"
	TrackApproved TrackStatus = "approved"
	TrackRejected TrackStatus = "rejected"
)

// Valid reports whether s is one of the three known track states.
func (s TrackStatus) Valid() bool {
	switch s {
	case TrackPending, TrackApproved, TrackRejected:
		return true
	}
	return false
}

type Request struct {
	ID             int64       `json:"id"`
	Reference      uuid.UUID   `json:"reference"`
	ServiceID      int64       `json:"service_id"`
	OfficeID       int64       `json:"office_id"`
	UserID         int64       `json:"user_id"`
	CurrentAddress string      `json:"current_address"`
	RequestedDate  time.Time   `json:"requested_date"`
	StatusByStaff  TrackStatus `json:"status_by_staff"`
	StatusByAdmin  TrackStatus `json:"status_by_admin"`
	ApproveNote    *string     `json:"approve_note,omitempty"`
	StaffDecidedAt *time.Time  `json:"staff_decided_at,omitempty"`
	AdminDecidedAt *time.Time  `json:"admin_decided_at,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`

	// Joined for convenience, not stored on the requests table.
	Service *Service `json:"service,omitempty"`
	Office  *Office  `json:"office,omitempty"`
	User    *User    `json:"user,omitempty"`
}
