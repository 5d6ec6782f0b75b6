package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentApproved  AppointmentStatus = "approved"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentRejected  AppointmentStatus = "rejected"
)

// IsTerminal reports whether the status is an end state with no further
// transitions.
func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case AppointmentCompleted, AppointmentCancelled, AppointmentRejected:
		return true
	}
	return false
}

// Blocks reports whether an appointment in this status keeps its time slot
// out of the bookable pool. Cancelled and rejected appointments release the
// slot back.
func (s AppointmentStatus) Blocks() bool {
	return s == AppointmentPending || s == AppointmentApproved
}

type Appointment struct {
	ID        int64             `json:"id"`
	Reference uuid.UUID         `json:"reference"`
	RequestID int64             `json:"request_id"`
	OfficeID  int64             `json:"office_id"`
	UserID    int64             `json:"user_id"`
	Date      time.Time         `json:"date"`
	Time      *string           `json:"time"` // "HH:MM" office-local, nil until a slot is picked
	Status    AppointmentStatus `json:"status"`
	Notes     *string           `json:"notes,omitempty"`
	StaffID   *int64            `json:"staff_id,omitempty"` // assigned approver
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`

	Request *Request `json:"request,omitempty"`
}
