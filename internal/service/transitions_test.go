package service

import (
	"testing"

	"civicdesk/internal/model"
)

func TestValidAppointmentTransition(t *testing.T) {
	cases := []struct {
		action string
		from   model.AppointmentStatus
		valid  bool
	}{
		{"approve", model.AppointmentPending, true},
		{"approve", model.AppointmentApproved, false},
		{"approve", model.AppointmentCancelled, false},
		{"reject", model.AppointmentPending, true},
		{"reject", model.AppointmentCompleted, false},
		{"complete", model.AppointmentApproved, true},
		{"complete", model.AppointmentPending, false},
		{"complete", model.AppointmentCompleted, false},
		{"complete", model.AppointmentRejected, false},
		{"unknown", model.AppointmentPending, false},
	}

	for _, tt := range cases {
		if got := ValidAppointmentTransition(tt.action, tt.from); got != tt.valid {
			t.Fatalf("ValidAppointmentTransition(%q, %q)=%v, want %v", tt.action, tt.from, got, tt.valid)
		}
	}
}
