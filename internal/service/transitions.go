package service

import "civicdesk/internal/model"

// appointmentTransitions maps each staff action to the statuses it may be
// applied from. Completed, cancelled and rejected are end states and appear
// on no right-hand side.
var appointmentTransitions = map[string][]model.AppointmentStatus{
	"approve":  {model.AppointmentPending},
	"reject":   {model.AppointmentPending},
	"complete": {model.AppointmentApproved},
}

// appointmentActionResult is the status an action lands in.
var appointmentActionResult = map[string]model.AppointmentStatus{
	"approve":  model.AppointmentApproved,
	"reject":   model.AppointmentRejected,
	"complete": model.AppointmentCompleted,
}

// ValidAppointmentTransition reports whether the action is allowed from the
// given status.
func ValidAppointmentTransition(action string, from model.AppointmentStatus) bool {
	allowed, ok := appointmentTransitions[action]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
