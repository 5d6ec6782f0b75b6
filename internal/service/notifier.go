package service

import (
	"context"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"
)

// Notifier delivers decision notifications to the affected citizen.
// Implementations must not fail the calling operation; delivery is best
// effort.
type Notifier interface {
	RequestDecided(ctx context.Context, user *model.User, req *model.Request, overall approval.OverallStatus)
	AppointmentDecided(ctx context.Context, user *model.User, appt *model.Appointment)
	AppointmentReminder(ctx context.Context, user *model.User, appt *model.Appointment)
}

// NopNotifier is used when no notification channel is configured.
type NopNotifier struct{}

func (NopNotifier) RequestDecided(context.Context, *model.User, *model.Request, approval.OverallStatus) {
}

func (NopNotifier) AppointmentDecided(context.Context, *model.User, *model.Appointment) {}

func (NopNotifier) AppointmentReminder(context.Context, *model.User, *model.Appointment) {}
