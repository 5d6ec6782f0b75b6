package service

import "errors"

// Expected business outcomes. Handlers map these to specific response codes;
// anything not in this list (or the approval/repository sentinels) is a
// server fault.
var (
	ErrNotFound           = errors.New("not found")
	ErrForbidden          = errors.New("no permission for this operation")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrServiceInactive    = errors.New("service is not active")
	ErrPastDate           = errors.New("date is in the past")
	ErrNotWorkingDay      = errors.New("office is closed on that date")
	ErrSlotUnavailable    = errors.New("slot is not available on that date")
	ErrInvalidTransition  = errors.New("invalid appointment status transition")
)
