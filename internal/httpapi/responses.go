package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"civicdesk/internal/approval"
	"civicdesk/internal/repository"
	"civicdesk/internal/service"
)

type errorResponse struct {
	Error responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: responseError{Code: code, Message: message}})
}

// mapError translates the known business sentinels into specific response
// codes. Guard failures are expected outcomes and never come back as 500s;
// anything unrecognized is a server fault.
func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", "resource not found"
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden, "forbidden", "no permission for this operation"
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "invalid email or password"
	case errors.Is(err, repository.ErrDuplicateEmail):
		return http.StatusConflict, "email_taken", "email already registered"
	case errors.Is(err, approval.ErrRequestNotApproved):
		return http.StatusConflict, "request_not_approved", "request not approved"
	case errors.Is(err, approval.ErrRequestDecided):
		return http.StatusConflict, "request_already_decided", "request already decided"
	case errors.Is(err, approval.ErrAppointmentLocked):
		return http.StatusConflict, "appointment_locked", "appointment already approved or completed"
	case errors.Is(err, approval.ErrTrackDecided):
		return http.StatusConflict, "track_already_decided", "approval track already decided"
	case errors.Is(err, repository.ErrSlotTaken):
		return http.StatusConflict, "slot_taken", "slot no longer available"
	case errors.Is(err, service.ErrSlotUnavailable):
		return http.StatusConflict, "slot_unavailable", "slot is not available on that date"
	case errors.Is(err, service.ErrInvalidTransition):
		return http.StatusConflict, "invalid_transition", err.Error()
	case errors.Is(err, service.ErrPastDate):
		return http.StatusUnprocessableEntity, "past_date", "date is in the past"
	case errors.Is(err, service.ErrNotWorkingDay):
		return http.StatusUnprocessableEntity, "not_working_day", "office is closed on that date"
	case errors.Is(err, service.ErrServiceInactive):
		return http.StatusUnprocessableEntity, "service_inactive", "service is not active"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status, code, message := mapError(err)
	writeError(w, status, code, message)
}
