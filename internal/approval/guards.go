package approval

import (
	"errors"

	"civicdesk/internal/model"
)

// Guard failures are expected business outcomes, not server faults. Callers
// match on these sentinels to render a specific rejection reason.
var (
	ErrRequestNotApproved = errors.New("request not approved")
	ErrRequestDecided     = errors.New("request already decided")
	ErrAppointmentLocked  = errors.New("appointment already approved or completed")
	ErrTrackDecided       = errors.New("approval track already decided")
)

// CanCreateAppointment permits appointment creation only while the freshly
// read request resolves to approved. The caller must pass current state, not
// anything client-supplied.
func CanCreateAppointment(req *model.Request) error {
	overall, err := ResolveRequest(req)
	if err != nil {
		return err
	}
	if overall != OverallApproved {
		return ErrRequestNotApproved
	}
	return nil
}

// CanMutateRequest permits customer edit/delete only while the request is
// still pending on both tracks. Once the derived status leaves pending the
// record is immutable to the customer.
func CanMutateRequest(req *model.Request) error {
	overall, err := ResolveRequest(req)
	if err != nil {
		return err
	}
	if overall != OverallPending {
		return ErrRequestDecided
	}
	return nil
}

// CanMutateAppointment permits customer edit/delete only for pending
// appointments. This is enforced here, on the mutation path, regardless of
// what controls the UI disabled.
func CanMutateAppointment(appt *model.Appointment) error {
	if appt.Status != model.AppointmentPending {
		return ErrAppointmentLocked
	}
	return nil
}

// CanDecideTrack permits an approver to record a decision only while their
// own track is still pending. Each track is decided exactly once.
func CanDecideTrack(current model.TrackStatus) error {
	if current != model.TrackPending {
		return ErrTrackDecided
	}
	return nil
}
