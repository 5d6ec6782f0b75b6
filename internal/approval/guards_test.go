package approval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"civicdesk/internal/model"
)

func requestWith(staff, admin model.TrackStatus) *model.Request {
	return &model.Request{StatusByStaff: staff, StatusByAdmin: admin}
}

func TestCanCreateAppointment(t *testing.T) {
	// Fully approved request books.
	require.NoError(t, CanCreateAppointment(requestWith(model.TrackApproved, model.TrackApproved)))

	// One approval alone is still pending; booking is rejected with the
	// specific reason.
	err := CanCreateAppointment(requestWith(model.TrackApproved, model.TrackPending))
	require.ErrorIs(t, err, ErrRequestNotApproved)

	err = CanCreateAppointment(requestWith(model.TrackPending, model.TrackPending))
	require.ErrorIs(t, err, ErrRequestNotApproved)

	err = CanCreateAppointment(requestWith(model.TrackRejected, model.TrackApproved))
	require.ErrorIs(t, err, ErrRequestNotApproved)
}

func TestCanMutateRequest(t *testing.T) {
	require.NoError(t, CanMutateRequest(requestWith(model.TrackPending, model.TrackPending)))
	require.NoError(t, CanMutateRequest(requestWith(model.TrackApproved, model.TrackPending)))

	err := CanMutateRequest(requestWith(model.TrackApproved, model.TrackApproved))
	require.ErrorIs(t, err, ErrRequestDecided)

	err = CanMutateRequest(requestWith(model.TrackRejected, model.TrackPending))
	require.ErrorIs(t, err, ErrRequestDecided)
}

func TestCanMutateAppointment(t *testing.T) {
	require.NoError(t, CanMutateAppointment(&model.Appointment{Status: model.AppointmentPending}))

	for _, status := range []model.AppointmentStatus{
		model.AppointmentApproved,
		model.AppointmentCompleted,
		model.AppointmentCancelled,
		model.AppointmentRejected,
	} {
		err := CanMutateAppointment(&model.Appointment{Status: status})
		require.ErrorIs(t, err, ErrAppointmentLocked, "status %q", status)
	}
}

func TestCanDecideTrack(t *testing.T) {
	require.NoError(t, CanDecideTrack(model.TrackPending))
	require.ErrorIs(t, CanDecideTrack(model.TrackApproved), ErrTrackDecided)
	require.ErrorIs(t, CanDecideTrack(model.TrackRejected), ErrTrackDecided)
}
