package approval

import (
	"testing"

	"github.com/stretchr/testify/require"

	"civicdesk/internal/model"
)

func TestResolveAllCombinations(t *testing.T) {
	cases := []struct {
		staff model.TrackStatus
		admin model.TrackStatus
		want  OverallStatus
	}{
		{model.TrackPending, model.TrackPending, OverallPending},
		{model.TrackPending, model.TrackApproved, OverallPending},
		{model.TrackPending, model.TrackRejected, OverallRejected},
		{model.TrackApproved, model.TrackPending, OverallPending},
		{model.TrackApproved, model.TrackApproved, OverallApproved},
		{model.TrackApproved, model.TrackRejected, OverallRejected},
		{model.TrackRejected, model.TrackPending, OverallRejected},
		{model.TrackRejected, model.TrackApproved, OverallRejected},
		{model.TrackRejected, model.TrackRejected, OverallRejected},
	}

	for _, tt := range cases {
		got, err := Resolve(tt.staff, tt.admin)
		require.NoError(t, err, "Resolve(%q, %q)", tt.staff, tt.admin)
		require.Equal(t, tt.want, got, "Resolve(%q, %q)", tt.staff, tt.admin)
	}
}

func TestResolveRejectionOverridesApproval(t *testing.T) {
	got, err := Resolve(model.TrackRejected, model.TrackApproved)
	require.NoError(t, err)
	require.Equal(t, OverallRejected, got)
}

func TestResolveUnknownStatusFailsFast(t *testing.T) {
	_, err := Resolve(model.TrackStatus("maybe"), model.TrackPending)
	require.Error(t, err)
	require.Contains(t, err.Error(), "maybe")

	_, err = Resolve(model.TrackPending, model.TrackStatus(""))
	require.Error(t, err)
}
