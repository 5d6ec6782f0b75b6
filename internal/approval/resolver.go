// Package approval derives the single customer-visible status of a request
// from its two independent approval tracks and holds the guards that gate
// request and appointment mutations on that derived status.
package approval

import (
	"fmt"

	"civicdesk/internal/model"
)

// OverallStatus is the derived approval state shown to end users.
type OverallStatus string

const (
	OverallPending  OverallStatus = "pending"
	OverallApproved OverallStatus = "approved"
	OverallRejected OverallStatus = "rejected"
)

// Resolve collapses the two approval tracks into one overall status.
// Precedence is fixed: a rejection from either approver is absolute and
// overrides everything, approval requires both tracks, every remaining
// combination is pending. An unknown track value is a caller contract
// violation and fails fast instead of defaulting.
func Resolve(staff, admin model.TrackStatus) (OverallStatus, error) {
	if !staff.Valid() {
		return "", fmt.Errorf("unknown staff track status %q", staff)
	}
	if !admin.Valid() {
		return "", fmt.Errorf("unknown admin track status %q", admin)
	}

	if staff == model.TrackRejected || admin == model.TrackRejected {
		return OverallRejected, nil
	}
	if staff == model.TrackApproved && admin == model.TrackApproved {
		return OverallApproved, nil
	}
	return OverallPending, nil
}

// ResolveRequest is Resolve applied to a request record.
func ResolveRequest(req *model.Request) (OverallStatus, error) {
	return Resolve(req.StatusByStaff, req.StatusByAdmin)
}
