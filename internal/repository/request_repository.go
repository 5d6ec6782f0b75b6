package repository

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/model"
	"civicdesk/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type RequestRepository struct {
	*base.Repository
}

func NewRequestRepository(pool *pgxpool.Pool) *RequestRepository {
	return &RequestRepository{Repository: base.NewRepository(pool)}
}

const requestColumns = `
	id, reference, service_id, office_id, user_id, current_address, requested_date,
	status_by_staff, status_by_admin, approve_note, staff_decided_at, admin_decided_at,
	created_at, updated_at
`

func (r *RequestRepository) Create(ctx context.Context, req *model.Request) error {
	query := `
		INSERT INTO requests (reference, service_id, office_id, user_id, current_address, requested_date, status_by_staff, status_by_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		req.Reference,
		req.ServiceID,
		req.OfficeID,
		req.UserID,
		req.CurrentAddress,
		req.RequestedDate,
		req.StatusByStaff,
		req.StatusByAdmin,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	return nil
}

func scanRequest(row interface{ Scan(...interface{}) error }) (*model.Request, error) {
	var req model.Request
	err := row.Scan(
		&req.ID,
		&req.Reference,
		&req.ServiceID,
		&req.OfficeID,
		&req.UserID,
		&req.CurrentAddress,
		&req.RequestedDate,
		&req.StatusByStaff,
		&req.StatusByAdmin,
		&req.ApproveNote,
		&req.StaffDecidedAt,
		&req.AdminDecidedAt,
		&req.CreatedAt,
		&req.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE id = $1`

	req, err := scanRequest(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get request by id: %w", err)
	}

	return req, nil
}

func (r *RequestRepository) GetByUserID(ctx context.Context, userID int64) ([]*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE user_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, userID)
}

func (r *RequestRepository) GetByOfficeID(ctx context.Context, officeID int64) ([]*model.Request, error) {
	query := `SELECT ` + requestColumns + ` FROM requests WHERE office_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, officeID)
}

func (r *RequestRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Request, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	defer rows.Close()

	var requests []*model.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, nil
}

// Update rewrites the customer-editable fields only. Track statuses have
// their own mutation paths below and are never touched here.
func (r *RequestRepository) Update(ctx context.Context, req *model.Request) error {
	query := `
		UPDATE requests
		SET current_address = $1, requested_date = $2, updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, req.CurrentAddress, req.RequestedDate, req.ID)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("request not found")
	}

	return nil
}

// UpdateStaffStatus records the front-line staff decision. Only the staff
// track is written.
func (r *RequestRepository) UpdateStaffStatus(ctx context.Context, id int64, status model.TrackStatus, note *string, decidedAt time.Time) error {
	query := `
		UPDATE requests
		SET status_by_staff = $1,
		    approve_note = COALESCE($2, approve_note),
		    staff_decided_at = $3,
		    updated_at = now()
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, status, note, decidedAt, id)
	if err != nil {
		return fmt.Errorf("update staff status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("request not found")
	}

	return nil
}

// UpdateAdminStatus records the office admin decision. Only the admin track
// is written.
func (r *RequestRepository) UpdateAdminStatus(ctx context.Context, id int64, status model.TrackStatus, note *string, decidedAt time.Time) error {
	query := `
		UPDATE requests
		SET status_by_admin = $1,
		    approve_note = COALESCE($2, approve_note),
		    admin_decided_at = $3,
		    updated_at = now()
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, status, note, decidedAt, id)
	if err != nil {
		return fmt.Errorf("update admin status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("request not found")
	}

	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("request not found")
	}

	return nil
}
