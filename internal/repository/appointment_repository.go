package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicdesk/internal/model"
	"civicdesk/internal/repository/base"
	"civicdesk/internal/schedule"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSlotTaken is the persistence-boundary conflict signal: a concurrent
// booking won the slot between the availability read and this write. Surfaced
// to callers as "slot no longer available".
var ErrSlotTaken = errors.New("slot no longer available")

type AppointmentRepository struct {
	*base.Repository
}

func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{Repository: base.NewRepository(pool)}
}

const appointmentColumns = `
	id, reference, request_id, office_id, user_id, date, time, status, notes, staff_id,
	created_at, updated_at
`

// Create inserts the appointment. The partial unique index on
// (office_id, date, time) for active statuses resolves the race where two
// callers were both told the slot was free.
func (r *AppointmentRepository) Create(ctx context.Context, appt *model.Appointment) error {
	query := `
		INSERT INTO appointments (reference, request_id, office_id, user_id, date, time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		appt.Reference,
		appt.RequestID,
		appt.OfficeID,
		appt.UserID,
		appt.Date,
		appt.Time,
		appt.Status,
		appt.Notes,
	).Scan(&appt.ID, &appt.CreatedAt, &appt.UpdatedAt)

	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("create appointment: %w", err)
	}

	return nil
}

func scanAppointment(row interface{ Scan(...interface{}) error }) (*model.Appointment, error) {
	var appt model.Appointment
	err := row.Scan(
		&appt.ID,
		&appt.Reference,
		&appt.RequestID,
		&appt.OfficeID,
		&appt.UserID,
		&appt.Date,
		&appt.Time,
		&appt.Status,
		&appt.Notes,
		&appt.StaffID,
		&appt.CreatedAt,
		&appt.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}

func (r *AppointmentRepository) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	appt, err := scanAppointment(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get appointment by id: %w", err)
	}

	return appt, nil
}

func (r *AppointmentRepository) GetByUserID(ctx context.Context, userID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE user_id = $1 ORDER BY date DESC, time DESC`
	return r.list(ctx, query, userID)
}

func (r *AppointmentRepository) GetByOfficeID(ctx context.Context, officeID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE office_id = $1 ORDER BY date DESC, time DESC`
	return r.list(ctx, query, officeID)
}

func (r *AppointmentRepository) GetByRequestID(ctx context.Context, requestID int64) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE request_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, requestID)
}

func (r *AppointmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]*model.Appointment, error) {
	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	var appointments []*model.Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		appointments = append(appointments, appt)
	}

	return appointments, nil
}

// GetBookedSlots returns the slot times already held on one office date,
// pre-filtered in SQL so the availability engine only ever sees the relevant
// set. Statuses are included so the engine can ignore released slots.
func (r *AppointmentRepository) GetBookedSlots(ctx context.Context, officeID int64, date time.Time) ([]schedule.BookedSlot, error) {
	query := `
		SELECT time, status
		FROM appointments
		WHERE office_id = $1 AND date = $2 AND time IS NOT NULL
	`

	rows, err := r.Query(ctx, query, officeID, date)
	if err != nil {
		return nil, fmt.Errorf("get booked slots: %w", err)
	}
	defer rows.Close()

	var slots []schedule.BookedSlot
	for rows.Next() {
		var slot schedule.BookedSlot
		if err := rows.Scan(&slot.Time, &slot.Status); err != nil {
			return nil, fmt.Errorf("scan booked slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// GetApprovedByDate returns confirmed appointments on one date, used by the
// reminder task.
func (r *AppointmentRepository) GetApprovedByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE date = $1 AND status = $2 ORDER BY time`
	return r.list(ctx, query, date, model.AppointmentApproved)
}

// Reschedule moves a pending appointment to a new date/time. The same
// unique index guards the new slot.
func (r *AppointmentRepository) Reschedule(ctx context.Context, id int64, date time.Time, slot *string, notes *string) error {
	query := `
		UPDATE appointments
		SET date = $1, time = $2, notes = COALESCE($3, notes), updated_at = now()
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, date, slot, notes, id)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return ErrSlotTaken
		}
		return fmt.Errorf("reschedule appointment: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, id int64, status model.AppointmentStatus, staffID *int64) error {
	query := `
		UPDATE appointments
		SET status = $1, staff_id = COALESCE($2, staff_id), updated_at = now()
		WHERE id = $3
	`

	affected, err := r.ExecAffected(ctx, query, status, staffID, id)
	if err != nil {
		return fmt.Errorf("update appointment status: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}

func (r *AppointmentRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("appointment not found")
	}

	return nil
}
