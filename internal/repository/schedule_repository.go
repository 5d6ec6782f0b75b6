package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"civicdesk/internal/repository/base"
	"civicdesk/internal/schedule"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ScheduleRepository stores each office's weekly availability as a JSONB
// document. The scheduling engine never touches storage; it receives the
// decoded schedule from here.
type ScheduleRepository struct {
	*base.Repository
}

func NewScheduleRepository(pool *pgxpool.Pool) *ScheduleRepository {
	return &ScheduleRepository{Repository: base.NewRepository(pool)}
}

// GetByOfficeID returns the office's weekly schedule, or nil when none was
// ever configured. A nil schedule means "no availability", which the engine
// already treats correctly.
func (r *ScheduleRepository) GetByOfficeID(ctx context.Context, officeID int64) (schedule.WeeklySchedule, error) {
	query := `
		SELECT schedule_json
		FROM office_schedules
		WHERE office_id = $1
	`

	var raw []byte
	err := r.QueryRow(ctx, query, officeID).Scan(&raw)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get office schedule: %w", err)
	}

	var sched schedule.WeeklySchedule
	if err := json.Unmarshal(raw, &sched); err != nil {
		// Treat an undecodable document as unconfigured rather than
		// failing the whole availability call.
		return nil, nil
	}

	return sched, nil
}

// Upsert replaces the office's weekly schedule.
func (r *ScheduleRepository) Upsert(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error {
	raw, err := json.Marshal(sched)
	if err != nil {
		return fmt.Errorf("encode schedule: %w", err)
	}

	query := `
		INSERT INTO office_schedules (office_id, schedule_json, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (office_id)
		DO UPDATE SET schedule_json = EXCLUDED.schedule_json, updated_at = now()
	`

	if _, err := r.ExecAffected(ctx, query, officeID, raw); err != nil {
		return fmt.Errorf("upsert office schedule: %w", err)
	}

	return nil
}
