package repository

import (
	"context"
	"fmt"

	"civicdesk/internal/model"
	"civicdesk/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ServiceRepository struct {
	*base.Repository
}

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{Repository: base.NewRepository(pool)}
}

func (r *ServiceRepository) Create(ctx context.Context, service *model.Service) error {
	query := `
		INSERT INTO services (office_id, name, description, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, service.OfficeID, service.Name, service.Description, service.IsActive).
		Scan(&service.ID, &service.CreatedAt)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	return nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id int64) (*model.Service, error) {
	query := `
		SELECT id, office_id, name, description, is_active, created_at
		FROM services
		WHERE id = $1
	`

	var service model.Service
	err := r.QueryRow(ctx, query, id).Scan(
		&service.ID,
		&service.OfficeID,
		&service.Name,
		&service.Description,
		&service.IsActive,
		&service.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get service by id: %w", err)
	}

	return &service, nil
}

func (r *ServiceRepository) GetByOfficeID(ctx context.Context, officeID int64, activeOnly bool) ([]*model.Service, error) {
	query := `
		SELECT id, office_id, name, description, is_active, created_at
		FROM services
		WHERE office_id = $1
	`
	if activeOnly {
		query += ` AND is_active = true`
	}
	query += ` ORDER BY name`

	rows, err := r.Query(ctx, query, officeID)
	if err != nil {
		return nil, fmt.Errorf("get services by office: %w", err)
	}
	defer rows.Close()

	var services []*model.Service
	for rows.Next() {
		var service model.Service
		err := rows.Scan(
			&service.ID,
			&service.OfficeID,
			&service.Name,
			&service.Description,
			&service.IsActive,
			&service.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		services = append(services, &service)
	}

	return services, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *model.Service) error {
	query := `
		UPDATE services
		SET name = $1, description = $2, is_active = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, service.Name, service.Description, service.IsActive, service.ID)
	if err != nil {
		return fmt.Errorf("update service: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}

func (r *ServiceRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("service not found")
	}

	return nil
}
