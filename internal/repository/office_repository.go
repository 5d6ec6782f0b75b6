package repository

import (
	"context"
	"fmt"

	"civicdesk/internal/model"
	"civicdesk/internal/repository/base"

	"github.com/jackc/pgx/v5/pgxpool"
)

type OfficeRepository struct {
	*base.Repository
}

func NewOfficeRepository(pool *pgxpool.Pool) *OfficeRepository {
	return &OfficeRepository{Repository: base.NewRepository(pool)}
}

func (r *OfficeRepository) Create(ctx context.Context, office *model.Office) error {
	query := `
		INSERT INTO offices (name, address, phone)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.QueryRow(ctx, query, office.Name, office.Address, office.Phone).
		Scan(&office.ID, &office.CreatedAt)
	if err != nil {
		return fmt.Errorf("create office: %w", err)
	}

	return nil
}

func (r *OfficeRepository) GetByID(ctx context.Context, id int64) (*model.Office, error) {
	query := `
		SELECT id, name, address, phone, created_at
		FROM offices
		WHERE id = $1
	`

	var office model.Office
	err := r.QueryRow(ctx, query, id).Scan(
		&office.ID,
		&office.Name,
		&office.Address,
		&office.Phone,
		&office.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get office by id: %w", err)
	}

	return &office, nil
}

func (r *OfficeRepository) List(ctx context.Context) ([]*model.Office, error) {
	query := `
		SELECT id, name, address, phone, created_at
		FROM offices
		ORDER BY name
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list offices: %w", err)
	}
	defer rows.Close()

	var offices []*model.Office
	for rows.Next() {
		var office model.Office
		err := rows.Scan(
			&office.ID,
			&office.Name,
			&office.Address,
			&office.Phone,
			&office.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan office: %w", err)
		}
		offices = append(offices, &office)
	}

	return offices, nil
}

func (r *OfficeRepository) Update(ctx context.Context, office *model.Office) error {
	query := `
		UPDATE offices
		SET name = $1, address = $2, phone = $3
		WHERE id = $4
	`

	affected, err := r.ExecAffected(ctx, query, office.Name, office.Address, office.Phone, office.ID)
	if err != nil {
		return fmt.Errorf("update office: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("office not found")
	}

	return nil
}

func (r *OfficeRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM offices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete office: %w", err)
	}

	if affected == 0 {
		return fmt.Errorf("office not found")
	}

	return nil
}
