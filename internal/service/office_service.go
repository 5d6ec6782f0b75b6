package service

import (
	"context"
	"fmt"

	"civicdesk/internal/model"
	"civicdesk/internal/repository"
	"civicdesk/internal/schedule"

	"go.uber.org/zap"
)

type OfficeService struct {
	officeRepo   *repository.OfficeRepository
	serviceRepo  *repository.ServiceRepository
	scheduleRepo *repository.ScheduleRepository
	logger       *zap.Logger
}

func NewOfficeService(
	officeRepo *repository.OfficeRepository,
	serviceRepo *repository.ServiceRepository,
	scheduleRepo *repository.ScheduleRepository,
	logger *zap.Logger,
) *OfficeService {
	return &OfficeService{
		officeRepo:   officeRepo,
		serviceRepo:  serviceRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

func (s *OfficeService) CreateOffice(ctx context.Context, name, address, phone string) (*model.Office, error) {
	office := &model.Office{Name: name, Address: address, Phone: phone}
	if err := s.officeRepo.Create(ctx, office); err != nil {
		return nil, err
	}

	s.logger.Info("Office created", zap.Int64("office_id", office.ID), zap.String("name", name))
	return office, nil
}

func (s *OfficeService) GetOffice(ctx context.Context, id int64) (*model.Office, error) {
	office, err := s.officeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, ErrNotFound
	}
	return office, nil
}

func (s *OfficeService) ListOffices(ctx context.Context) ([]*model.Office, error) {
	return s.officeRepo.List(ctx)
}

func (s *OfficeService) UpdateOffice(ctx context.Context, office *model.Office) error {
	return s.officeRepo.Update(ctx, office)
}

func (s *OfficeService) DeleteOffice(ctx context.Context, id int64) error {
	return s.officeRepo.Delete(ctx, id)
}

func (s *OfficeService) CreateService(ctx context.Context, officeID int64, name, description string) (*model.Service, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, ErrNotFound
	}

	svc := &model.Service{OfficeID: officeID, Name: name, Description: description, IsActive: true}
	if err := s.serviceRepo.Create(ctx, svc); err != nil {
		return nil, err
	}

	s.logger.Info("Service created",
		zap.Int64("service_id", svc.ID),
		zap.Int64("office_id", officeID),
		zap.String("name", name),
	)
	return svc, nil
}

func (s *OfficeService) GetService(ctx context.Context, id int64) (*model.Service, error) {
	svc, err := s.serviceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	return svc, nil
}

func (s *OfficeService) ListServices(ctx context.Context, officeID int64, activeOnly bool) ([]*model.Service, error) {
	return s.serviceRepo.GetByOfficeID(ctx, officeID, activeOnly)
}

func (s *OfficeService) UpdateService(ctx context.Context, svc *model.Service) error {
	return s.serviceRepo.Update(ctx, svc)
}

func (s *OfficeService) DeleteService(ctx context.Context, id int64) error {
	return s.serviceRepo.Delete(ctx, id)
}

// GetSchedule returns the office's weekly availability. A never-configured
// office yields an empty schedule, which callers render as "no availability
// configured".
func (s *OfficeService) GetSchedule(ctx context.Context, officeID int64) (schedule.WeeklySchedule, error) {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return nil, err
	}
	if office == nil {
		return nil, ErrNotFound
	}
	return s.scheduleRepo.GetByOfficeID(ctx, officeID)
}

// PutSchedule replaces the office's weekly availability after validating it.
func (s *OfficeService) PutSchedule(ctx context.Context, officeID int64, sched schedule.WeeklySchedule) error {
	office, err := s.officeRepo.GetByID(ctx, officeID)
	if err != nil {
		return err
	}
	if office == nil {
		return ErrNotFound
	}

	if err := sched.Validate(); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	if err := s.scheduleRepo.Upsert(ctx, officeID, sched); err != nil {
		return err
	}

	s.logger.Info("Office schedule updated", zap.Int64("office_id", officeID))
	return nil
}
