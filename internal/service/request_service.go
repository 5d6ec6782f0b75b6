package service

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"
	"civicdesk/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestService owns the request lifecycle: creation, customer edits while
// pending, and the two independent approval tracks. Every guard is evaluated
// against freshly read state immediately before the mutating write; UI
// affordances are hints, never the authority.
type RequestService struct {
	requestRepo *repository.RequestRepository
	serviceRepo *repository.ServiceRepository
	userRepo    *repository.UserRepository
	notifier    Notifier
	logger      *zap.Logger
}

func NewRequestService(
	requestRepo *repository.RequestRepository,
	serviceRepo *repository.ServiceRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	logger *zap.Logger,
) *RequestService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &RequestService{
		requestRepo: requestRepo,
		serviceRepo: serviceRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create files a new request. Both approval tracks start pending.
func (s *RequestService) Create(ctx context.Context, userID, serviceID int64, currentAddress string, requestedDate time.Time) (*model.Request, error) {
	svc, err := s.serviceRepo.GetByID(ctx, serviceID)
	if err != nil {
		return nil, fmt.Errorf("get service: %w", err)
	}
	if svc == nil {
		return nil, ErrNotFound
	}
	if !svc.IsActive {
		return nil, ErrServiceInactive
	}

	req := &model.Request{
		Reference:      uuid.New(),
		ServiceID:      serviceID,
		OfficeID:       svc.OfficeID,
		UserID:         userID,
		CurrentAddress: currentAddress,
		RequestedDate:  requestedDate,
		StatusByStaff:  model.TrackPending,
		StatusByAdmin:  model.TrackPending,
	}

	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Request created",
		zap.Int64("request_id", req.ID),
		zap.Int64("user_id", userID),
		zap.Int64("service_id", serviceID),
	)

	return req, nil
}

func (s *RequestService) GetByID(ctx context.Context, id int64) (*model.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

func (s *RequestService) ListByUser(ctx context.Context, userID int64) ([]*model.Request, error) {
	return s.requestRepo.GetByUserID(ctx, userID)
}

func (s *RequestService) ListByOffice(ctx context.Context, officeID int64) ([]*model.Request, error) {
	return s.requestRepo.GetByOfficeID(ctx, officeID)
}

// Update lets the owner change address and requested date while the request
// is still pending overall.
func (s *RequestService) Update(ctx context.Context, userID, requestID int64, currentAddress string, requestedDate time.Time) (*model.Request, error) {
	req, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrForbidden
	}

	if err := approval.CanMutateRequest(req); err != nil {
		return nil, err
	}

	req.CurrentAddress = currentAddress
	req.RequestedDate = requestedDate
	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	s.logger.Info("Request updated", zap.Int64("request_id", requestID), zap.Int64("user_id", userID))
	return req, nil
}

// Delete removes the owner's request while it is still pending overall.
func (s *RequestService) Delete(ctx context.Context, userID, requestID int64) error {
	req, err := s.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if req.UserID != userID {
		return ErrForbidden
	}

	if err := approval.CanMutateRequest(req); err != nil {
		return err
	}

	if err := s.requestRepo.Delete(ctx, requestID); err != nil {
		return err
	}

	s.logger.Info("Request deleted", zap.Int64("request_id", requestID), zap.Int64("user_id", userID))
	return nil
}

// Decide records one approver's decision on their own track. Staff write the
// staff track, admins write the admin track; neither can touch the other.
// The overall status is re-derived afterwards and the citizen is notified
// once it leaves pending.
func (s *RequestService) Decide(ctx context.Context, actor *model.User, requestID int64, approve bool, note *string) (*model.Request, error) {
	req, err := s.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !actor.IsOfficeRole() || actor.OfficeID == nil || *actor.OfficeID != req.OfficeID {
		return nil, ErrForbidden
	}

	status := model.TrackRejected
	if approve {
		status = model.TrackApproved
	}
	now := time.Now()

	switch actor.Role {
	case model.RoleStaff:
		if err := approval.CanDecideTrack(req.StatusByStaff); err != nil {
			return nil, err
		}
		if err := s.requestRepo.UpdateStaffStatus(ctx, requestID, status, note, now); err != nil {
			return nil, err
		}
		req.StatusByStaff = status
		req.StaffDecidedAt = &now
	case model.RoleAdmin:
		if err := approval.CanDecideTrack(req.StatusByAdmin); err != nil {
			return nil, err
		}
		if err := s.requestRepo.UpdateAdminStatus(ctx, requestID, status, note, now); err != nil {
			return nil, err
		}
		req.StatusByAdmin = status
		req.AdminDecidedAt = &now
	default:
		return nil, ErrForbidden
	}
	if note != nil {
		req.ApproveNote = note
	}

	overall, err := approval.ResolveRequest(req)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Request decided",
		zap.Int64("request_id", requestID),
		zap.Int64("actor_id", actor.ID),
		zap.String("actor_role", string(actor.Role)),
		zap.String("track_status", string(status)),
		zap.String("overall_status", string(overall)),
	)

	if overall != approval.OverallPending {
		if user, err := s.userRepo.GetByID(ctx, req.UserID); err == nil && user != nil {
			s.notifier.RequestDecided(ctx, user, req, overall)
		}
	}

	return req, nil
}
