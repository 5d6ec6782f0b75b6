package service

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"
	"civicdesk/internal/repository"
	"civicdesk/internal/schedule"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AppointmentService gates bookings on the derived approval status and the
// office's weekly availability. The availability engine is pure; this layer
// feeds it the office schedule and the pre-filtered appointment set and owns
// the clock.
type AppointmentService struct {
	appointmentRepo *repository.AppointmentRepository
	requestRepo     *repository.RequestRepository
	scheduleRepo    *repository.ScheduleRepository
	userRepo        *repository.UserRepository
	notifier        Notifier
	logger          *zap.Logger

	now func() time.Time
}

func NewAppointmentService(
	appointmentRepo *repository.AppointmentRepository,
	requestRepo *repository.RequestRepository,
	scheduleRepo *repository.ScheduleRepository,
	userRepo *repository.UserRepository,
	notifier Notifier,
	logger *zap.Logger,
) *AppointmentService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &AppointmentService{
		appointmentRepo: appointmentRepo,
		requestRepo:     requestRepo,
		scheduleRepo:    scheduleRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		logger:          logger,
		now:             time.Now,
	}
}

// today truncates the clock to a date for past-date checks.
func (s *AppointmentService) today() time.Time {
	now := s.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

// Availability returns the free slots for one office date. Past dates and
// non-working days yield an empty list, which is a valid result, not an
// error.
func (s *AppointmentService) Availability(ctx context.Context, officeID int64, date time.Time) ([]string, error) {
	if date.Before(s.today()) {
		return nil, nil
	}

	sched, err := s.scheduleRepo.GetByOfficeID(ctx, officeID)
	if err != nil {
		return nil, err
	}

	booked, err := s.appointmentRepo.GetBookedSlots(ctx, officeID, date)
	if err != nil {
		return nil, err
	}

	return schedule.AvailableSlots(sched, date, booked), nil
}

// NextWorkingDay returns the first bookable date at or after from.
// schedule.ErrNoWorkingDay passes through for the caller to render as "no
// availability".
func (s *AppointmentService) NextWorkingDay(ctx context.Context, officeID int64, from time.Time) (time.Time, error) {
	sched, err := s.scheduleRepo.GetByOfficeID(ctx, officeID)
	if err != nil {
		return time.Time{}, err
	}
	return schedule.NextWorkingDay(sched, from)
}

// Create books an appointment against an approved request. The approval
// guard runs against freshly read request state, the slot is validated
// against current availability, and the unique index resolves any remaining
// race as ErrSlotTaken.
func (s *AppointmentService) Create(ctx context.Context, userID, requestID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	if req.UserID != userID {
		return nil, ErrForbidden
	}

	if err := approval.CanCreateAppointment(req); err != nil {
		return nil, err
	}

	if err := s.checkSlot(ctx, req.OfficeID, date, slot); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		Reference: uuid.New(),
		RequestID: requestID,
		OfficeID:  req.OfficeID,
		UserID:    userID,
		Date:      date,
		Time:      slot,
		Status:    model.AppointmentPending,
		Notes:     notes,
	}

	if err := s.appointmentRepo.Create(ctx, appt); err != nil {
		return nil, err
	}

	s.logger.Info("Appointment created",
		zap.Int64("appointment_id", appt.ID),
		zap.Int64("request_id", requestID),
		zap.Int64("user_id", userID),
		zap.Time("date", date),
	)

	return appt, nil
}

// checkSlot validates the requested date and optional time against current
// availability.
func (s *AppointmentService) checkSlot(ctx context.Context, officeID int64, date time.Time, slot *string) error {
	if date.Before(s.today()) {
		return ErrPastDate
	}

	sched, err := s.scheduleRepo.GetByOfficeID(ctx, officeID)
	if err != nil {
		return err
	}

	if !schedule.IsWorkingDay(sched, date) {
		return ErrNotWorkingDay
	}

	if slot != nil {
		booked, err := s.appointmentRepo.GetBookedSlots(ctx, officeID, date)
		if err != nil {
			return err
		}
		if !schedule.HasSlot(sched, date, booked, *slot) {
			return ErrSlotUnavailable
		}
	}

	return nil
}

func (s *AppointmentService) GetByID(ctx context.Context, id int64) (*model.Appointment, error) {
	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt == nil {
		return nil, ErrNotFound
	}
	return appt, nil
}

func (s *AppointmentService) ListByUser(ctx context.Context, userID int64) ([]*model.Appointment, error) {
	return s.appointmentRepo.GetByUserID(ctx, userID)
}

func (s *AppointmentService) ListByOffice(ctx context.Context, officeID int64) ([]*model.Appointment, error) {
	return s.appointmentRepo.GetByOfficeID(ctx, officeID)
}

// Reschedule moves the owner's still-pending appointment.
func (s *AppointmentService) Reschedule(ctx context.Context, userID, appointmentID int64, date time.Time, slot *string, notes *string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != userID {
		return nil, ErrForbidden
	}

	if err := approval.CanMutateAppointment(appt); err != nil {
		return nil, err
	}

	if err := s.checkSlot(ctx, appt.OfficeID, date, slot); err != nil {
		return nil, err
	}

	if err := s.appointmentRepo.Reschedule(ctx, appointmentID, date, slot, notes); err != nil {
		return nil, err
	}

	appt.Date = date
	appt.Time = slot
	if notes != nil {
		appt.Notes = notes
	}

	s.logger.Info("Appointment rescheduled",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("user_id", userID),
	)

	return appt, nil
}

// Cancel releases the owner's still-pending appointment; its slot returns to
// the pool.
func (s *AppointmentService) Cancel(ctx context.Context, userID, appointmentID int64) error {
	appt, err := s.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.UserID != userID {
		return ErrForbidden
	}

	if err := approval.CanMutateAppointment(appt); err != nil {
		return err
	}

	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, model.AppointmentCancelled, nil); err != nil {
		return err
	}

	s.logger.Info("Appointment cancelled",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("user_id", userID),
	)

	return nil
}

// Delete removes the owner's still-pending appointment entirely.
func (s *AppointmentService) Delete(ctx context.Context, userID, appointmentID int64) error {
	appt, err := s.GetByID(ctx, appointmentID)
	if err != nil {
		return err
	}
	if appt.UserID != userID {
		return ErrForbidden
	}

	if err := approval.CanMutateAppointment(appt); err != nil {
		return err
	}

	if err := s.appointmentRepo.Delete(ctx, appointmentID); err != nil {
		return err
	}

	s.logger.Info("Appointment deleted",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("user_id", userID),
	)

	return nil
}

// Advance applies a staff action (approve, reject, complete) to an
// appointment at the actor's office. Terminal states accept no action.
func (s *AppointmentService) Advance(ctx context.Context, actor *model.User, appointmentID int64, action string) (*model.Appointment, error) {
	appt, err := s.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !actor.IsOfficeRole() || actor.OfficeID == nil || *actor.OfficeID != appt.OfficeID {
		return nil, ErrForbidden
	}

	if !ValidAppointmentTransition(action, appt.Status) {
		return nil, fmt.Errorf("%w: %s from %s", ErrInvalidTransition, action, appt.Status)
	}

	next := appointmentActionResult[action]
	if err := s.appointmentRepo.UpdateStatus(ctx, appointmentID, next, &actor.ID); err != nil {
		return nil, err
	}

	appt.Status = next
	appt.StaffID = &actor.ID

	s.logger.Info("Appointment advanced",
		zap.Int64("appointment_id", appointmentID),
		zap.Int64("staff_id", actor.ID),
		zap.String("action", action),
		zap.String("status", string(next)),
	)

	if next == model.AppointmentApproved || next == model.AppointmentRejected {
		if user, err := s.userRepo.GetByID(ctx, appt.UserID); err == nil && user != nil {
			s.notifier.AppointmentDecided(ctx, user, appt)
		}
	}

	return appt, nil
}
