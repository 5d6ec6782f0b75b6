package app

import (
	"context"
	"time"

	"civicdesk/internal/repository"
	"civicdesk/internal/service"
	"go.uber.org/zap"
)

// Reminder runs the daily background task that reminds citizens about
// tomorrow's confirmed appointments.
type Reminder struct {
	appointmentRepo *repository.AppointmentRepository
	userRepo        *repository.UserRepository
	notifier        service.Notifier
	logger          *zap.Logger
	stopChan        chan struct{}
}

func NewReminder(
	appointmentRepo *repository.AppointmentRepository,
	userRepo *repository.UserRepository,
	notifier service.Notifier,
	logger *zap.Logger,
) *Reminder {
	return &Reminder{
		appointmentRepo: appointmentRepo,
		userRepo:        userRepo,
		notifier:        notifier,
		logger:          logger,
		stopChan:        make(chan struct{}),
	}
}

func (r *Reminder) Start(ctx context.Context) {
	r.logger.Info("Starting appointment reminder task")
	go r.run(ctx)
}

func (r *Reminder) Stop() {
	r.logger.Info("Stopping appointment reminder task")
	close(r.stopChan)
}

func (r *Reminder) run(ctx context.Context) {
	// First pass right away, then daily.
	r.remind(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.remind(ctx)
		case <-r.stopChan:
			r.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			r.logger.Info("Reminder task cancelled")
			return
		}
	}
}

func (r *Reminder) remind(ctx context.Context) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	tomorrow = time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), 0, 0, 0, 0, tomorrow.Location())

	appointments, err := r.appointmentRepo.GetApprovedByDate(ctx, tomorrow)
	if err != nil {
		r.logger.Warn("Failed to load appointments for reminders", zap.Error(err))
		return
	}

	sent := 0
	for _, appt := range appointments {
		user, err := r.userRepo.GetByID(ctx, appt.UserID)
		if err != nil || user == nil {
			continue
		}
		r.notifier.AppointmentReminder(ctx, user, appt)
		sent++
	}

	if sent > 0 {
		r.logger.Info("Appointment reminders sent", zap.Int("count", sent))
	}
}
