// Package notify delivers decision notifications to citizens over Telegram.
// Delivery is best effort: a failed send is logged and never fails the
// operation that triggered it.
package notify

import (
	"context"
	"fmt"

	"civicdesk/internal/approval"
	"civicdesk/internal/model"

	"github.com/go-telegram/bot"
	"go.uber.org/zap"
)

type TelegramNotifier struct {
	bot    *bot.Bot
	logger *zap.Logger
}

// NewTelegramNotifier wires a notifier over an existing bot instance.
func NewTelegramNotifier(botInstance *bot.Bot, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{bot: botInstance, logger: logger}
}

func (n *TelegramNotifier) RequestDecided(ctx context.Context, user *model.User, req *model.Request, overall approval.OverallStatus) {
	if user.TelegramChatID == nil {
		return
	}

	var text string
	switch overall {
	case approval.OverallApproved:
		text = fmt.Sprintf(
			"✅ Your service request %s has been approved.\nYou can now book an appointment.",
			req.Reference,
		)
	case approval.OverallRejected:
		text = fmt.Sprintf("❌ Your service request %s has been rejected.", req.Reference)
		if req.ApproveNote != nil && *req.ApproveNote != "" {
			text += "\nNote: " + *req.ApproveNote
		}
	default:
		return
	}

	n.send(ctx, *user.TelegramChatID, text)
}

func (n *TelegramNotifier) AppointmentDecided(ctx context.Context, user *model.User, appt *model.Appointment) {
	if user.TelegramChatID == nil {
		return
	}

	when := appt.Date.Format("02.01.2006")
	if appt.Time != nil {
		when += " " + *appt.Time
	}

	var text string
	switch appt.Status {
	case model.AppointmentApproved:
		text = fmt.Sprintf("✅ Your appointment on %s has been confirmed.", when)
	case model.AppointmentRejected:
		text = fmt.Sprintf("❌ Your appointment on %s has been rejected.", when)
	default:
		return
	}

	n.send(ctx, *user.TelegramChatID, text)
}

func (n *TelegramNotifier) AppointmentReminder(ctx context.Context, user *model.User, appt *model.Appointment) {
	if user.TelegramChatID == nil {
		return
	}

	when := appt.Date.Format("02.01.2006")
	if appt.Time != nil {
		when += " " + *appt.Time
	}

	n.send(ctx, *user.TelegramChatID, fmt.Sprintf("🔔 Reminder: you have an appointment on %s.", when))
}

func (n *TelegramNotifier) send(ctx context.Context, chatID int64, text string) {
	_, err := n.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Warn("Failed to send telegram notification",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}
