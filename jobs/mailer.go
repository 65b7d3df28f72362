package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/bookline/bookline/internal/booking/reconcile"
)

var amounts = message.NewPrinter(language.English)

// ComposeStatusChangeEmail renders the notification sent when a period's
// payment status transitions.
func ComposeStatusChangeEmail(to string, event *reconcile.PeriodUpdated) SendEmailPayload {
	subject := fmt.Sprintf("Booking %d period %d is now %s",
		event.BookingID, event.PeriodID, event.Current.PaymentStatus)
	body := amounts.Sprintf(
		"Period %d of booking %d moved from %s to %s.\n\nDays paid: %d\nTotal paid: %.2f\n\nEvent %s at %s.\n",
		event.PeriodID, event.BookingID,
		event.Previous.PaymentStatus, event.Current.PaymentStatus,
		event.Current.DaysPaid, event.Current.PaymentTotal,
		event.EventID, event.OccurredAt.Format("2006-01-02 15:04:05 MST"),
	)
	return SendEmailPayload{To: to, Subject: subject, Body: body}
}

// Mailer processes mail:send tasks. Delivery is log based until an SMTP
// relay is configured.
type Mailer struct {
	from   string
	logger *slog.Logger
}

// NewMailer constructs the mail handler.
func NewMailer(from string, logger *slog.Logger) *Mailer {
	return &Mailer{from: from, logger: logger}
}

// Handle processes a mail:send task.
func (m *Mailer) Handle(_ context.Context, t *asynq.Task) error {
	var payload SendEmailPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	m.logger.Info("send email",
		slog.String("from", m.from),
		slog.String("to", payload.To),
		slog.String("subject", payload.Subject),
	)
	return nil
}
