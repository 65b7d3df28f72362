package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPaymentSync reconciles one period after a payment record changed.
	TaskPaymentSync = "payment:sync"
	// TaskReconcileSweep re-reconciles every period with recent payment
	// activity, catching deliveries that never arrived.
	TaskReconcileSweep = "booking:reconcile_sweep"
	// TaskTypeSendEmail is the task type for sending transactional emails.
	TaskTypeSendEmail = "mail:send"
)

// PaymentSyncPayload identifies the payment change to reconcile.
type PaymentSyncPayload struct {
	Kind      string `json:"kind"`
	PaymentID int64  `json:"payment_record_id"`
	PeriodID  int64  `json:"period_id"`
}

// NewPaymentSyncTask constructs an Asynq task for a payment change.
func NewPaymentSyncTask(payload PaymentSyncPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentSync, data), nil
}

// NewReconcileSweepTask constructs the nightly sweep task.
func NewReconcileSweepTask() *asynq.Task {
	return asynq.NewTask(TaskReconcileSweep, nil)
}

// SendEmailPayload describes the information required to send an email.
type SendEmailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// NewSendEmailTask constructs an Asynq task.
func NewSendEmailTask(payload SendEmailPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendEmail, data), nil
}
