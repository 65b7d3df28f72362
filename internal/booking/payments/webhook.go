package payments

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/bookline/bookline/internal/platform/httpx"
	"github.com/bookline/bookline/internal/shared"
)

const webhookModule = "payment_webhook"

// WebhookPayload is the external payment-system notification. Records are
// created or updated on the provider side; this event only tells us which
// period needs a reconciliation pass.
type WebhookPayload struct {
	Kind      string  `json:"kind" validate:"required,oneof=create update"`
	PaymentID int64   `json:"payment_record_id" validate:"required,gt=0"`
	PeriodID  int64   `json:"work_period_id" validate:"required,gt=0"`
	Status    string  `json:"status" validate:"omitempty"`
	Days      int     `json:"days" validate:"gte=0"`
	Amount    float64 `json:"amount" validate:"gte=0"`
}

// DeliveryDeduper tracks processed delivery keys. A key that was inserted
// for a delivery that then failed must be removable so the provider's
// retry is not answered as already processed.
type DeliveryDeduper interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Remove(ctx context.Context, key, module string) error
}

// WebhookHandler accepts payment change notifications and enqueues
// reconciliation work. It never writes payment records itself.
type WebhookHandler struct {
	logger   *slog.Logger
	dedupe   DeliveryDeduper
	enqueuer SyncEnqueuer
	validate *validator.Validate
}

// NewWebhookHandler builds the webhook handler. A nil dedupe disables
// idempotency-key handling.
func NewWebhookHandler(logger *slog.Logger, dedupe DeliveryDeduper, enqueuer SyncEnqueuer) *WebhookHandler {
	return &WebhookHandler{logger: logger, dedupe: dedupe, enqueuer: enqueuer, validate: validator.New()}
}

// ServeHTTP handles POST /webhooks/payments.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var payload WebhookPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if payload.Status != "" && !Status(payload.Status).Valid() {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown payment status")
		return
	}

	key := r.Header.Get("Idempotency-Key")
	deduped := key != "" && h.dedupe != nil
	if deduped {
		if err := h.dedupe.CheckAndInsert(r.Context(), key, webhookModule); err != nil {
			if errors.Is(err, shared.ErrIdempotencyConflict) {
				httpx.JSON(w, http.StatusOK, map[string]string{"status": "already processed"})
				return
			}
			h.logger.Error("webhook dedupe", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
			return
		}
	}

	if err := h.enqueuer.EnqueuePaymentSync(r.Context(), ChangeKind(payload.Kind), payload.PaymentID, payload.PeriodID); err != nil {
		// Release the key so the provider's retry of this delivery is
		// processed instead of answered as a duplicate.
		if deduped {
			if rmErr := h.dedupe.Remove(r.Context(), key, webhookModule); rmErr != nil {
				h.logger.Error("webhook dedupe release", slog.String("key", key), slog.Any("error", rmErr))
			}
		}
		h.logger.Error("webhook enqueue", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}
