package payments

// CreatePaymentRequest is the payload for recording a payment.
type CreatePaymentRequest struct {
	PeriodID  int64   `json:"period_id" validate:"required,gt=0"`
	Status    string  `json:"status" validate:"required"`
	Days      int     `json:"days" validate:"gte=0"`
	Amount    float64 `json:"amount" validate:"gte=0"`
	Reference string  `json:"reference" validate:"omitempty,max=128"`
}

// UpdatePaymentRequest patches a payment record. Absent fields are left
// untouched.
type UpdatePaymentRequest struct {
	Status    *string  `json:"status"`
	Days      *int     `json:"days" validate:"omitempty,gte=0"`
	Amount    *float64 `json:"amount" validate:"omitempty,gte=0"`
	Reference *string  `json:"reference" validate:"omitempty,max=128"`
}

// ListPaymentsRequest filters the payment listing.
type ListPaymentsRequest struct {
	PeriodID int64
	Status   Status
}
