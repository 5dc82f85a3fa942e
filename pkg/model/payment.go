package model

const (
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

// PaymentIntentRequest is sent to the external payment gateway when a
// hold is placed.
type PaymentIntentRequest struct {
	BookingID       string `json:"booking_id"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
	PaymentMethodID string `json:"payment_method_id"`
}

type PaymentIntent struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// PaymentResult is the asynchronous success/failure signal posted back by
// the gateway.
type PaymentResult struct {
	IntentID  string `json:"intent_id" validate:"required"`
	BookingID string `json:"booking_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=succeeded failed"`
}

func (r *PaymentResult) Succeeded() bool {
	return r.Status == PaymentSucceeded
}
