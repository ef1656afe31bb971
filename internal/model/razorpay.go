package model

// Webhook envelope as delivered by razorpay. Only the fields the
// reconciler reads are mapped.

type SubscriptionEntity struct {
	ID         string            `json:"id"`
	PlanID     string            `json:"plan_id"`
	Status     string            `json:"status"`
	CurrentEnd int64             `json:"current_end"` // unix seconds
	ChargeAt   int64             `json:"charge_at"`   // unix seconds
	TotalCount int               `json:"total_count"`
	PaidCount  int               `json:"paid_count"`
	Notes      map[string]string `json:"notes"`
}

type PaymentEntity struct {
	ID      string `json:"id"`
	OrderID string `json:"order_id"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
}

type SubscriptionPayload struct {
	Entity SubscriptionEntity `json:"entity"`
}

type PaymentPayload struct {
	Entity PaymentEntity `json:"entity"`
}

type WebhookPayload struct {
	Subscription SubscriptionPayload `json:"subscription"`
	Payment      PaymentPayload      `json:"payment"`
}

type RazorpayWebhookEvent struct {
	Entity    string         `json:"entity"`
	Event     string         `json:"event"`
	CreatedAt int64          `json:"created_at"`
	Payload   WebhookPayload `json:"payload"`
}
