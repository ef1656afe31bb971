package dto

import "time"

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type CreateOrderRequest struct {
	Amount   float64           `json:"amount"` // major currency units
	OrderID  string            `json:"orderId"`
	Currency string            `json:"currency"`
	Notes    map[string]string `json:"notes"`
}

type OrderData struct {
	OrderID  string            `json:"order_id"`
	Currency string            `json:"currency"`
	Amount   int64             `json:"amount"` // minor units as submitted
	Notes    map[string]string `json:"notes,omitempty"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string `json:"razorpay_order_id"`
	RazorpayPaymentID string `json:"razorpay_payment_id"`
	RazorpaySignature string `json:"razorpay_signature"`
}

type CreateSubscriptionRequest struct {
	PlanID     string `json:"plan_id"`
	UserID     string `json:"user_id"`
	TotalCount int    `json:"total_count"`
}

type SubscriptionData struct {
	SubscriptionID  string     `json:"subscription_id"`
	PlanID          string     `json:"plan_id"`
	PlanName        string     `json:"plan_name,omitempty"`
	Status          string     `json:"status"`
	ShortURL        string     `json:"short_url,omitempty"`
	NextBillingDate *time.Time `json:"nextBillingDate,omitempty"`
	CurrentEnd      *time.Time `json:"currentEnd,omitempty"`
}

type VerifySubscriptionRequest struct {
	RazorpayPaymentID      string `json:"razorpay_payment_id"`
	RazorpaySubscriptionID string `json:"razorpay_subscription_id"`
	RazorpaySignature      string `json:"razorpay_signature"`
}

type CancelSubscriptionRequest struct {
	SubscriptionID string `json:"subscription_id"`
	UserID         string `json:"user_id"`
}

type PaymentStatusData struct {
	OrderID       string `json:"order_id"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id,omitempty"`
}

type UserData struct {
	UserID       string           `json:"user_id"`
	Credits      int64            `json:"credits"`
	Subscription SubscriptionData `json:"subscription"`
}
