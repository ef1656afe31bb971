package model

import "time"

// Payment statuses. A payment is created PENDING and flips exactly once
// to SUCCESS or FAILED; terminal states are never left.
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusSuccess = "SUCCESS"
	PaymentStatusFailed  = "FAILED"
)

// Subscription statuses as reported through verify and webhook events.
const (
	SubscriptionStatusCreated   = "created"
	SubscriptionStatusActive    = "active"
	SubscriptionStatusCancelled = "cancelled"
	SubscriptionStatusPaused    = "paused"
)

type Payment struct {
	OrderID               string `gorm:"primaryKey;size:64;not null"` // razorpay order id
	Status                string `gorm:"size:32;index;not null"`      // PENDING, SUCCESS, FAILED
	Amount                int64  `gorm:"not null"`                    // minor units (paise)
	Currency              string `gorm:"size:8;not null"`
	MerchantTransactionID string `gorm:"size:64;index;not null"`
	TransactionID         string `gorm:"size:64"` // razorpay payment id, set on SUCCESS
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Subscription struct {
	ID              string `gorm:"size:64;index"` // razorpay subscription id
	Status          string `gorm:"size:32"`       // created, active, cancelled, paused
	Plan            string `gorm:"size:64"`
	PaymentID       string `gorm:"size:64"`
	StartedAt       *time.Time
	NextBillingDate *time.Time
	CurrentEnd      *time.Time
	CancelledAt     *time.Time
	PausedAt        *time.Time
	ResumedAt       *time.Time
}

type User struct {
	ID           string       `gorm:"primaryKey;size:64;not null"`
	Credits      int64        `gorm:"not null;default:0"`
	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;uniqueIndex;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
