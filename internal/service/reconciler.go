package service

import (
	"context"
	"fmt"
	"razorpay-billing-service/internal/model"
	"razorpay-billing-service/internal/plan"
	"razorpay-billing-service/internal/repository"
	"time"
)

// Reconciler applies subscription lifecycle events to the user record the
// gateway points at. The user is resolved from the subscription's notes
// (user_id), which the service planted there at subscription creation; the
// caller never passes it explicitly.
//
// Events are not deduplicated by event id: redelivering a charged event
// grants the plan credits again. The gateway retries failed deliveries, so
// a user that does not exist yet simply errors back to the webhook and the
// retry is the recovery path.
type Reconciler struct {
	userRepo repository.UserRepository
}

func NewReconciler(userRepo repository.UserRepository) *Reconciler {
	return &Reconciler{
		userRepo: userRepo,
	}
}

func (r *Reconciler) Apply(ctx context.Context, event string, sub *model.SubscriptionEntity) error {
	userID := sub.Notes["user_id"]
	if userID == "" {
		return fmt.Errorf("missing user_id in subscription notes")
	}

	switch event {
	case "subscription.charged":
		return r.applyCharged(ctx, userID, sub)
	case "subscription.cancelled":
		return r.applyStatus(ctx, userID, model.SubscriptionStatusCancelled, "subscription_cancelled_at")
	case "subscription.paused":
		return r.applyStatus(ctx, userID, model.SubscriptionStatusPaused, "subscription_paused_at")
	case "subscription.resumed":
		return r.applyStatus(ctx, userID, model.SubscriptionStatusActive, "subscription_resumed_at")
	default:
		return fmt.Errorf("unsupported lifecycle event %q", event)
	}
}

// applyCharged advances the billing window to the gateway-reported cycle
// end and grants the plan's credits. Unknown plans grant 0 credits and the
// billing dates still advance.
func (r *Reconciler) applyCharged(ctx context.Context, userID string, sub *model.SubscriptionEntity) error {
	fields := map[string]interface{}{
		"subscription_status": model.SubscriptionStatusActive,
	}
	if sub.ChargeAt > 0 {
		fields["subscription_next_billing_date"] = time.Unix(sub.ChargeAt, 0)
	}
	if sub.CurrentEnd > 0 {
		fields["subscription_current_end"] = time.Unix(sub.CurrentEnd, 0)
	}

	if err := r.userRepo.UpdateSubscription(ctx, userID, fields); err != nil {
		return fmt.Errorf("advance billing dates: %w", err)
	}

	if grant := plan.Credits(sub.PlanID); grant > 0 {
		if err := r.userRepo.AddCredits(ctx, userID, grant); err != nil {
			return fmt.Errorf("grant credits: %w", err)
		}
	}

	return nil
}

func (r *Reconciler) applyStatus(ctx context.Context, userID, status, stampColumn string) error {
	return r.userRepo.UpdateSubscription(ctx, userID, map[string]interface{}{
		"subscription_status": status,
		stampColumn:           time.Now(),
	})
}
