package repository

import (
	"context"
	"razorpay-billing-service/internal/model"
	"time"

	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
	MarkSuccess(ctx context.Context, orderID, transactionID string) error
	MarkFailed(ctx context.Context, orderID string) error
}

type paymentRepoImpl struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepoImpl{
		db: db,
	}
}

func (r *paymentRepoImpl) Create(ctx context.Context, payment *model.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepoImpl) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&payment).Error

	if err != nil {
		return nil, err
	}

	return &payment, nil
}

// MarkSuccess flips a PENDING payment to SUCCESS. Terminal payments are
// never updated; the guarded WHERE keeps the status monotonic.
func (r *paymentRepoImpl) MarkSuccess(ctx context.Context, orderID, transactionID string) error {
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":         model.PaymentStatusSuccess,
			"transaction_id": transactionID,
			"updated_at":     time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *paymentRepoImpl) MarkFailed(ctx context.Context, orderID string) error {
	result := r.db.WithContext(ctx).Model(&model.Payment{}).
		Where("order_id = ? AND status = ?", orderID, model.PaymentStatusPending).
		Updates(map[string]interface{}{
			"status":     model.PaymentStatusFailed,
			"updated_at": time.Now(),
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}
