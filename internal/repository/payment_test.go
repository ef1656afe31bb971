package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"razorpay-billing-service/internal/model"
	"razorpay-billing-service/internal/testutil"
)

func TestPaymentRepository_CreateAndFind(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	err := repo.Create(ctx, &model.Payment{
		OrderID:               "order_1",
		Status:                model.PaymentStatusPending,
		Amount:                2000,
		Currency:              "INR",
		MerchantTransactionID: "mt-1",
	})
	require.NoError(t, err)

	found, err := repo.FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusPending, found.Status)
	assert.Equal(t, int64(2000), found.Amount)
}

func TestPaymentRepository_FindByOrderID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)

	_, err := repo.FindByOrderID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestPaymentRepository_MarkSuccess(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	testutil.TestPayment(t, db, "order_1", model.PaymentStatusPending)

	require.NoError(t, repo.MarkSuccess(ctx, "order_1", "pay_abc"))

	found, err := repo.FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, found.Status)
	assert.Equal(t, "pay_abc", found.TransactionID)
}

func TestPaymentRepository_MarkSuccess_TerminalStatusUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	testutil.TestPayment(t, db, "order_1", model.PaymentStatusFailed)

	err := repo.MarkSuccess(ctx, "order_1", "pay_abc")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, found.Status)
	assert.Empty(t, found.TransactionID)
}

func TestPaymentRepository_MarkFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	testutil.TestPayment(t, db, "order_1", model.PaymentStatusPending)

	require.NoError(t, repo.MarkFailed(ctx, "order_1"))

	found, err := repo.FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusFailed, found.Status)
}

func TestPaymentRepository_MarkFailed_AfterSuccessUnchanged(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewPaymentRepository(db)
	ctx := context.Background()

	testutil.TestPayment(t, db, "order_1", model.PaymentStatusPending)
	require.NoError(t, repo.MarkSuccess(ctx, "order_1", "pay_abc"))

	err := repo.MarkFailed(ctx, "order_1")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	found, err := repo.FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusSuccess, found.Status)
}
