package testutil

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"razorpay-billing-service/internal/model"
)

// SetupTestDB opens an in-memory sqlite database with the full schema.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to connect test database: %v", err)
	}

	err = db.AutoMigrate(
		&model.Payment{},
		&model.User{},
		&model.WebhookEvent{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func CleanupTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Logf("Warning: Failed to get underlying DB: %v", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		t.Logf("Warning: Failed to close test database: %v", err)
	}
}

// TestUser inserts a user fixture and returns it.
func TestUser(t *testing.T, db *gorm.DB, userID string) *model.User {
	t.Helper()

	user := &model.User{ID: userID}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return user
}

// TestPayment inserts a payment fixture in the given status.
func TestPayment(t *testing.T, db *gorm.DB, orderID, status string) *model.Payment {
	t.Helper()

	payment := &model.Payment{
		OrderID:               orderID,
		Status:                status,
		Amount:                1000,
		Currency:              "INR",
		MerchantTransactionID: "txn-" + orderID,
	}
	if err := db.Create(payment).Error; err != nil {
		t.Fatalf("Failed to create test payment: %v", err)
	}

	return payment
}
