package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"razorpay-billing-service/internal/dto"
	"razorpay-billing-service/internal/model"
	"razorpay-billing-service/internal/poller"
	"razorpay-billing-service/internal/service"
)

// fakeBilling lets each test script the service outcome.
type fakeBilling struct {
	orderData   *dto.OrderData
	subData     *dto.SubscriptionData
	statusData  *dto.PaymentStatusData
	userData    *dto.UserData
	err         error
	webhookSig  string
	webhookBody []byte
}

func (f *fakeBilling) CreateOrder(ctx context.Context, req *dto.CreateOrderRequest) (*dto.OrderData, error) {
	return f.orderData, f.err
}

func (f *fakeBilling) VerifyPayment(ctx context.Context, req *dto.VerifyPaymentRequest) error {
	return f.err
}

func (f *fakeBilling) CreateSubscription(ctx context.Context, req *dto.CreateSubscriptionRequest) (*dto.SubscriptionData, error) {
	return f.subData, f.err
}

func (f *fakeBilling) VerifySubscription(ctx context.Context, req *dto.VerifySubscriptionRequest) (*dto.SubscriptionData, error) {
	return f.subData, f.err
}

func (f *fakeBilling) CancelSubscription(ctx context.Context, req *dto.CancelSubscriptionRequest) error {
	return f.err
}

func (f *fakeBilling) HandleWebhook(ctx context.Context, sig, eventID string, body []byte) error {
	f.webhookSig = sig
	f.webhookBody = body
	return f.err
}

func (f *fakeBilling) PaymentStatus(ctx context.Context, orderID string) (*dto.PaymentStatusData, error) {
	return f.statusData, f.err
}

func (f *fakeBilling) GetUser(ctx context.Context, userID string) (*dto.UserData, error) {
	return f.userData, f.err
}

type fakeReader struct {
	payment *model.Payment
}

func (f *fakeReader) FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error) {
	return f.payment, nil
}

func doRequest(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(c echo.Context)) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, h(c))

	var envelope dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))

	return rec, envelope
}

func TestCreateOrder_OK(t *testing.T) {
	billing := &fakeBilling{
		orderData: &dto.OrderData{OrderID: "order_1", Currency: "INR", Amount: 2000},
	}
	h := NewBillingHandler(billing, nil)

	rec, envelope := doRequest(t, h.CreateOrder, http.MethodPost, "/api/razorpay-order",
		`{"amount": 20}`, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestCreateOrder_ValidationError(t *testing.T) {
	billing := &fakeBilling{err: service.ErrValidation}
	h := NewBillingHandler(billing, nil)

	rec, envelope := doRequest(t, h.CreateOrder, http.MethodPost, "/api/razorpay-order",
		`{}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}

func TestVerifyPayment_BadSignature(t *testing.T) {
	billing := &fakeBilling{err: service.ErrBadSignature}
	h := NewBillingHandler(billing, nil)

	rec, envelope := doRequest(t, h.VerifyPayment, http.MethodPost, "/api/razorpay-verify",
		`{"razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"bad"}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
	assert.Equal(t, "invalid signature", envelope.Message)
}

func TestRazorpayWebhook_PassesRawBodyAndHeaders(t *testing.T) {
	billing := &fakeBilling{}
	h := NewBillingHandler(billing, nil)

	body := `{ "event": "subscription.charged" }`
	rec, envelope := doRequest(t, h.RazorpayWebhook, http.MethodPost, "/api/webhooks/razorpay",
		body, func(c echo.Context) {
			c.Request().Header.Set("x-razorpay-signature", "sig-value")
			c.Request().Header.Set("x-razorpay-event-id", "evt_1")
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
	assert.Equal(t, "sig-value", billing.webhookSig)
	assert.Equal(t, body, string(billing.webhookBody), "body bytes must reach the verifier untouched")
}

func TestRazorpayWebhook_BadSignature(t *testing.T) {
	billing := &fakeBilling{err: service.ErrBadSignature}
	h := NewBillingHandler(billing, nil)

	rec, envelope := doRequest(t, h.RazorpayWebhook, http.MethodPost, "/api/webhooks/razorpay",
		`{}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, envelope.Success)
}

func TestRazorpayWebhook_ProcessingError(t *testing.T) {
	billing := &fakeBilling{err: errors.New("user document missing")}
	h := NewBillingHandler(billing, nil)

	rec, envelope := doRequest(t, h.RazorpayWebhook, http.MethodPost, "/api/webhooks/razorpay",
		`{}`, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.False(t, envelope.Success)
}

func TestAwaitPayment_Success(t *testing.T) {
	reader := &fakeReader{
		payment: &model.Payment{
			OrderID:       "order_1",
			Status:        model.PaymentStatusSuccess,
			TransactionID: "pay_1",
		},
	}
	p := poller.New(reader, poller.WithInterval(time.Millisecond))
	h := NewBillingHandler(&fakeBilling{}, p)

	rec, envelope := doRequest(t, h.AwaitPayment, http.MethodGet, "/api/await-payment/order_1",
		"", func(c echo.Context) {
			c.SetParamNames("orderID")
			c.SetParamValues("order_1")
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, envelope.Success)
}

func TestAwaitPayment_Timeout(t *testing.T) {
	reader := &fakeReader{
		payment: &model.Payment{OrderID: "order_1", Status: model.PaymentStatusPending},
	}
	p := poller.New(reader, poller.WithInterval(time.Millisecond), poller.WithMaxAttempts(3))
	h := NewBillingHandler(&fakeBilling{}, p)

	rec, envelope := doRequest(t, h.AwaitPayment, http.MethodGet, "/api/await-payment/order_1",
		"", func(c echo.Context) {
			c.SetParamNames("orderID")
			c.SetParamValues("order_1")
		})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, envelope.Success)
}
