package handler

import (
	"errors"
	"io"
	"net/http"
	"razorpay-billing-service/internal/dto"
	"razorpay-billing-service/internal/poller"
	"razorpay-billing-service/internal/service"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type BillingHandler struct {
	billingService service.BillingService
	paymentPoller  *poller.Poller
}

func NewBillingHandler(billingService service.BillingService, paymentPoller *poller.Poller) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		paymentPoller:  paymentPoller,
	}
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, &dto.Response{
		Success: false,
		Message: message,
	})
}

// serviceError maps the service error taxonomy onto HTTP statuses:
// validation and signature failures are the caller's fault (400),
// everything else is upstream or persistence trouble (500).
func serviceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return fail(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrBadSignature):
		return fail(c, http.StatusBadRequest, "invalid signature")
	default:
		return fail(c, http.StatusInternalServerError, err.Error())
	}
}

func (h *BillingHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid req body")
	}

	data, err := h.billingService.CreateOrder(ctx, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}

func (h *BillingHandler) VerifyPayment(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifyPaymentRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid req body")
	}

	if err := h.billingService.VerifyPayment(ctx, &req); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Message: "payment verified",
	})
}

func (h *BillingHandler) CreateSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CreateSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid req body")
	}

	data, err := h.billingService.CreateSubscription(ctx, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}

func (h *BillingHandler) VerifySubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.VerifySubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid req body")
	}

	data, err := h.billingService.VerifySubscription(ctx, &req)
	if err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}

func (h *BillingHandler) CancelSubscription(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.CancelSubscriptionRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid req body")
	}

	if err := h.billingService.CancelSubscription(ctx, &req); err != nil {
		return serviceError(c, err)
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Message: "subscription cancelled",
	})
}

func (h *BillingHandler) RazorpayWebhook(c echo.Context) error {
	ctx := c.Request().Context()

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	sig := c.Request().Header.Get("x-razorpay-signature")
	eventID := c.Request().Header.Get("x-razorpay-event-id")

	if err := h.billingService.HandleWebhook(ctx, sig, eventID, body); err != nil {
		if errors.Is(err, service.ErrBadSignature) {
			return fail(c, http.StatusBadRequest, "invalid signature")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
	})
}

func (h *BillingHandler) PaymentStatus(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("orderID")
	if orderID == "" {
		return fail(c, http.StatusBadRequest, "missing order id")
	}

	data, err := h.billingService.PaymentStatus(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "payment not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}

// AwaitPayment blocks until the payment reaches a terminal state or the
// poll bound runs out. Client disconnects cancel the wait through the
// request context.
func (h *BillingHandler) AwaitPayment(c echo.Context) error {
	ctx := c.Request().Context()

	orderID := c.Param("orderID")
	if orderID == "" {
		return fail(c, http.StatusBadRequest, "missing order id")
	}

	result, err := h.paymentPoller.Await(ctx, orderID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: result.State == poller.StateSuccess,
		Data: &dto.PaymentStatusData{
			OrderID:       orderID,
			Status:        string(result.State),
			TransactionID: result.TransactionID,
		},
	})
}

func (h *BillingHandler) GetUser(c echo.Context) error {
	ctx := c.Request().Context()

	userID := c.Param("userID")
	if userID == "" {
		return fail(c, http.StatusBadRequest, "missing user id")
	}

	data, err := h.billingService.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "user not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, &dto.Response{
		Success: true,
		Data:    data,
	})
}
