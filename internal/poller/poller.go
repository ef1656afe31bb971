package poller

import (
	"context"
	"errors"
	"razorpay-billing-service/internal/model"
	"time"

	"gorm.io/gorm"
)

// State of a finished confirmation wait.
type State string

const (
	StateSuccess State = "SUCCESS"
	StateFailed  State = "FAILED"
	StateTimeout State = "TIMEOUT"
)

const (
	defaultInterval    = 5 * time.Second
	defaultMaxAttempts = 60
)

// PaymentReader is the slice of the payment repository the poller needs.
type PaymentReader interface {
	FindByOrderID(ctx context.Context, orderID string) (*model.Payment, error)
}

type Result struct {
	State         State
	TransactionID string
	Attempts      int
}

// Poller waits for a payment record to reach a terminal status. One read
// per interval, at most one outstanding read, no locks held between reads.
type Poller struct {
	payments    PaymentReader
	interval    time.Duration
	maxAttempts int
}

type Option func(*Poller)

func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		p.interval = d
	}
}

func WithMaxAttempts(n int) Option {
	return func(p *Poller) {
		p.maxAttempts = n
	}
}

func New(payments PaymentReader, opts ...Option) *Poller {
	p := &Poller{
		payments:    payments,
		interval:    defaultInterval,
		maxAttempts: defaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Await blocks until the payment for orderID reaches SUCCESS or FAILED, the
// attempt bound is exhausted (TIMEOUT), or ctx is cancelled. Cancellation
// stops scheduling immediately; no timer is left running.
func (p *Poller) Await(ctx context.Context, orderID string) (*Result, error) {
	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for attempts := 1; attempts <= p.maxAttempts; attempts++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		payment, err := p.payments.FindByOrderID(ctx, orderID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}

		if err == nil {
			switch payment.Status {
			case model.PaymentStatusSuccess:
				return &Result{
					State:         StateSuccess,
					TransactionID: payment.TransactionID,
					Attempts:      attempts,
				}, nil
			case model.PaymentStatusFailed:
				return &Result{
					State:    StateFailed,
					Attempts: attempts,
				}, nil
			}
		}

		timer.Reset(p.interval)
	}

	return &Result{
		State:    StateTimeout,
		Attempts: p.maxAttempts,
	}, nil
}
