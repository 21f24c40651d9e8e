package repositories

import (
	"context"

	"slumpers-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type PaymentIntentRepositoryMock struct {
	mock.Mock
}

func NewPaymentIntentRepositoryMock() *PaymentIntentRepositoryMock {
	return &PaymentIntentRepositoryMock{}
}

func (m *PaymentIntentRepositoryMock) Create(ctx context.Context, intent *model.PaymentIntent) (*model.PaymentIntent, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}

func (m *PaymentIntentRepositoryMock) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}

func (m *PaymentIntentRepositoryMock) Resolve(ctx context.Context, checkoutRequestID string, to model.IntentStatus, providerReceipt, failureReason *string) (*model.PaymentIntent, bool, error) {
	args := m.Called(ctx, checkoutRequestID, to, providerReceipt, failureReason)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentIntent), args.Bool(1), args.Error(2)
}
