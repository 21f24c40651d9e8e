package services

import (
	"context"

	"slumpers-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type PaymentServiceMock struct {
	mock.Mock
}

func NewPaymentServiceMock() *PaymentServiceMock {
	return &PaymentServiceMock{}
}

func (m *PaymentServiceMock) OpenMpesaIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}

func (m *PaymentServiceMock) OpenCardIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, string, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*model.PaymentIntent), args.String(1), args.Error(2)
}

func (m *PaymentServiceMock) ResolveCallback(ctx context.Context, checkoutRequestID string, outcome model.CallbackOutcome) (*model.PaymentIntent, error) {
	args := m.Called(ctx, checkoutRequestID, outcome)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}

func (m *PaymentServiceMock) Query(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PaymentIntent), args.Error(1)
}
