package gateways

import (
	"context"

	"slumpers-ticketing/internal/gateway"

	"github.com/stretchr/testify/mock"
)

type StkGatewayMock struct {
	mock.Mock
}

func NewStkGatewayMock() *StkGatewayMock {
	return &StkGatewayMock{}
}

func (m *StkGatewayMock) InitiateSTKPush(ctx context.Context, req gateway.StkPushRequest) (*gateway.StkPushResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.StkPushResponse), args.Error(1)
}

func (m *StkGatewayMock) QuerySTKStatus(ctx context.Context, checkoutRequestID string) (*gateway.StkQueryResponse, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.StkQueryResponse), args.Error(1)
}
