package gateways

import (
	"context"

	"slumpers-ticketing/internal/gateway"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type CardGatewayMock struct {
	mock.Mock
}

func NewCardGatewayMock() *CardGatewayMock {
	return &CardGatewayMock{}
}

func (m *CardGatewayMock) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*gateway.CardIntent, error) {
	args := m.Called(ctx, amount, currency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CardIntent), args.Error(1)
}

func (m *CardGatewayMock) RetrieveIntent(ctx context.Context, id string) (*gateway.CardIntent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.CardIntent), args.Error(1)
}
