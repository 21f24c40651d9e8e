package services

import (
	"context"
	"time"

	"slumpers-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type TicketServiceMock struct {
	mock.Mock
}

func NewTicketServiceMock() *TicketServiceMock {
	return &TicketServiceMock{}
}

func (m *TicketServiceMock) MintBatch(ctx context.Context, intent *model.PaymentIntent) ([]*model.Ticket, error) {
	args := m.Called(ctx, intent)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) Lookup(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketServiceMock) RenderQR(ctx context.Context, ticketNumber string) ([]byte, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *TicketServiceMock) RenderBarcode(ctx context.Context, ticketNumber string) ([]byte, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *TicketServiceMock) DeleteExpired(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}
