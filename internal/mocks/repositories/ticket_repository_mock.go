package repositories

import (
	"context"
	"time"

	"slumpers-ticketing/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type TicketRepositoryMock struct {
	mock.Mock
}

func NewTicketRepositoryMock() *TicketRepositoryMock {
	return &TicketRepositoryMock{}
}

func (m *TicketRepositoryMock) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) FindByNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) ListByCheckoutRequestID(ctx context.Context, checkoutRequestID string) ([]*model.Ticket, error) {
	args := m.Called(ctx, checkoutRequestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) UpdateStatus(ctx context.Context, ticketNumber string, from, to model.TicketStatus, usedAt *time.Time) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber, from, to, usedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) CreateBatch(ctx context.Context, tickets []*model.Ticket) ([]*model.Ticket, error) {
	args := m.Called(ctx, tickets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Ticket), args.Error(1)
}

func (m *TicketRepositoryMock) DeleteExpired(ctx context.Context, eventEndedBefore time.Time) (int64, error) {
	args := m.Called(ctx, eventEndedBefore)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TicketRepositoryMock) CreateInTx(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	args := m.Called(ctx, tx, ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}
