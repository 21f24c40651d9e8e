package services

import (
	"context"

	"slumpers-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type VerificationServiceMock struct {
	mock.Mock
}

func NewVerificationServiceMock() *VerificationServiceMock {
	return &VerificationServiceMock{}
}

func (m *VerificationServiceMock) Verify(ctx context.Context, req *model.VerifyTicketRequest) (*model.VerificationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VerificationResult), args.Error(1)
}

func (m *VerificationServiceMock) Lookup(ctx context.Context, ticketNumber string) (*model.VerificationResult, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VerificationResult), args.Error(1)
}

func (m *VerificationServiceMock) Cancel(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	args := m.Called(ctx, ticketNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Ticket), args.Error(1)
}
