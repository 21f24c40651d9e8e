package notifiers

import (
	"context"

	"slumpers-ticketing/internal/model"

	"github.com/stretchr/testify/mock"
)

type NotifierMock struct {
	mock.Mock
}

func NewNotifierMock() *NotifierMock {
	return &NotifierMock{}
}

func (m *NotifierMock) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *NotifierMock) SendTickets(ctx context.Context, job *model.DeliveryJob, tickets []*model.Ticket) error {
	args := m.Called(ctx, job, tickets)
	return args.Error(0)
}
