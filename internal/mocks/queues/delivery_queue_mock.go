package queues

import (
	"context"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/queue"

	"github.com/stretchr/testify/mock"
)

type DeliveryQueueMock struct {
	mock.Mock
}

func NewDeliveryQueueMock() *DeliveryQueueMock {
	return &DeliveryQueueMock{}
}

func (m *DeliveryQueueMock) PublishDelivery(ctx context.Context, job *model.DeliveryJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *DeliveryQueueMock) SubscribeDeliveries(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
