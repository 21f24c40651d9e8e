package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	notifierMocks "slumpers-ticketing/internal/mocks/notifiers"
	repoMocks "slumpers-ticketing/internal/mocks/repositories"
	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/notifier"
	"slumpers-ticketing/internal/queue"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type singleChannelSelector struct {
	notifier notifier.Notifier
}

func (s *singleChannelSelector) ForChannel(channel string) (notifier.Notifier, error) {
	return s.notifier, nil
}

func testJob() *model.DeliveryJob {
	return &model.DeliveryJob{
		CheckoutRequestID: "ws_CO_1234",
		Channel:           model.ChannelEmail,
		RecipientName:     "Jane Wanjiru",
		RecipientEmail:    "jane@example.com",
		EventTitle:        "Nairobi Nights Festival",
	}
}

func TestDeliveryWorker(t *testing.T) {
	t.Run("SendsAndAcks", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryDeliveryQueue(4)
		ticketRepo := repoMocks.NewTicketRepositoryMock()
		sender := notifierMocks.NewNotifierMock()

		tickets := []*model.Ticket{{TicketNumber: "SLM1700000000AB12", CheckoutRequestID: "ws_CO_1234"}}
		ticketRepo.On("ListByCheckoutRequestID", mock.Anything, "ws_CO_1234").Return(tickets, nil).Once()

		sent := make(chan struct{})
		sender.On("Name").Return("mock").Maybe()
		sender.On("SendTickets", mock.Anything, mock.Anything, tickets).
			Run(func(mock.Arguments) { close(sent) }).
			Return(nil).Once()

		w := NewDeliveryWorker(q, ticketRepo, &singleChannelSelector{notifier: sender})
		require.NoError(t, w.Start(ctx))

		require.NoError(t, q.PublishDelivery(ctx, testJob()))

		select {
		case <-sent:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery was not sent")
		}
		sender.AssertExpectations(t)
	})

	t.Run("FailureNacksForRetry", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryDeliveryQueue(4)
		ticketRepo := repoMocks.NewTicketRepositoryMock()
		sender := notifierMocks.NewNotifierMock()

		tickets := []*model.Ticket{{TicketNumber: "SLM1700000000AB12", CheckoutRequestID: "ws_CO_1234"}}
		ticketRepo.On("ListByCheckoutRequestID", mock.Anything, "ws_CO_1234").Return(tickets, nil).Twice()

		done := make(chan struct{})
		sender.On("Name").Return("mock").Maybe()
		// First attempt fails; the nacked message comes back and succeeds.
		sender.On("SendTickets", mock.Anything, mock.Anything, tickets).
			Return(errors.New("smtp down")).Once()
		sender.On("SendTickets", mock.Anything, mock.Anything, tickets).
			Run(func(mock.Arguments) { close(done) }).
			Return(nil).Once()

		w := NewDeliveryWorker(q, ticketRepo, &singleChannelSelector{notifier: sender})
		require.NoError(t, w.Start(ctx))

		require.NoError(t, q.PublishDelivery(ctx, testJob()))

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("delivery was not retried")
		}
		sender.AssertExpectations(t)
	})

	t.Run("EmptyBatchDiscarded", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		q := queue.NewMemoryDeliveryQueue(4)
		ticketRepo := repoMocks.NewTicketRepositoryMock()
		sender := notifierMocks.NewNotifierMock()

		listed := make(chan struct{})
		ticketRepo.On("ListByCheckoutRequestID", mock.Anything, "ws_CO_1234").
			Run(func(mock.Arguments) { close(listed) }).
			Return([]*model.Ticket{}, nil).Once()

		w := NewDeliveryWorker(q, ticketRepo, &singleChannelSelector{notifier: sender})
		require.NoError(t, w.Start(ctx))

		require.NoError(t, q.PublishDelivery(ctx, testJob()))

		select {
		case <-listed:
		case <-time.After(2 * time.Second):
			t.Fatal("job was never processed")
		}
		// Give the worker a beat to (incorrectly) call the notifier.
		time.Sleep(50 * time.Millisecond)
		sender.AssertNotCalled(t, "SendTickets", mock.Anything, mock.Anything, mock.Anything)
	})
}
