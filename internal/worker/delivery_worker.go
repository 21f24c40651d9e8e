package worker

import (
	"context"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/notifier"
	"slumpers-ticketing/internal/queue"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/monitoring"
	"slumpers-ticketing/pkg/logger"

	"go.uber.org/zap"
)

// ChannelSelector resolves a delivery channel name to a backend. Satisfied
// by notifier.Registry.
type ChannelSelector interface {
	ForChannel(channel string) (notifier.Notifier, error)
}

type DeliveryWorker interface {
	Start(ctx context.Context) error
}

type DeliveryWorkerImpl struct {
	queue      queue.DeliveryQueue
	ticketRepo repository.TicketRepository
	notifiers  ChannelSelector
}

func NewDeliveryWorker(q queue.DeliveryQueue, ticketRepo repository.TicketRepository, notifiers ChannelSelector) DeliveryWorker {
	return &DeliveryWorkerImpl{
		queue:      q,
		ticketRepo: ticketRepo,
		notifiers:  notifiers,
	}
}

func (w *DeliveryWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeDeliveries(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			if err := w.handle(ctx, msg.Data); err != nil {
				// Delivery failure never touches ticket or payment state;
				// the message goes back for a delayed retry.
				logger.WithComponent("worker").Warn("delivery failed, will retry",
					zap.String("checkout_request_id", msg.Data.CheckoutRequestID),
					zap.String("channel", msg.Data.Channel),
					zap.Error(err))
				monitoring.RecordDelivery(msg.Data.Channel, "failure")
				msg.Nack(true)
			} else {
				monitoring.RecordDelivery(msg.Data.Channel, "success")
				msg.Ack()
			}
		}
	}()
	return nil
}

func (w *DeliveryWorkerImpl) handle(ctx context.Context, job *model.DeliveryJob) error {
	// Re-read the batch from the ledger so a redelivered job sends current
	// records, not a stale snapshot.
	tickets, err := w.ticketRepo.ListByCheckoutRequestID(ctx, job.CheckoutRequestID)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		logger.WithComponent("worker").Error("delivery job with no ledger tickets, discarding",
			zap.String("checkout_request_id", job.CheckoutRequestID))
		return nil
	}

	sender, err := w.notifiers.ForChannel(job.Channel)
	if err != nil {
		return err
	}

	if err := sender.SendTickets(ctx, job, tickets); err != nil {
		return err
	}

	logger.WithComponent("worker").Info("tickets delivered",
		zap.String("checkout_request_id", job.CheckoutRequestID),
		zap.String("channel", job.Channel),
		zap.String("backend", sender.Name()),
		zap.Int("tickets", len(tickets)))
	return nil
}
