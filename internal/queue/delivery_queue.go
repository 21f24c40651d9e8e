package queue

import (
	"context"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type Delivery struct {
	Data *model.DeliveryJob
	Ack  func()
	Nack func(requeue bool)
}

type DeliveryQueue interface {
	// PublishDelivery enqueues a ticket delivery job. The caller guarantees
	// at-most-once publishing per intent; the queue guarantees at-least-once
	// consumption.
	PublishDelivery(ctx context.Context, job *model.DeliveryJob) error
	SubscribeDeliveries(ctx context.Context) (<-chan Delivery, error)
}

// MemoryDeliveryQueue backs the queue with a Go channel. Used in tests and
// single-process deployments without Redis.
type MemoryDeliveryQueue struct {
	ch chan *model.DeliveryJob
}

func NewMemoryDeliveryQueue(bufferSize int) DeliveryQueue {
	return &MemoryDeliveryQueue{
		ch: make(chan *model.DeliveryJob, bufferSize),
	}
}

func (q *MemoryDeliveryQueue) PublishDelivery(ctx context.Context, job *model.DeliveryJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *MemoryDeliveryQueue) SubscribeDeliveries(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: job,
					Ack:  func() {},
					Nack: func(requeue bool) {
						if !requeue {
							return
						}
						select {
						case q.ch <- job:
						default:
							// A full buffer must not wedge the worker.
							logger.WithComponent("queue").Warn("requeue dropped, delivery buffer full",
								zap.String("checkout_request_id", job.CheckoutRequestID))
						}
					},
				}
			}
		}
	}()

	return out, nil
}
