package service

import (
	"context"
	"fmt"
	"time"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/internal/ticketcode"
	"slumpers-ticketing/monitoring"
)

type TicketService interface {
	// MintBatch creates the ticket batch a succeeded intent authorizes:
	// exactly Purchase.Quantity tickets, each a separately named credential.
	// Only the payment-confirmation path calls this; there is no route to it.
	MintBatch(ctx context.Context, intent *model.PaymentIntent) ([]*model.Ticket, error)
	Lookup(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	RenderQR(ctx context.Context, ticketNumber string) ([]byte, error)
	RenderBarcode(ctx context.Context, ticketNumber string) ([]byte, error)
	DeleteExpired(ctx context.Context, retention time.Duration) (int64, error)
}

type TicketServiceImpl struct {
	repo  repository.TicketRepository
	codec *ticketcode.Codec
}

func NewTicketService(repo repository.TicketRepository, codec *ticketcode.Codec) TicketService {
	return &TicketServiceImpl{repo: repo, codec: codec}
}

func (s *TicketServiceImpl) MintBatch(ctx context.Context, intent *model.PaymentIntent) ([]*model.Ticket, error) {
	p := intent.Purchase

	batch := make([]*model.Ticket, 0, p.Quantity)
	for i := 0; i < p.Quantity; i++ {
		ticket := &model.Ticket{
			TicketNumber:      ticketcode.MintNumber(),
			EventID:           p.EventID,
			EventTitle:        p.EventTitle,
			EventDate:         p.EventDate,
			EventVenue:        p.EventVenue,
			BuyerName:         p.BuyerName,
			BuyerEmail:        p.BuyerEmail,
			BuyerPhone:        p.BuyerPhone,
			Price:             p.UnitPrice,
			Status:            model.TicketStatusValid,
			CheckoutRequestID: intent.CheckoutRequestID,
		}

		// A ticket without a code payload must never reach the ledger.
		payload, err := s.codec.BuildPayload(ticket)
		if err != nil {
			return nil, fmt.Errorf("build code payload: %w", err)
		}
		ticket.CodePayload = payload
		batch = append(batch, ticket)
	}

	created, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		return nil, err
	}

	monitoring.RecordTicketsMinted(len(created))
	return created, nil
}

func (s *TicketServiceImpl) Lookup(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	return s.repo.FindByNumber(ctx, ticketNumber)
}

func (s *TicketServiceImpl) RenderQR(ctx context.Context, ticketNumber string) ([]byte, error) {
	ticket, err := s.repo.FindByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	return ticketcode.QRImage(ticket.CodePayload)
}

func (s *TicketServiceImpl) RenderBarcode(ctx context.Context, ticketNumber string) ([]byte, error) {
	ticket, err := s.repo.FindByNumber(ctx, ticketNumber)
	if err != nil {
		return nil, err
	}
	return ticketcode.BarcodeImage(ticket.TicketNumber)
}

func (s *TicketServiceImpl) DeleteExpired(ctx context.Context, retention time.Duration) (int64, error) {
	return s.repo.DeleteExpired(ctx, time.Now().UTC().Add(-retention))
}
