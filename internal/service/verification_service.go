package service

import (
	"context"
	"errors"
	"time"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/internal/ticketcode"
	"slumpers-ticketing/monitoring"
	apperrors "slumpers-ticketing/pkg/app_errors"
	"slumpers-ticketing/pkg/logger"

	"go.uber.org/zap"
)

type VerificationService interface {
	// Verify attempts to redeem a ticket at the gate. Every call gets a
	// VerificationResult; an error return means the answer is unknown, never
	// that the ticket was bad.
	Verify(ctx context.Context, req *model.VerifyTicketRequest) (*model.VerificationResult, error)
	Lookup(ctx context.Context, ticketNumber string) (*model.VerificationResult, error)
	Cancel(ctx context.Context, ticketNumber string) (*model.Ticket, error)
}

type VerificationServiceImpl struct {
	repo  repository.TicketRepository
	codec *ticketcode.Codec
}

func NewVerificationService(repo repository.TicketRepository, codec *ticketcode.Codec) VerificationService {
	return &VerificationServiceImpl{repo: repo, codec: codec}
}

func (s *VerificationServiceImpl) Verify(ctx context.Context, req *model.VerifyTicketRequest) (*model.VerificationResult, error) {
	ticket, err := s.repo.FindByNumber(ctx, req.TicketNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			return s.record(&model.VerificationResult{Outcome: model.OutcomeTicketNotFound}), nil
		}
		return nil, err
	}

	// A scanned payload is cross-checked before any state moves; a tampered
	// code must not consume the redemption.
	if req.CodePayload != "" {
		if err := s.codec.VerifyPayload(req.CodePayload, ticket); err != nil {
			if errors.Is(err, apperrors.ErrPayloadMismatch) {
				logger.WithComponent("verification").Warn("code payload mismatch",
					zap.String("ticket_number", ticket.TicketNumber))
				return s.record(&model.VerificationResult{Outcome: model.OutcomePayloadMismatch, Ticket: ticket}), nil
			}
			return nil, err
		}
	}

	switch ticket.Status {
	case model.TicketStatusUsed:
		return s.record(&model.VerificationResult{Outcome: model.OutcomeAlreadyUsed, Ticket: ticket}), nil
	case model.TicketStatusCancelled:
		return s.record(&model.VerificationResult{Outcome: model.OutcomeCancelled, Ticket: ticket}), nil
	}

	now := time.Now().UTC()
	redeemed, err := s.repo.UpdateStatus(ctx, ticket.TicketNumber, model.TicketStatusValid, model.TicketStatusUsed, &now)
	if err == nil {
		return s.record(&model.VerificationResult{Outcome: model.OutcomeVerified, Ticket: redeemed}), nil
	}
	if !errors.Is(err, apperrors.ErrInvalidTransition) {
		return nil, err
	}

	// Lost the swap to a concurrent scan. Re-read so the result carries the
	// winner's used_at, not ours.
	current, findErr := s.repo.FindByNumber(ctx, ticket.TicketNumber)
	if findErr != nil {
		return nil, findErr
	}
	if current.Status == model.TicketStatusCancelled {
		return s.record(&model.VerificationResult{Outcome: model.OutcomeCancelled, Ticket: current}), nil
	}
	return s.record(&model.VerificationResult{Outcome: model.OutcomeAlreadyUsed, Ticket: current}), nil
}

func (s *VerificationServiceImpl) Lookup(ctx context.Context, ticketNumber string) (*model.VerificationResult, error) {
	ticket, err := s.repo.FindByNumber(ctx, ticketNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrTicketNotFound) {
			return &model.VerificationResult{Outcome: model.OutcomeTicketNotFound}, nil
		}
		return nil, err
	}

	outcome := model.OutcomeValid
	switch ticket.Status {
	case model.TicketStatusUsed:
		outcome = model.OutcomeAlreadyUsed
	case model.TicketStatusCancelled:
		outcome = model.OutcomeCancelled
	}

	return &model.VerificationResult{Outcome: outcome, Ticket: ticket}, nil
}

func (s *VerificationServiceImpl) Cancel(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	ticket, err := s.repo.UpdateStatus(ctx, ticketNumber, model.TicketStatusValid, model.TicketStatusCancelled, nil)
	if err != nil {
		return nil, err
	}

	logger.WithComponent("verification").Info("ticket cancelled",
		zap.String("ticket_number", ticket.TicketNumber))
	return ticket, nil
}

func (s *VerificationServiceImpl) record(result *model.VerificationResult) *model.VerificationResult {
	monitoring.RecordVerification(string(result.Outcome))
	return result
}
