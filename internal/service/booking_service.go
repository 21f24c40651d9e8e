package service

import (
	"context"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BookingService interface {
	Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error)
	List(ctx context.Context) ([]*model.Booking, error)
	Get(ctx context.Context, id int) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id int, to model.BookingStatus) (*model.Booking, error)
}

type BookingServiceImpl struct {
	repo repository.BookingRepository
}

func NewBookingService(repo repository.BookingRepository) BookingService {
	return &BookingServiceImpl{repo: repo}
}

func (s *BookingServiceImpl) Create(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	booking, err := s.repo.Create(ctx, &model.Booking{
		Reference:   uuid.New(),
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		EventType:   req.EventType,
		EventDate:   req.EventDate,
		GuestCount:  req.GuestCount,
		Notes:       req.Notes,
		Status:      model.BookingStatusPending,
	})
	if err != nil {
		return nil, err
	}

	logger.WithComponent("booking").Info("booking request created",
		zap.String("reference", booking.Reference.String()),
		zap.String("event_type", booking.EventType))
	return booking, nil
}

func (s *BookingServiceImpl) List(ctx context.Context) ([]*model.Booking, error) {
	return s.repo.List(ctx)
}

func (s *BookingServiceImpl) Get(ctx context.Context, id int) (*model.Booking, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *BookingServiceImpl) UpdateStatus(ctx context.Context, id int, to model.BookingStatus) (*model.Booking, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateStatus(ctx, id, current.Status, to)
}
