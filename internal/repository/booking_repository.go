package repository

import (
	"context"
	"time"

	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) (*model.Booking, error)
	List(ctx context.Context) ([]*model.Booking, error)
	FindByID(ctx context.Context, id int) (*model.Booking, error)
	UpdateStatus(ctx context.Context, id int, from, to model.BookingStatus) (*model.Booking, error)
}

type BookingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewBookingRepository(pool *pgxpool.Pool) BookingRepository {
	return &BookingRepositoryImpl{
		pool: pool,
	}
}

const bookingColumns = `id, reference, client_name, client_email, client_phone,
		event_type, event_date, guest_count, notes, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.ClientName,
		&booking.ClientEmail,
		&booking.ClientPhone,
		&booking.EventType,
		&booking.EventDate,
		&booking.GuestCount,
		&booking.Notes,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepositoryImpl) Create(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	query := `
		INSERT INTO bookings (
			reference, client_name, client_email, client_phone,
			event_type, event_date, guest_count, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + bookingColumns

	created, err := scanBooking(r.pool.QueryRow(ctx, query,
		booking.Reference, booking.ClientName, booking.ClientEmail, booking.ClientPhone,
		booking.EventType, booking.EventDate, booking.GuestCount, booking.Notes, booking.Status,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (r *BookingRepositoryImpl) List(ctx context.Context) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*model.Booking, 0)
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func (r *BookingRepositoryImpl) FindByID(ctx context.Context, id int) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE id = $1
	`

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrBookingNotFound
		}
		return nil, err
	}

	return booking, nil
}

func (r *BookingRepositoryImpl) UpdateStatus(ctx context.Context, id int, from, to model.BookingStatus) (*model.Booking, error) {
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrInvalidTransition
	}

	query := `
		UPDATE bookings
		SET status = $1, updated_at = $2
		WHERE id = $3 AND status = $4
		RETURNING ` + bookingColumns

	booking, err := scanBooking(r.pool.QueryRow(ctx, query, to, time.Now().UTC(), id, from))
	if err == nil {
		return booking, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	if _, findErr := r.FindByID(ctx, id); findErr != nil {
		return nil, findErr
	}
	return nil, apperrors.ErrInvalidTransition
}
