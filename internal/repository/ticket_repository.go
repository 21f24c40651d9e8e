package repository

import (
	"context"
	"errors"
	"time"

	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type TicketRepository interface {
	Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error)
	FindByNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error)
	ListByCheckoutRequestID(ctx context.Context, checkoutRequestID string) ([]*model.Ticket, error)
	// UpdateStatus is the sole mutation path for ticket status. It performs
	// a compare-and-swap: the row is updated only when its current status
	// equals from. Losing the swap surfaces ErrInvalidTransition.
	UpdateStatus(ctx context.Context, ticketNumber string, from, to model.TicketStatus, usedAt *time.Time) (*model.Ticket, error)
	// CreateBatch writes a whole mint batch in one transaction; either every
	// ticket becomes valid or none do.
	CreateBatch(ctx context.Context, tickets []*model.Ticket) ([]*model.Ticket, error)
	DeleteExpired(ctx context.Context, eventEndedBefore time.Time) (int64, error)

	// Transaction methods
	CreateInTx(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error)
}

type TicketRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &TicketRepositoryImpl{
		pool: pool,
	}
}

const ticketColumns = `id, ticket_number, event_id, event_title, event_date, event_venue,
		buyer_name, buyer_email, buyer_phone, price, code_payload, status,
		checkout_request_id, created_at, used_at`

func scanTicket(row pgx.Row) (*model.Ticket, error) {
	var ticket model.Ticket
	err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.EventID,
		&ticket.EventTitle,
		&ticket.EventDate,
		&ticket.EventVenue,
		&ticket.BuyerName,
		&ticket.BuyerEmail,
		&ticket.BuyerPhone,
		&ticket.Price,
		&ticket.CodePayload,
		&ticket.Status,
		&ticket.CheckoutRequestID,
		&ticket.CreatedAt,
		&ticket.UsedAt,
	)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

func (r *TicketRepositoryImpl) Create(ctx context.Context, ticket *model.Ticket) (*model.Ticket, error) {
	return r.create(ctx, r.pool, ticket)
}

func (r *TicketRepositoryImpl) CreateInTx(ctx context.Context, tx pgx.Tx, ticket *model.Ticket) (*model.Ticket, error) {
	return r.create(ctx, tx, ticket)
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *TicketRepositoryImpl) create(ctx context.Context, q queryRower, ticket *model.Ticket) (*model.Ticket, error) {
	query := `
		INSERT INTO tickets (
			ticket_number, event_id, event_title, event_date, event_venue,
			buyer_name, buyer_email, buyer_phone, price, code_payload,
			status, checkout_request_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + ticketColumns

	created, err := scanTicket(q.QueryRow(ctx, query,
		ticket.TicketNumber, ticket.EventID, ticket.EventTitle, ticket.EventDate,
		ticket.EventVenue, ticket.BuyerName, ticket.BuyerEmail, ticket.BuyerPhone,
		ticket.Price, ticket.CodePayload, ticket.Status, ticket.CheckoutRequestID,
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrDuplicateTicketNumber
		}
		return nil, err
	}

	return created, nil
}

func (r *TicketRepositoryImpl) CreateBatch(ctx context.Context, tickets []*model.Ticket) ([]*model.Ticket, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	created := make([]*model.Ticket, 0, len(tickets))
	for _, ticket := range tickets {
		c, err := r.create(ctx, tx, ticket)
		if err != nil {
			return nil, err
		}
		created = append(created, c)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *TicketRepositoryImpl) FindByNumber(ctx context.Context, ticketNumber string) (*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE ticket_number = $1
	`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, ticketNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, err
	}

	return ticket, nil
}

func (r *TicketRepositoryImpl) ListByCheckoutRequestID(ctx context.Context, checkoutRequestID string) ([]*model.Ticket, error) {
	query := `
		SELECT ` + ticketColumns + `
		FROM tickets
		WHERE checkout_request_id = $1
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tickets := make([]*model.Ticket, 0)
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, ticket)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tickets, nil
}

func (r *TicketRepositoryImpl) UpdateStatus(ctx context.Context, ticketNumber string, from, to model.TicketStatus, usedAt *time.Time) (*model.Ticket, error) {
	if !from.CanTransitionTo(to) {
		return nil, apperrors.ErrInvalidTransition
	}

	query := `
		UPDATE tickets
		SET status = $1, used_at = COALESCE($2, used_at)
		WHERE ticket_number = $3 AND status = $4
		RETURNING ` + ticketColumns

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, to, usedAt, ticketNumber, from))
	if err == nil {
		return ticket, nil
	}
	if err != pgx.ErrNoRows {
		return nil, err
	}

	// The conditional update matched nothing: either the ticket does not
	// exist or another caller moved it first. Re-read to tell them apart.
	if _, findErr := r.FindByNumber(ctx, ticketNumber); findErr != nil {
		return nil, findErr
	}
	return nil, apperrors.ErrInvalidTransition
}

func (r *TicketRepositoryImpl) DeleteExpired(ctx context.Context, eventEndedBefore time.Time) (int64, error) {
	query := `
		DELETE FROM tickets
		WHERE event_date < $1
	`

	result, err := r.pool.Exec(ctx, query, eventEndedBefore)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
