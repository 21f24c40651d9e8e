package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PaymentIntentRepository interface {
	Create(ctx context.Context, intent *model.PaymentIntent) (*model.PaymentIntent, error)
	FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error)
	// Resolve moves an intent to a terminal status with a compare-and-swap
	// gated on status = initiated. The boolean reports whether this call won
	// the transition; a losing call gets the already-terminal record back
	// untouched. Duplicate provider callbacks therefore trigger downstream
	// effects at most once.
	Resolve(ctx context.Context, checkoutRequestID string, to model.IntentStatus, providerReceipt, failureReason *string) (*model.PaymentIntent, bool, error)
}

type PaymentIntentRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewPaymentIntentRepository(pool *pgxpool.Pool) PaymentIntentRepository {
	return &PaymentIntentRepositoryImpl{
		pool: pool,
	}
}

const intentColumns = `id, checkout_request_id, provider, amount, currency, payer_ref,
		account_reference, status, provider_receipt, failure_reason, purchase,
		created_at, updated_at, resolved_at`

func scanIntent(row pgx.Row) (*model.PaymentIntent, error) {
	var intent model.PaymentIntent
	var purchase []byte
	err := row.Scan(
		&intent.ID,
		&intent.CheckoutRequestID,
		&intent.Provider,
		&intent.Amount,
		&intent.Currency,
		&intent.PayerRef,
		&intent.AccountReference,
		&intent.Status,
		&intent.ProviderReceipt,
		&intent.FailureReason,
		&purchase,
		&intent.CreatedAt,
		&intent.UpdatedAt,
		&intent.ResolvedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(purchase, &intent.Purchase); err != nil {
		return nil, fmt.Errorf("unmarshal purchase snapshot: %w", err)
	}
	return &intent, nil
}

func (r *PaymentIntentRepositoryImpl) Create(ctx context.Context, intent *model.PaymentIntent) (*model.PaymentIntent, error) {
	purchase, err := json.Marshal(intent.Purchase)
	if err != nil {
		return nil, fmt.Errorf("marshal purchase snapshot: %w", err)
	}

	query := `
		INSERT INTO payment_intents (
			checkout_request_id, provider, amount, currency, payer_ref,
			account_reference, status, purchase)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + intentColumns

	created, err := scanIntent(r.pool.QueryRow(ctx, query,
		intent.CheckoutRequestID, intent.Provider, intent.Amount, intent.Currency,
		intent.PayerRef, intent.AccountReference, intent.Status, purchase,
	))

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, apperrors.ErrInvalidTransition
		}
		return nil, err
	}

	return created, nil
}

func (r *PaymentIntentRepositoryImpl) FindByCheckoutRequestID(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error) {
	query := `
		SELECT ` + intentColumns + `
		FROM payment_intents
		WHERE checkout_request_id = $1
	`

	intent, err := scanIntent(r.pool.QueryRow(ctx, query, checkoutRequestID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, apperrors.ErrIntentNotFound
		}
		return nil, err
	}

	return intent, nil
}

func (r *PaymentIntentRepositoryImpl) Resolve(ctx context.Context, checkoutRequestID string, to model.IntentStatus, providerReceipt, failureReason *string) (*model.PaymentIntent, bool, error) {
	if !model.IntentStatusInitiated.CanTransitionTo(to) {
		return nil, false, apperrors.ErrInvalidTransition
	}

	now := time.Now().UTC()
	query := `
		UPDATE payment_intents
		SET status = $1,
			provider_receipt = COALESCE($2, provider_receipt),
			failure_reason = COALESCE($3, failure_reason),
			resolved_at = $4,
			updated_at = $4
		WHERE checkout_request_id = $5 AND status = $6
		RETURNING ` + intentColumns

	intent, err := scanIntent(r.pool.QueryRow(ctx, query,
		to, providerReceipt, failureReason, now, checkoutRequestID, model.IntentStatusInitiated,
	))
	if err == nil {
		return intent, true, nil
	}
	if err != pgx.ErrNoRows {
		return nil, false, err
	}

	// Lost the swap or the intent never existed. Return the stored terminal
	// record so duplicate callbacks are a pure read.
	existing, findErr := r.FindByCheckoutRequestID(ctx, checkoutRequestID)
	if findErr != nil {
		return nil, false, findErr
	}
	return existing, false, nil
}
