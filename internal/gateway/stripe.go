package gateway

import (
	"context"
	"errors"
	"fmt"

	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

// CardIntent is the slice of a Stripe payment intent the tracker cares about.
type CardIntent struct {
	ID           string
	ClientSecret string
	Status       string
}

type CardGateway interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*CardIntent, error)
	RetrieveIntent(ctx context.Context, id string) (*CardIntent, error)
}

type StripeClient struct{}

func NewStripeClient(secretKey string) CardGateway {
	stripe.Key = secretKey
	return &StripeClient{}
}

func (c *StripeClient) CreateIntent(ctx context.Context, amount decimal.Decimal, currency string) (*CardIntent, error) {
	// Stripe wants minor units (cents); amounts are stored in major units.
	minor := amount.Mul(decimal.NewFromInt(100)).IntPart()

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(minor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, translateStripeErr(err)
	}

	return &CardIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func (c *StripeClient) RetrieveIntent(ctx context.Context, id string) (*CardIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, translateStripeErr(err)
	}

	return &CardIntent{ID: pi.ID, ClientSecret: pi.ClientSecret, Status: string(pi.Status)}, nil
}

func translateStripeErr(err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 500 {
		return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
	}
	if errors.As(err, &stripeErr) {
		return err
	}
	// No typed error means the request never reached Stripe.
	return fmt.Errorf("%w: %v", apperrors.ErrProviderUnavailable, err)
}
