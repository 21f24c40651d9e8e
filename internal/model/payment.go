package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentProvider identifies the external gateway an intent went through.
type PaymentProvider string

const (
	ProviderMpesa  PaymentProvider = "mpesa"
	ProviderStripe PaymentProvider = "stripe"
)

// IntentStatus tracks a purchase attempt. Terminal states never transition.
type IntentStatus string

const (
	IntentStatusInitiated IntentStatus = "initiated"
	IntentStatusSucceeded IntentStatus = "succeeded"
	IntentStatusFailed    IntentStatus = "failed"
	IntentStatusExpired   IntentStatus = "expired"
)

func (s IntentStatus) IsValid() bool {
	switch s {
	case IntentStatusInitiated, IntentStatusSucceeded, IntentStatusFailed, IntentStatusExpired:
		return true
	}
	return false
}

func (s IntentStatus) IsTerminal() bool {
	return s == IntentStatusSucceeded || s == IntentStatusFailed || s == IntentStatusExpired
}

func (s IntentStatus) CanTransitionTo(target IntentStatus) bool {
	if s != IntentStatusInitiated {
		return false
	}
	return target.IsTerminal()
}

// PurchaseDetails is the order snapshot fixed at intent-creation time. The
// quantity here is exactly what a successful intent authorizes for minting.
type PurchaseDetails struct {
	EventID         string          `json:"event_id"`
	EventTitle      string          `json:"event_title"`
	EventDate       time.Time       `json:"event_date"`
	EventVenue      string          `json:"event_venue"`
	BuyerName       string          `json:"buyer_name"`
	BuyerEmail      string          `json:"buyer_email"`
	BuyerPhone      string          `json:"buyer_phone"`
	Quantity        int             `json:"quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	DeliveryChannel string          `json:"delivery_channel"` // email or sms
}

// PaymentIntent correlates a purchase attempt with the external provider.
// CheckoutRequestID is the provider-assigned correlation key (Daraja
// CheckoutRequestID, Stripe payment intent id).
type PaymentIntent struct {
	ID                int             `json:"id" db:"id"`
	CheckoutRequestID string          `json:"checkout_request_id" db:"checkout_request_id"`
	Provider          PaymentProvider `json:"provider" db:"provider"`
	Amount            decimal.Decimal `json:"amount" db:"amount"`
	Currency          string          `json:"currency" db:"currency"`
	PayerRef          string          `json:"payer_ref" db:"payer_ref"`
	AccountReference  string          `json:"account_reference" db:"account_reference"`
	Status            IntentStatus    `json:"status" db:"status"`
	ProviderReceipt   *string         `json:"provider_receipt,omitempty" db:"provider_receipt"`
	FailureReason     *string         `json:"failure_reason,omitempty" db:"failure_reason"`
	Purchase          PurchaseDetails `json:"purchase" db:"purchase"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
	ResolvedAt        *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

// CallbackOutcome is the distilled result of a provider callback or a
// reconciling status poll.
type CallbackOutcome struct {
	Status          IntentStatus
	ProviderReceipt string
	FailureReason   string
}

// InitiatePaymentRequest opens an intent. Amount is derived server-side from
// unit price and quantity; the client never fixes the charge.
type InitiatePaymentRequest struct {
	PhoneNumber     string          `json:"phone_number"`
	EventID         string          `json:"event_id" binding:"required"`
	EventTitle      string          `json:"event_title" binding:"required"`
	EventDate       time.Time       `json:"event_date" binding:"required"`
	EventVenue      string          `json:"event_venue" binding:"required"`
	BuyerName       string          `json:"buyer_name" binding:"required"`
	BuyerEmail      string          `json:"buyer_email" binding:"required,email"`
	BuyerPhone      string          `json:"buyer_phone" binding:"required"`
	UnitPrice       decimal.Decimal `json:"unit_price" binding:"required"`
	Quantity        int             `json:"quantity" binding:"required,min=1"`
	DeliveryChannel string          `json:"delivery_channel"`
}

// InitiatePaymentResponse echoes the correlation key the client polls with.
type InitiatePaymentResponse struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	Status            string `json:"status"`
}
