package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus is the ledger status of an issued ticket.
type TicketStatus string

const (
	TicketStatusValid     TicketStatus = "valid"
	TicketStatusUsed      TicketStatus = "used"
	TicketStatusCancelled TicketStatus = "cancelled"
)

func (s TicketStatus) IsValid() bool {
	switch s {
	case TicketStatusValid, TicketStatusUsed, TicketStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo enforces the one-way lifecycle: valid tickets can be
// redeemed or cancelled, terminal states go nowhere.
func (s TicketStatus) CanTransitionTo(target TicketStatus) bool {
	transitions := map[TicketStatus][]TicketStatus{
		TicketStatusValid:     {TicketStatusUsed, TicketStatusCancelled},
		TicketStatusUsed:      {},
		TicketStatusCancelled: {},
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// Ticket is one named admission credential. Event fields are a snapshot
// taken at mint time; later event edits do not touch issued tickets.
type Ticket struct {
	ID                int             `json:"id" db:"id"`
	TicketNumber      string          `json:"ticket_number" db:"ticket_number"`
	EventID           string          `json:"event_id" db:"event_id"`
	EventTitle        string          `json:"event_title" db:"event_title"`
	EventDate         time.Time       `json:"event_date" db:"event_date"`
	EventVenue        string          `json:"event_venue" db:"event_venue"`
	BuyerName         string          `json:"buyer_name" db:"buyer_name"`
	BuyerEmail        string          `json:"buyer_email" db:"buyer_email"`
	BuyerPhone        string          `json:"buyer_phone" db:"buyer_phone"`
	Price             decimal.Decimal `json:"price" db:"price"`
	CodePayload       string          `json:"code_payload" db:"code_payload"`
	Status            TicketStatus    `json:"status" db:"status"`
	CheckoutRequestID string          `json:"checkout_request_id" db:"checkout_request_id"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UsedAt            *time.Time      `json:"used_at,omitempty" db:"used_at"`
}

func (t *Ticket) IsRedeemed() bool {
	return t.Status == TicketStatusUsed
}

// VerificationOutcome enumerates the results gate staff can see. AlreadyUsed
// and Cancelled are valid terminal answers, not errors.
type VerificationOutcome string

const (
	OutcomeVerified        VerificationOutcome = "verified"
	OutcomeAlreadyUsed     VerificationOutcome = "already_used"
	OutcomeCancelled       VerificationOutcome = "cancelled"
	OutcomeTicketNotFound  VerificationOutcome = "ticket_not_found"
	OutcomePayloadMismatch VerificationOutcome = "payload_mismatch"

	// OutcomeValid is the read-only lookup answer for an unredeemed ticket.
	// Verify never returns it; an actual redemption reports OutcomeVerified.
	OutcomeValid VerificationOutcome = "valid"
)

// VerifyTicketRequest is what a gate scanner submits. CodePayload is the
// decoded QR content and is optional; when present it is cross-checked
// against the ledger record.
type VerifyTicketRequest struct {
	TicketNumber string `json:"ticket_number" binding:"required"`
	CodePayload  string `json:"code_payload"`
}

// VerificationResult is returned for every verification attempt, successful
// or not, so staff can decide manually in edge cases.
type VerificationResult struct {
	Outcome VerificationOutcome `json:"outcome"`
	Ticket  *Ticket             `json:"ticket,omitempty"`
}
