package model

import (
	"time"

	"github.com/google/uuid"
)

// BookingStatus is mutated only by an administrator; there is no automated
// state machine behind it.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusRejected  BookingStatus = "rejected"
	BookingStatusCompleted BookingStatus = "completed"
)

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusRejected, BookingStatusCompleted:
		return true
	}
	return false
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	transitions := map[BookingStatus][]BookingStatus{
		BookingStatusPending:   {BookingStatusConfirmed, BookingStatusRejected},
		BookingStatusConfirmed: {BookingStatusCompleted},
		BookingStatusRejected:  {},
		BookingStatusCompleted: {},
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

// Booking is an event-planning booking request from the storefront form.
type Booking struct {
	ID          int           `json:"id" db:"id"`
	Reference   uuid.UUID     `json:"reference" db:"reference"`
	ClientName  string        `json:"client_name" db:"client_name"`
	ClientEmail string        `json:"client_email" db:"client_email"`
	ClientPhone string        `json:"client_phone" db:"client_phone"`
	EventType   string        `json:"event_type" db:"event_type"`
	EventDate   time.Time     `json:"event_date" db:"event_date"`
	GuestCount  int           `json:"guest_count" db:"guest_count"`
	Notes       *string       `json:"notes,omitempty" db:"notes"`
	Status      BookingStatus `json:"status" db:"status"`
	CreatedAt   time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at" db:"updated_at"`
}

type CreateBookingRequest struct {
	ClientName  string    `json:"client_name" binding:"required"`
	ClientEmail string    `json:"client_email" binding:"required,email"`
	ClientPhone string    `json:"client_phone" binding:"required"`
	EventType   string    `json:"event_type" binding:"required"`
	EventDate   time.Time `json:"event_date" binding:"required"`
	GuestCount  int       `json:"guest_count" binding:"required,min=1"`
	Notes       *string   `json:"notes"`
}

type UpdateBookingStatusRequest struct {
	Status BookingStatus `json:"status" binding:"required"`
}
