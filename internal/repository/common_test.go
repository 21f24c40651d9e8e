package repository

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/database"
	"slumpers-ticketing/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
)

var testDB *pgxpool.Pool

func TestMain(m *testing.M) {
	cfg := config.LoadTestConfig()

	var err error
	testDB, err = database.InitDatabase(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize test database: %v", err)
	}
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("Failed to migrate test database: %v", err)
	}

	code := m.Run()
	testDB.Close()

	os.Exit(code)
}

func setupTestWithTruncate(t *testing.T) func() {
	t.Helper()

	_, err := testDB.Exec(context.Background(),
		"TRUNCATE tickets, payment_intents, bookings RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}

	return func() {
	}
}

func getTestDB() *pgxpool.Pool {
	if testDB == nil {
		panic("testDB is not initialized. Make sure TestMain has run.")
	}
	return testDB
}

var testEventDate = time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC)

// createTestTicket inserts a ticket row directly, bypassing the repository
// under test.
func createTestTicket(t *testing.T, ticketNumber string, status model.TicketStatus) {
	t.Helper()

	query := `
		INSERT INTO tickets (
			ticket_number, event_id, event_title, event_date, event_venue,
			buyer_name, buyer_email, buyer_phone, price, code_payload,
			status, checkout_request_id)
		VALUES ($1, 'evt-001', 'Nairobi Nights Festival', $2, 'Uhuru Gardens',
			'Jane Wanjiru', 'jane@example.com', '254712345678', 2500,
			'test-payload', $3, 'ws_CO_1234')
	`

	if _, err := testDB.Exec(context.Background(), query, ticketNumber, testEventDate, status); err != nil {
		t.Fatalf("Failed to create test ticket: %v", err)
	}
}

const testPurchaseJSON = `{
	"event_id": "evt-001",
	"event_title": "Nairobi Nights Festival",
	"event_date": "2026-09-12T19:00:00Z",
	"event_venue": "Uhuru Gardens",
	"buyer_name": "Jane Wanjiru",
	"buyer_email": "jane@example.com",
	"buyer_phone": "254712345678",
	"quantity": 2,
	"unit_price": 2500,
	"delivery_channel": "email"
}`

// createTestIntent inserts a payment intent row directly.
func createTestIntent(t *testing.T, checkoutRequestID string, status model.IntentStatus) {
	t.Helper()

	query := `
		INSERT INTO payment_intents (
			checkout_request_id, provider, amount, currency, payer_ref,
			account_reference, status, purchase)
		VALUES ($1, 'mpesa', 5000, 'KES', '254712345678', 'SLM-evt-001', $2, $3)
	`

	if _, err := testDB.Exec(context.Background(), query, checkoutRequestID, status, []byte(testPurchaseJSON)); err != nil {
		t.Fatalf("Failed to create test intent: %v", err)
	}
}
