package model

// DeliveryChannel values accepted on intents and delivery jobs.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// DeliveryJob is the unit of work queued exactly once when a payment intent
// resolves to succeeded. The ticket batch itself is re-read from the ledger
// by the worker, so a redelivered job always sends the current records.
type DeliveryJob struct {
	CheckoutRequestID string `json:"checkout_request_id"`
	Channel           string `json:"channel"`
	RecipientName     string `json:"recipient_name"`
	RecipientEmail    string `json:"recipient_email"`
	RecipientPhone    string `json:"recipient_phone"`
	EventTitle        string `json:"event_title"`
}
