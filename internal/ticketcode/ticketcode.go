package ticketcode

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/shopspring/decimal"
)

const (
	NumberPrefix = "SLM"

	suffixLength  = 4
	suffixCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

	// maxPayloadBytes keeps the payload well inside QR capacity at medium
	// error correction.
	maxPayloadBytes = 1024
)

var (
	ErrPayloadTooLarge  = errors.New("code payload exceeds maximum size")
	ErrInvalidCharacter = errors.New("ticket number contains non-ASCII characters")
)

// MintNumber produces a ticket number of the form SLM<unix-millis><4 random
// base36 chars>. The timestamp component keeps numbers roughly sortable, the
// crypto/rand suffix makes collisions under concurrent minting negligible;
// the ledger's unique index is the final guard.
func MintNumber() string {
	return fmt.Sprintf("%s%d%s", NumberPrefix, time.Now().UnixMilli(), randomSuffix(suffixLength))
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = suffixCharset[int(b)%len(suffixCharset)]
	}
	return string(out)
}

// Payload is the exact structure serialized into the QR code. Checksum is an
// HMAC over the identity fields, so editing any of them without the signing
// secret invalidates the code.
type Payload struct {
	TicketNumber string          `json:"ticket_number"`
	EventID      string          `json:"event_id"`
	EventTitle   string          `json:"event_title"`
	EventDate    time.Time       `json:"event_date"`
	EventVenue   string          `json:"event_venue"`
	BuyerName    string          `json:"buyer_name"`
	Price        decimal.Decimal `json:"price"`
	IssuedAt     int64           `json:"issued_at"`
	Checksum     string          `json:"checksum"`
}

// Codec builds and verifies code payloads with a shared signing secret.
type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// BuildPayload serializes the ticket's QR content. It must succeed before
// the ticket is written to the ledger; any failure aborts the mint.
func (c *Codec) BuildPayload(ticket *model.Ticket) (string, error) {
	p := Payload{
		TicketNumber: ticket.TicketNumber,
		EventID:      ticket.EventID,
		EventTitle:   ticket.EventTitle,
		EventDate:    ticket.EventDate,
		EventVenue:   ticket.EventVenue,
		BuyerName:    ticket.BuyerName,
		Price:        ticket.Price,
		IssuedAt:     time.Now().Unix(),
	}
	p.Checksum = c.checksum(&p)

	raw, err := json.Marshal(p)
	if err != nil {
		return "", fmt.Errorf("marshal code payload: %w", err)
	}
	if len(raw) > maxPayloadBytes {
		return "", ErrPayloadTooLarge
	}
	return string(raw), nil
}

// DecodePayload parses a scanned payload without verifying it.
func (c *Codec) DecodePayload(raw string) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return nil, fmt.Errorf("unmarshal code payload: %w", err)
	}
	return &p, nil
}

// VerifyPayload checks a scanned payload against the ledger record. Any
// disagreement, or a forged checksum, reports ErrPayloadMismatch.
func (c *Codec) VerifyPayload(raw string, ticket *model.Ticket) error {
	p, err := c.DecodePayload(raw)
	if err != nil {
		return apperrors.ErrPayloadMismatch
	}

	if subtle.ConstantTimeCompare([]byte(c.checksum(p)), []byte(p.Checksum)) != 1 {
		return apperrors.ErrPayloadMismatch
	}

	if p.TicketNumber != ticket.TicketNumber ||
		p.EventID != ticket.EventID ||
		p.BuyerName != ticket.BuyerName ||
		!p.Price.Equal(ticket.Price) {
		return apperrors.ErrPayloadMismatch
	}

	return nil
}

// checksum covers the fields a forger would want to edit. EventDate is
// canonicalized to unix seconds so serialization round-trips don't shift it.
func (c *Codec) checksum(p *Payload) string {
	canonical := strings.Join([]string{
		p.TicketNumber,
		p.EventID,
		p.BuyerName,
		p.Price.String(),
		fmt.Sprintf("%d", p.EventDate.Unix()),
		fmt.Sprintf("%d", p.IssuedAt),
	}, "|")

	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(canonical))
	return hex.EncodeToString(mac.Sum(nil))[:16]
}
