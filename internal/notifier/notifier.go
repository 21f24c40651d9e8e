package notifier

import (
	"context"
	"fmt"
	"strings"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/ticketcode"
	apperrors "slumpers-ticketing/pkg/app_errors"
)

// Notifier is a single delivery channel backend. The dispatcher does not
// deduplicate; exactly-once triggering is the payment tracker's job.
type Notifier interface {
	Name() string
	SendTickets(ctx context.Context, job *model.DeliveryJob, tickets []*model.Ticket) error
}

// Registry holds one notifier per channel. Backends are selected by
// configuration, not by parallel code paths.
type Registry struct {
	email Notifier
	sms   Notifier
}

func NewRegistry(cfg config.NotifyConfig) (*Registry, error) {
	var email Notifier
	switch cfg.EmailBackend {
	case "sendgrid":
		email = NewSendgridNotifier(cfg)
	case "smtp":
		email = NewSMTPNotifier(cfg)
	default:
		return nil, fmt.Errorf("unsupported email backend: %s", cfg.EmailBackend)
	}

	return &Registry{
		email: email,
		sms:   NewTwilioNotifier(cfg),
	}, nil
}

func (r *Registry) ForChannel(channel string) (Notifier, error) {
	switch channel {
	case model.ChannelEmail:
		return r.email, nil
	case model.ChannelSMS:
		return r.sms, nil
	default:
		return nil, fmt.Errorf("%w: unknown delivery channel %q", apperrors.ErrInvalidInput, channel)
	}
}

// Attachment is a rendered file carried by channels that support binary
// content. SMS stays text-only; recipients pull the codes from the email
// or the ticket lookup endpoints.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// codeAttachments renders one QR PNG per ticket so the gate code travels
// with the delivery email instead of only being described by it.
func codeAttachments(tickets []*model.Ticket) ([]Attachment, error) {
	attachments := make([]Attachment, 0, len(tickets))
	for _, t := range tickets {
		img, err := ticketcode.QRImage(t.CodePayload)
		if err != nil {
			return nil, fmt.Errorf("render qr for %s: %w", t.TicketNumber, err)
		}
		attachments = append(attachments, Attachment{
			Filename:    t.TicketNumber + "-qr.png",
			ContentType: "image/png",
			Data:        img,
		})
	}
	return attachments, nil
}

// ticketLines renders the per-ticket section shared by all channels.
func ticketLines(tickets []*model.Ticket) string {
	var b strings.Builder
	for _, t := range tickets {
		fmt.Fprintf(&b, "Ticket #%s\n", t.TicketNumber)
	}
	return b.String()
}

func smsBody(job *model.DeliveryJob, tickets []*model.Ticket, supportPhone string) string {
	return fmt.Sprintf(
		"Hi %s!\n\nYour tickets for %s are ready:\n\n%s\nShow the QR code or barcode at the entrance. Each ticket can only be used once. Bring valid ID.\n\nQuestions? Call %s\n- Slumpers Team",
		job.RecipientName, job.EventTitle, ticketLines(tickets), supportPhone,
	)
}

func emailSubject(job *model.DeliveryJob) string {
	return fmt.Sprintf("Your tickets for %s", job.EventTitle)
}

func emailBody(job *model.DeliveryJob, tickets []*model.Ticket, supportPhone string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour tickets for %s are attached below.\n\n", job.RecipientName, job.EventTitle)
	for _, t := range tickets {
		fmt.Fprintf(&b, "Ticket #%s\n%s, %s\n%s\nPrice: %s KES\n\n",
			t.TicketNumber, t.EventTitle, t.EventDate.Format("Mon, 02 Jan 2006 15:04"),
			t.EventVenue, t.Price.StringFixed(2))
	}
	fmt.Fprintf(&b, "Show the QR code or barcode at the entrance. Each ticket admits one person and can only be used once.\n\nQuestions? Call %s\n\nSlumpers Events\n", supportPhone)
	return b.String()
}
