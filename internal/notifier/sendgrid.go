package notifier

import (
	"context"
	"encoding/base64"
	"fmt"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridNotifier struct {
	client       *sendgrid.Client
	fromName     string
	fromEmail    string
	supportPhone string
}

func NewSendgridNotifier(cfg config.NotifyConfig) *SendgridNotifier {
	return &SendgridNotifier{
		client:       sendgrid.NewSendClient(cfg.SendgridAPIKey),
		fromName:     cfg.FromName,
		fromEmail:    cfg.FromEmail,
		supportPhone: cfg.SupportPhone,
	}
}

func (n *SendgridNotifier) Name() string {
	return "sendgrid"
}

func (n *SendgridNotifier) buildMessage(job *model.DeliveryJob, tickets []*model.Ticket) (*mail.SGMailV3, error) {
	from := mail.NewEmail(n.fromName, n.fromEmail)
	to := mail.NewEmail(job.RecipientName, job.RecipientEmail)
	body := emailBody(job, tickets, n.supportPhone)
	message := mail.NewSingleEmail(from, emailSubject(job), to, body, "")

	attachments, err := codeAttachments(tickets)
	if err != nil {
		return nil, err
	}
	for _, a := range attachments {
		att := mail.NewAttachment()
		att.SetFilename(a.Filename)
		att.SetType(a.ContentType)
		att.SetDisposition("attachment")
		att.SetContent(base64.StdEncoding.EncodeToString(a.Data))
		message.AddAttachment(att)
	}
	return message, nil
}

func (n *SendgridNotifier) SendTickets(ctx context.Context, job *model.DeliveryJob, tickets []*model.Ticket) error {
	message, err := n.buildMessage(job, tickets)
	if err != nil {
		return err
	}

	resp, err := n.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%w: sendgrid: %v", apperrors.ErrProviderUnavailable, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid returned %d", apperrors.ErrProviderUnavailable, resp.StatusCode)
	}
	return nil
}
