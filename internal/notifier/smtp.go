package notifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"
)

// SMTPNotifier is the plain-SMTP email fallback for deployments without a
// SendGrid account.
type SMTPNotifier struct {
	host         string
	port         string
	user         string
	password     string
	fromEmail    string
	supportPhone string
}

func NewSMTPNotifier(cfg config.NotifyConfig) *SMTPNotifier {
	return &SMTPNotifier{
		host:         cfg.SMTPHost,
		port:         cfg.SMTPPort,
		user:         cfg.SMTPUser,
		password:     cfg.SMTPPassword,
		fromEmail:    cfg.FromEmail,
		supportPhone: cfg.SupportPhone,
	}
}

func (n *SMTPNotifier) Name() string {
	return "smtp"
}

// mimeMessage assembles a multipart/mixed message: the plain-text body
// first, then one PNG part per ticket code.
func mimeMessage(from, to, subject, body string, attachments []Attachment) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%s\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(body)); err != nil {
		return nil, err
	}

	for _, a := range attachments {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {a.ContentType},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", a.Filename)},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write([]byte(base64.StdEncoding.EncodeToString(a.Data))); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *SMTPNotifier) SendTickets(ctx context.Context, job *model.DeliveryJob, tickets []*model.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	attachments, err := codeAttachments(tickets)
	if err != nil {
		return err
	}
	msg, err := mimeMessage(n.fromEmail, job.RecipientEmail, emailSubject(job),
		emailBody(job, tickets, n.supportPhone), attachments)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.user != "" {
		auth = smtp.PlainAuth("", n.user, n.password, n.host)
	}

	addr := n.host + ":" + n.port
	if err := smtp.SendMail(addr, auth, n.fromEmail, []string{job.RecipientEmail}, msg); err != nil {
		return fmt.Errorf("%w: smtp: %v", apperrors.ErrProviderUnavailable, err)
	}
	return nil
}
