package notifier

import (
	"context"
	"fmt"

	"slumpers-ticketing/config"
	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/twilio/twilio-go"
	twilioapi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioNotifier struct {
	client       *twilio.RestClient
	fromNumber   string
	supportPhone string
}

func NewTwilioNotifier(cfg config.NotifyConfig) *TwilioNotifier {
	return &TwilioNotifier{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		fromNumber:   cfg.TwilioFromNumber,
		supportPhone: cfg.SupportPhone,
	}
}

func (n *TwilioNotifier) Name() string {
	return "twilio"
}

func (n *TwilioNotifier) SendTickets(ctx context.Context, job *model.DeliveryJob, tickets []*model.Ticket) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	params := &twilioapi.CreateMessageParams{}
	params.SetTo(job.RecipientPhone)
	params.SetFrom(n.fromNumber)
	params.SetBody(smsBody(job, tickets, n.supportPhone))

	if _, err := n.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("%w: twilio: %v", apperrors.ErrProviderUnavailable, err)
	}
	return nil
}
