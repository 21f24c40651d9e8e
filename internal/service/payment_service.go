package service

import (
	"context"
	"fmt"

	"slumpers-ticketing/internal/gateway"
	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/queue"
	"slumpers-ticketing/internal/repository"
	"slumpers-ticketing/monitoring"
	apperrors "slumpers-ticketing/pkg/app_errors"
	"slumpers-ticketing/pkg/logger"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Daraja result codes from the STK callback and query endpoints.
const (
	darajaResultSuccess   = "0"
	darajaResultCancelled = "1032"
	darajaResultTimeout   = "1037"
)

type PaymentService interface {
	// OpenMpesaIntent fires an STK push and records the intent. The gateway
	// call happens first; nothing is persisted when the provider is down.
	OpenMpesaIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, error)
	// OpenCardIntent opens a Stripe payment intent and returns the client
	// secret the frontend needs to confirm it.
	OpenCardIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, string, error)
	// ResolveCallback applies a provider outcome to an intent. Safe to call
	// any number of times with the same checkout request id; only the first
	// terminal outcome mints and dispatches.
	ResolveCallback(ctx context.Context, checkoutRequestID string, outcome model.CallbackOutcome) (*model.PaymentIntent, error)
	// Query returns the intent's current status, polling the provider to
	// reconcile when the callback has not landed yet.
	Query(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error)
}

type PaymentServiceImpl struct {
	intents   repository.PaymentIntentRepository
	tickets   TicketService
	stk       gateway.StkGateway
	cards     gateway.CardGateway
	deliveryQ queue.DeliveryQueue
	currency  string
}

func NewPaymentService(
	intents repository.PaymentIntentRepository,
	tickets TicketService,
	stk gateway.StkGateway,
	cards gateway.CardGateway,
	deliveryQ queue.DeliveryQueue,
	currency string,
) PaymentService {
	return &PaymentServiceImpl{
		intents:   intents,
		tickets:   tickets,
		stk:       stk,
		cards:     cards,
		deliveryQ: deliveryQ,
		currency:  currency,
	}
}

func purchaseFromRequest(req *model.InitiatePaymentRequest) model.PurchaseDetails {
	channel := req.DeliveryChannel
	if channel == "" {
		channel = model.ChannelEmail
	}
	return model.PurchaseDetails{
		EventID:         req.EventID,
		EventTitle:      req.EventTitle,
		EventDate:       req.EventDate,
		EventVenue:      req.EventVenue,
		BuyerName:       req.BuyerName,
		BuyerEmail:      req.BuyerEmail,
		BuyerPhone:      req.BuyerPhone,
		Quantity:        req.Quantity,
		UnitPrice:       req.UnitPrice,
		DeliveryChannel: channel,
	}
}

func orderTotal(req *model.InitiatePaymentRequest) decimal.Decimal {
	return req.UnitPrice.Mul(decimal.NewFromInt(int64(req.Quantity)))
}

func (s *PaymentServiceImpl) OpenMpesaIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, error) {
	phone := req.PhoneNumber
	if phone == "" {
		phone = req.BuyerPhone
	}

	amount := orderTotal(req)
	accountRef := fmt.Sprintf("SLM-%s", req.EventID)

	push, err := s.stk.InitiateSTKPush(ctx, gateway.StkPushRequest{
		PhoneNumber:      phone,
		Amount:           amount,
		AccountReference: accountRef,
		TransactionDesc:  req.EventTitle,
	})
	if err != nil {
		return nil, err
	}

	intent, err := s.intents.Create(ctx, &model.PaymentIntent{
		CheckoutRequestID: push.CheckoutRequestID,
		Provider:          model.ProviderMpesa,
		Amount:            amount,
		Currency:          s.currency,
		PayerRef:          phone,
		AccountReference:  accountRef,
		Status:            model.IntentStatusInitiated,
		Purchase:          purchaseFromRequest(req),
	})
	if err != nil {
		return nil, err
	}

	monitoring.RecordPaymentInitiated(string(model.ProviderMpesa))
	logger.WithComponent("payment").Info("stk push initiated",
		zap.String("checkout_request_id", intent.CheckoutRequestID),
		zap.String("event_id", req.EventID),
		zap.Int("quantity", req.Quantity))
	return intent, nil
}

func (s *PaymentServiceImpl) OpenCardIntent(ctx context.Context, req *model.InitiatePaymentRequest) (*model.PaymentIntent, string, error) {
	amount := orderTotal(req)

	card, err := s.cards.CreateIntent(ctx, amount, s.currency)
	if err != nil {
		return nil, "", err
	}

	intent, err := s.intents.Create(ctx, &model.PaymentIntent{
		CheckoutRequestID: card.ID,
		Provider:          model.ProviderStripe,
		Amount:            amount,
		Currency:          s.currency,
		PayerRef:          req.BuyerEmail,
		AccountReference:  fmt.Sprintf("SLM-%s", req.EventID),
		Status:            model.IntentStatusInitiated,
		Purchase:          purchaseFromRequest(req),
	})
	if err != nil {
		return nil, "", err
	}

	monitoring.RecordPaymentInitiated(string(model.ProviderStripe))
	logger.WithComponent("payment").Info("card intent opened",
		zap.String("checkout_request_id", intent.CheckoutRequestID),
		zap.String("event_id", req.EventID))
	return intent, card.ClientSecret, nil
}

func (s *PaymentServiceImpl) ResolveCallback(ctx context.Context, checkoutRequestID string, outcome model.CallbackOutcome) (*model.PaymentIntent, error) {
	var receipt, reason *string
	if outcome.ProviderReceipt != "" {
		receipt = &outcome.ProviderReceipt
	}
	if outcome.FailureReason != "" {
		reason = &outcome.FailureReason
	}

	intent, won, err := s.intents.Resolve(ctx, checkoutRequestID, outcome.Status, receipt, reason)
	if err != nil {
		return nil, err
	}

	if !won {
		monitoring.RecordDuplicateCallback(string(intent.Provider))
		logger.WithComponent("payment").Info("duplicate callback ignored",
			zap.String("checkout_request_id", checkoutRequestID),
			zap.String("status", string(intent.Status)))
		return intent, nil
	}

	monitoring.RecordPaymentResolved(string(intent.Provider), string(intent.Status))
	logger.WithComponent("payment").Info("intent resolved",
		zap.String("checkout_request_id", checkoutRequestID),
		zap.String("status", string(intent.Status)))

	if intent.Status != model.IntentStatusSucceeded {
		return intent, nil
	}

	// Winning the swap to succeeded is the single trigger for minting and
	// dispatch. The intent is already terminal, so a mint failure here is
	// surfaced for operator reconciliation rather than rolled back.
	tickets, err := s.tickets.MintBatch(ctx, intent)
	if err != nil {
		logger.WithComponent("payment").Error("mint failed after successful payment",
			zap.String("checkout_request_id", checkoutRequestID),
			zap.Error(err))
		return nil, err
	}

	job := &model.DeliveryJob{
		CheckoutRequestID: intent.CheckoutRequestID,
		Channel:           intent.Purchase.DeliveryChannel,
		RecipientName:     intent.Purchase.BuyerName,
		RecipientEmail:    intent.Purchase.BuyerEmail,
		RecipientPhone:    intent.Purchase.BuyerPhone,
		EventTitle:        intent.Purchase.EventTitle,
	}
	if err := s.deliveryQ.PublishDelivery(ctx, job); err != nil {
		// Tickets are safely in the ledger; delivery can be replayed.
		logger.WithComponent("payment").Error("delivery publish failed",
			zap.String("checkout_request_id", checkoutRequestID),
			zap.Int("tickets", len(tickets)),
			zap.Error(err))
	}

	return intent, nil
}

func (s *PaymentServiceImpl) Query(ctx context.Context, checkoutRequestID string) (*model.PaymentIntent, error) {
	intent, err := s.intents.FindByCheckoutRequestID(ctx, checkoutRequestID)
	if err != nil {
		return nil, err
	}
	if intent.Status.IsTerminal() {
		return intent, nil
	}

	outcome, resolved, err := s.pollProvider(ctx, intent)
	if err != nil {
		return nil, err
	}
	if !resolved {
		return intent, nil
	}

	return s.ResolveCallback(ctx, checkoutRequestID, outcome)
}

// pollProvider asks the gateway for the intent's fate. The second return is
// false while the provider still considers the payment in flight.
func (s *PaymentServiceImpl) pollProvider(ctx context.Context, intent *model.PaymentIntent) (model.CallbackOutcome, bool, error) {
	switch intent.Provider {
	case model.ProviderMpesa:
		status, err := s.stk.QuerySTKStatus(ctx, intent.CheckoutRequestID)
		if err != nil {
			return model.CallbackOutcome{}, false, err
		}
		return DarajaOutcome(status.ResultCode, status.ResultDesc), status.ResultCode != "", nil
	case model.ProviderStripe:
		card, err := s.cards.RetrieveIntent(ctx, intent.CheckoutRequestID)
		if err != nil {
			return model.CallbackOutcome{}, false, err
		}
		return stripeOutcome(card.Status)
	}
	return model.CallbackOutcome{}, false, fmt.Errorf("%w: unknown provider %q", apperrors.ErrInvalidInput, intent.Provider)
}

// DarajaOutcome maps an M-Pesa result code to a terminal intent status. The
// same mapping serves the asynchronous callback and the status query.
func DarajaOutcome(resultCode, resultDesc string) model.CallbackOutcome {
	switch resultCode {
	case darajaResultSuccess:
		return model.CallbackOutcome{Status: model.IntentStatusSucceeded}
	case darajaResultCancelled:
		return model.CallbackOutcome{Status: model.IntentStatusFailed, FailureReason: "cancelled by user"}
	case darajaResultTimeout:
		return model.CallbackOutcome{Status: model.IntentStatusExpired, FailureReason: "stk prompt timed out"}
	default:
		return model.CallbackOutcome{Status: model.IntentStatusFailed, FailureReason: resultDesc}
	}
}

func stripeOutcome(status string) (model.CallbackOutcome, bool, error) {
	switch status {
	case "succeeded":
		return model.CallbackOutcome{Status: model.IntentStatusSucceeded}, true, nil
	case "canceled":
		return model.CallbackOutcome{Status: model.IntentStatusFailed, FailureReason: "canceled"}, true, nil
	default:
		// requires_payment_method, processing, etc: still in flight.
		return model.CallbackOutcome{}, false, nil
	}
}
