package handler

import (
	"errors"
	"net/http"
	"strconv"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/service"
	apperrors "slumpers-ticketing/pkg/app_errors"
	"slumpers-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service service.PaymentService
}

func NewPaymentHandler(service service.PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("payments/mpesa", h.InitiateMpesa)
		router.POST("payments/card", h.InitiateCard)
		router.POST("payments/mpesa/callback", h.DarajaCallback)
		router.POST("payments/stripe/webhook", h.StripeWebhook)
		router.GET("payments/:checkout_request_id", h.QueryStatus)
	}
}

func (h *PaymentHandler) InitiateMpesa(c *gin.Context) {
	var req model.InitiatePaymentRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	intent, err := h.service.OpenMpesaIntent(c, &req)
	if err != nil {
		h.handlePaymentError(c, err, "InitiateMpesa")
		return
	}

	c.JSON(http.StatusCreated, model.InitiatePaymentResponse{
		CheckoutRequestID: intent.CheckoutRequestID,
		Status:            string(intent.Status),
	})
}

func (h *PaymentHandler) InitiateCard(c *gin.Context) {
	var req model.InitiatePaymentRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	intent, clientSecret, err := h.service.OpenCardIntent(c, &req)
	if err != nil {
		h.handlePaymentError(c, err, "InitiateCard")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"checkout_request_id": intent.CheckoutRequestID,
		"status":              string(intent.Status),
		"client_secret":       clientSecret,
	})
}

// darajaCallbackEnvelope mirrors the Daraja STK callback body. ResultCode is
// numeric here but a string on the query endpoint.
type darajaCallbackEnvelope struct {
	Body struct {
		StkCallback struct {
			MerchantRequestID string `json:"MerchantRequestID"`
			CheckoutRequestID string `json:"CheckoutRequestID"`
			ResultCode        int    `json:"ResultCode"`
			ResultDesc        string `json:"ResultDesc"`
			CallbackMetadata  struct {
				Item []struct {
					Name  string `json:"Name"`
					Value any    `json:"Value"`
				} `json:"Item"`
			} `json:"CallbackMetadata"`
		} `json:"stkCallback"`
	} `json:"Body"`
}

func (e *darajaCallbackEnvelope) receipt() string {
	for _, item := range e.Body.StkCallback.CallbackMetadata.Item {
		if item.Name == "MpesaReceiptNumber" {
			if s, ok := item.Value.(string); ok {
				return s
			}
		}
	}
	return ""
}

// DarajaCallback acknowledges every delivery with ResultCode 0. Daraja
// retries on anything else, and a malformed or duplicate callback is not
// something a retry can fix.
func (h *PaymentHandler) DarajaCallback(c *gin.Context) {
	ack := gin.H{"ResultCode": 0, "ResultDesc": "Success"}

	var envelope darajaCallbackEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		logger.WithComponent("handler").Warn("unparseable daraja callback", zap.Error(err))
		c.JSON(http.StatusOK, ack)
		return
	}

	cb := envelope.Body.StkCallback
	outcome := service.DarajaOutcome(strconv.Itoa(cb.ResultCode), cb.ResultDesc)
	outcome.ProviderReceipt = envelope.receipt()

	if _, err := h.service.ResolveCallback(c, cb.CheckoutRequestID, outcome); err != nil {
		logger.WithComponent("handler").Error("daraja callback resolution failed",
			zap.String("checkout_request_id", cb.CheckoutRequestID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, ack)
}

type stripeWebhookEvent struct {
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID               string `json:"id"`
			Status           string `json:"status"`
			LastPaymentError *struct {
				Message string `json:"message"`
			} `json:"last_payment_error"`
		} `json:"object"`
	} `json:"data"`
}

func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	var event stripeWebhookEvent
	if err := BindJson(c, &event); err != nil {
		return
	}

	var outcome model.CallbackOutcome
	switch event.Type {
	case "payment_intent.succeeded":
		outcome = model.CallbackOutcome{Status: model.IntentStatusSucceeded, ProviderReceipt: event.Data.Object.ID}
	case "payment_intent.payment_failed":
		reason := "payment failed"
		if event.Data.Object.LastPaymentError != nil {
			reason = event.Data.Object.LastPaymentError.Message
		}
		outcome = model.CallbackOutcome{Status: model.IntentStatusFailed, FailureReason: reason}
	default:
		// Unhandled event types are acknowledged so Stripe stops resending.
		c.Status(http.StatusOK)
		return
	}

	if _, err := h.service.ResolveCallback(c, event.Data.Object.ID, outcome); err != nil {
		h.handlePaymentError(c, err, "StripeWebhook")
		return
	}

	c.Status(http.StatusOK)
}

func (h *PaymentHandler) QueryStatus(c *gin.Context) {
	intent, err := h.service.Query(c, c.Param("checkout_request_id"))
	if err != nil {
		h.handlePaymentError(c, err, "QueryStatus")
		return
	}

	c.JSON(http.StatusOK, intent)
}

// Helper functions

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrIntentNotFound):
		log.Warn("Intent not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Payment not found",
		})
	case errors.Is(err, apperrors.ErrProviderUnavailable):
		log.Warn("Provider unavailable")
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "Payment provider unavailable",
		})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
