package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	serviceMocks "slumpers-ticketing/internal/mocks/services"
	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupPaymentTestRouter(mockService *serviceMocks.PaymentServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	paymentHandler := NewPaymentHandler(mockService)
	paymentHandler.RegisterRoutes(router)

	return router
}

func mpesaRequestBody() model.InitiatePaymentRequest {
	return model.InitiatePaymentRequest{
		PhoneNumber:     "0712345678",
		EventID:         "evt-001",
		EventTitle:      "Nairobi Nights Festival",
		EventDate:       time.Date(2026, 9, 12, 19, 0, 0, 0, time.UTC),
		EventVenue:      "Uhuru Gardens",
		BuyerName:       "Jane Wanjiru",
		BuyerEmail:      "jane@example.com",
		BuyerPhone:      "0712345678",
		UnitPrice:       decimal.NewFromInt(2500),
		Quantity:        1,
		DeliveryChannel: model.ChannelEmail,
	}
}

func TestInitiateMpesa(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("OpenMpesaIntent", mock.Anything, mock.Anything).Return(&model.PaymentIntent{
			CheckoutRequestID: "ws_CO_1234",
			Provider:          model.ProviderMpesa,
			Status:            model.IntentStatusInitiated,
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/payments/mpesa", mpesaRequestBody())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var resp model.InitiatePaymentResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ws_CO_1234", resp.CheckoutRequestID)
		assert.Equal(t, "initiated", resp.Status)
	})

	t.Run("MissingFields", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		req := createJSONHTTPRequest("POST", "/api/v1/payments/mpesa", map[string]any{"event_id": "evt-001"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertNotCalled(t, "OpenMpesaIntent", mock.Anything, mock.Anything)
	})

	t.Run("ProviderUnavailable", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("OpenMpesaIntent", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrProviderUnavailable).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/payments/mpesa", mpesaRequestBody())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
	})
}

func darajaCallbackBody(resultCode int, resultDesc string) string {
	return `{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "29115-34620561-1",
				"CheckoutRequestID": "ws_CO_1234",
				"ResultCode": ` + strconv.Itoa(resultCode) + `,
				"ResultDesc": "` + resultDesc + `",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 2500},
						{"Name": "MpesaReceiptNumber", "Value": "QDF12345"},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`
}

func TestDarajaCallback(t *testing.T) {
	t.Run("SuccessOutcome", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("ResolveCallback", mock.Anything, "ws_CO_1234", mock.MatchedBy(func(o model.CallbackOutcome) bool {
			return o.Status == model.IntentStatusSucceeded && o.ProviderReceipt == "QDF12345"
		})).Return(&model.PaymentIntent{Status: model.IntentStatusSucceeded}, nil).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payments/mpesa/callback", darajaCallbackBody(0, "Success"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Success"}`, w.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("UserCancelled", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("ResolveCallback", mock.Anything, "ws_CO_1234", mock.MatchedBy(func(o model.CallbackOutcome) bool {
			return o.Status == model.IntentStatusFailed
		})).Return(&model.PaymentIntent{Status: model.IntentStatusFailed}, nil).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payments/mpesa/callback", darajaCallbackBody(1032, "Request cancelled by user"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MalformedBodyStillAcked", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		req := createRawHTTPRequest("POST", "/api/v1/payments/mpesa/callback", `{"invalid": json}`)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		// Daraja retries anything that is not a 200 ResultCode 0 ack.
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Success"}`, w.Body.String())
		mockService.AssertNotCalled(t, "ResolveCallback", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ResolutionErrorStillAcked", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("ResolveCallback", mock.Anything, "ws_CO_1234", mock.Anything).
			Return(nil, apperrors.ErrIntentNotFound).Once()

		req := createRawHTTPRequest("POST", "/api/v1/payments/mpesa/callback", darajaCallbackBody(0, "Success"))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ResultCode":0,"ResultDesc":"Success"}`, w.Body.String())
	})

	t.Run("DuplicateCallbacksBothAcked", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		// The service layer makes the second resolution a no-op read; the
		// handler just passes both through and acks both.
		mockService.On("ResolveCallback", mock.Anything, "ws_CO_1234", mock.Anything).
			Return(&model.PaymentIntent{Status: model.IntentStatusSucceeded}, nil).Twice()

		for i := 0; i < 2; i++ {
			req := createRawHTTPRequest("POST", "/api/v1/payments/mpesa/callback", darajaCallbackBody(0, "Success"))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, http.StatusOK, w.Code)
		}
		mockService.AssertExpectations(t)
	})
}

func TestStripeWebhook(t *testing.T) {
	t.Run("PaymentSucceeded", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("ResolveCallback", mock.Anything, "pi_123", mock.MatchedBy(func(o model.CallbackOutcome) bool {
			return o.Status == model.IntentStatusSucceeded && o.ProviderReceipt == "pi_123"
		})).Return(&model.PaymentIntent{Status: model.IntentStatusSucceeded}, nil).Once()

		body := `{"type":"payment_intent.succeeded","data":{"object":{"id":"pi_123","status":"succeeded"}}}`
		req := createRawHTTPRequest("POST", "/api/v1/payments/stripe/webhook", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("UnhandledEventType", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		body := `{"type":"charge.refunded","data":{"object":{"id":"ch_1"}}}`
		req := createRawHTTPRequest("POST", "/api/v1/payments/stripe/webhook", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertNotCalled(t, "ResolveCallback", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestQueryStatus(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("Query", mock.Anything, "ws_CO_1234").Return(&model.PaymentIntent{
			CheckoutRequestID: "ws_CO_1234",
			Status:            model.IntentStatusSucceeded,
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/payments/ws_CO_1234", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := serviceMocks.NewPaymentServiceMock()
		router := setupPaymentTestRouter(mockService)

		mockService.On("Query", mock.Anything, "missing").Return(nil, apperrors.ErrIntentNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/payments/missing", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
