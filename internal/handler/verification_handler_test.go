package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	serviceMocks "slumpers-ticketing/internal/mocks/services"
	"slumpers-ticketing/internal/model"
	apperrors "slumpers-ticketing/pkg/app_errors"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupVerificationTestRouter(verifier *serviceMocks.VerificationServiceMock, tickets *serviceMocks.TicketServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	verificationHandler := NewVerificationHandler(verifier, tickets)
	verificationHandler.RegisterRoutes(router)

	return router
}

func TestVerifyTicket(t *testing.T) {
	t.Run("Verified", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Verify", mock.Anything, mock.MatchedBy(func(req *model.VerifyTicketRequest) bool {
			return req.TicketNumber == "SLM1700000000AB12"
		})).Return(&model.VerificationResult{
			Outcome: model.OutcomeVerified,
			Ticket:  &model.Ticket{TicketNumber: "SLM1700000000AB12", Status: model.TicketStatusUsed},
		}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/tickets/verify",
			model.VerifyTicketRequest{TicketNumber: "SLM1700000000AB12"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcome":"verified"`)
	})

	t.Run("NotFoundIsStill200", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Verify", mock.Anything, mock.Anything).
			Return(&model.VerificationResult{Outcome: model.OutcomeTicketNotFound}, nil).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/tickets/verify",
			model.VerifyTicketRequest{TicketNumber: "UNKNOWN123"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcome":"ticket_not_found"`)
	})

	t.Run("MissingTicketNumber", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		req := createJSONHTTPRequest("POST", "/api/v1/tickets/verify", map[string]string{})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		verifier.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
	})

	t.Run("InfrastructureFailure", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Verify", mock.Anything, mock.Anything).
			Return(nil, apperrors.ErrInternalServerError).Once()

		req := createJSONHTTPRequest("POST", "/api/v1/tickets/verify",
			model.VerifyTicketRequest{TicketNumber: "SLM1700000000AB12"})
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestGetTicket(t *testing.T) {
	t.Run("Found", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Lookup", mock.Anything, "SLM1700000000AB12").Return(&model.VerificationResult{
			Outcome: model.OutcomeAlreadyUsed,
			Ticket:  &model.Ticket{TicketNumber: "SLM1700000000AB12", Status: model.TicketStatusUsed},
		}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/SLM1700000000AB12", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"outcome":"already_used"`)
	})

	t.Run("NotFound", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Lookup", mock.Anything, "UNKNOWN123").
			Return(&model.VerificationResult{Outcome: model.OutcomeTicketNotFound}, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/UNKNOWN123", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetQRCode(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		png := []byte{0x89, 'P', 'N', 'G'}
		tickets.On("RenderQR", mock.Anything, "SLM1700000000AB12").Return(png, nil).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/SLM1700000000AB12/qr", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		assert.Equal(t, png, w.Body.Bytes())
	})

	t.Run("NotFound", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		tickets.On("RenderQR", mock.Anything, "UNKNOWN123").Return(nil, apperrors.ErrTicketNotFound).Once()

		req := httptest.NewRequest("GET", "/api/v1/tickets/UNKNOWN123/qr", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCancelTicket(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Cancel", mock.Anything, "SLM1700000000AB12").
			Return(&model.Ticket{TicketNumber: "SLM1700000000AB12", Status: model.TicketStatusCancelled}, nil).Once()

		req := httptest.NewRequest("PUT", "/api/v1/tickets/SLM1700000000AB12/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"cancelled"`)
	})

	t.Run("AlreadyRedeemed", func(t *testing.T) {
		verifier := serviceMocks.NewVerificationServiceMock()
		tickets := serviceMocks.NewTicketServiceMock()
		router := setupVerificationTestRouter(verifier, tickets)

		verifier.On("Cancel", mock.Anything, "SLM1700000000AB12").
			Return(nil, apperrors.ErrInvalidTransition).Once()

		req := httptest.NewRequest("PUT", "/api/v1/tickets/SLM1700000000AB12/cancel", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}
