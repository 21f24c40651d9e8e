package handler

import (
	"errors"
	"net/http"

	"slumpers-ticketing/internal/model"
	"slumpers-ticketing/internal/service"
	apperrors "slumpers-ticketing/pkg/app_errors"
	"slumpers-ticketing/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type VerificationHandler struct {
	verifier service.VerificationService
	tickets  service.TicketService
}

func NewVerificationHandler(verifier service.VerificationService, tickets service.TicketService) *VerificationHandler {
	return &VerificationHandler{verifier: verifier, tickets: tickets}
}

func (h *VerificationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("tickets/verify", h.VerifyTicket)
		router.GET("tickets/:ticket_number", h.GetTicket)
		router.GET("tickets/:ticket_number/qr", h.GetQRCode)
		router.GET("tickets/:ticket_number/barcode", h.GetBarcode)
		router.PUT("tickets/:ticket_number/cancel", h.CancelTicket)
	}
}

// VerifyTicket always answers 200 with an outcome. Bad tickets are a result,
// not an error; only infrastructure failures surface as 5xx.
func (h *VerificationHandler) VerifyTicket(c *gin.Context) {
	var req model.VerifyTicketRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	result, err := h.verifier.Verify(c, &req)
	if err != nil {
		h.handleTicketError(c, err, "VerifyTicket")
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VerificationHandler) GetTicket(c *gin.Context) {
	result, err := h.verifier.Lookup(c, c.Param("ticket_number"))
	if err != nil {
		h.handleTicketError(c, err, "GetTicket")
		return
	}
	if result.Outcome == model.OutcomeTicketNotFound {
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *VerificationHandler) GetQRCode(c *gin.Context) {
	png, err := h.tickets.RenderQR(c, c.Param("ticket_number"))
	if err != nil {
		h.handleTicketError(c, err, "GetQRCode")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *VerificationHandler) GetBarcode(c *gin.Context) {
	png, err := h.tickets.RenderBarcode(c, c.Param("ticket_number"))
	if err != nil {
		h.handleTicketError(c, err, "GetBarcode")
		return
	}

	c.Data(http.StatusOK, "image/png", png)
}

func (h *VerificationHandler) CancelTicket(c *gin.Context) {
	ticket, err := h.verifier.Cancel(c, c.Param("ticket_number"))
	if err != nil {
		h.handleTicketError(c, err, "CancelTicket")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

// Helper functions

func (h *VerificationHandler) handleTicketError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrTicketNotFound):
		log.Warn("Ticket not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Ticket not found",
		})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		log.Warn("Invalid transition")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Ticket is not in a state that allows this operation",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
