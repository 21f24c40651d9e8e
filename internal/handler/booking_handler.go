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

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("bookings", h.CreateBooking)
		router.GET("bookings", h.GetBookings)
		router.GET("bookings/:id", h.GetBooking)
		router.PUT("bookings/:id/status", h.UpdateBookingStatus)
	}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req model.CreateBookingRequest

	if err := BindJson(c, &req); err != nil {
		return
	}

	booking, err := h.service.Create(c, &req)
	if err != nil {
		h.handleBookingError(c, err, "CreateBooking")
		return
	}

	c.JSON(http.StatusCreated, booking)
}

func (h *BookingHandler) GetBookings(c *gin.Context) {
	bookings, err := h.service.List(c)
	if err != nil {
		h.handleBookingError(c, err, "GetBookings")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleBookingError(c, err, "GetBooking")
		return
	}

	booking, err := h.service.Get(c, id)
	if err != nil {
		h.handleBookingError(c, err, "GetBooking")
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.handleBookingError(c, err, "UpdateBookingStatus")
		return
	}

	var req model.UpdateBookingStatusRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if !req.Status.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Unknown booking status",
		})
		return
	}

	booking, err := h.service.UpdateStatus(c, id, req.Status)
	if err != nil {
		h.handleBookingError(c, err, "UpdateBookingStatus")
		return
	}

	c.JSON(http.StatusOK, booking)
}

// Helper functions

func (h *BookingHandler) handleBookingError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{
			"error": "Booking not found",
		})
	case errors.Is(err, apperrors.ErrInvalidTransition):
		log.Warn("Invalid transition")
		c.JSON(http.StatusConflict, gin.H{
			"error": "Booking cannot move to that status",
		})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Internal server error",
		})
	}
}
