package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/server/http/dto"
)

// PaymentHandler receives payment notifications.
type PaymentHandler struct {
	facade PaymentFacade
}

// NewPaymentHandler constructs PaymentHandler.
func NewPaymentHandler(facade PaymentFacade) *PaymentHandler {
	return &PaymentHandler{facade: facade}
}

// Submit handles POST /api/payments.
func (h *PaymentHandler) Submit(c *gin.Context) {
	var req dto.PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed payment"})
		return
	}

	event, created, err := h.facade.SubmitPayment(c.Request.Context(), model.PaymentEvent{
		TxID:            req.TxID,
		FromAddress:     req.FromAddress,
		NetworkID:       req.NetworkID,
		Amount:          req.Amount,
		ExistingOrderID: req.ExistingOrderID,
	})
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidPayment) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
			return
		}
		c.Status(http.StatusInternalServerError)
		return
	}

	status := http.StatusAccepted
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, dto.PaymentResponse{
		EventID:    event.ID,
		TxID:       event.TxID,
		Status:     string(event.Status),
		Duplicate:  !created,
		ReceivedAt: event.ReceivedAt,
	})
}
