package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/flashrent/internal/domain/errors"
	"github.com/polkiloo/flashrent/internal/domain/model"
	"github.com/polkiloo/flashrent/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Get handles GET /api/orders/:number.
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.facade.Order(c.Request.Context(), c.Param("number"))
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidOrderNumber):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Redelegate handles POST /api/orders/:id/redelegate. A failed delegation is still
// a 200; the order status carries the outcome.
func (h *OrderHandler) Redelegate(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.Status(http.StatusBadRequest)
		return
	}

	order, err := h.facade.Redelegate(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrNotFound):
			c.Status(http.StatusNotFound)
		case errors.Is(err, domainErrors.ErrOrderNotUpdatable):
			c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})
		case errors.Is(err, domainErrors.ErrConfigInvalid),
			errors.Is(err, domainErrors.ErrCalculationInvalid),
			errors.Is(err, domainErrors.ErrInvalidPayment):
			c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Error: err.Error()})
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(order))
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{
		ID:                      order.ID,
		OrderNumber:             order.OrderNumber,
		NetworkID:               order.NetworkID,
		TargetAddress:           order.TargetAddress,
		PaymentTxID:             order.PaymentTxID,
		OrderType:               order.OrderType,
		PaymentAmount:           order.PaymentAmount,
		CalculatedUnits:         order.CalculatedUnits,
		ResourceAmount:          order.ResourceAmount,
		Price:                   order.Price,
		PaymentStatus:           string(order.PaymentStatus),
		Status:                  string(order.Status),
		DelegatedResourceAmount: order.DelegatedResourceAmount,
		DelegationTxID:          order.DelegationTxID,
		CompletedAt:             order.CompletedAt,
		ErrorMessage:            order.ErrorMessage,
		RetryCount:              order.RetryCount,
		ExpiresAt:               order.ExpiresAt,
		CreatedAt:               order.CreatedAt,
		UpdatedAt:               order.UpdatedAt,
	}
}
