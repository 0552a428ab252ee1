package controllers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/services"
	"github.com/yeremiapane/drivethru-app/utils"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

type OrderController struct {
	Orders           *services.OrderService
	MinMessageLength int
	MaxMessageLength int
}

func NewOrderController(orders *services.OrderService, minLen, maxLen int) *OrderController {
	return &OrderController{Orders: orders, MinMessageLength: minLen, MaxMessageLength: maxLen}
}

// ProcessOrder -> interpret a customer message and apply it
func (oc *OrderController) ProcessOrder(c *gin.Context) {
	var req models.OrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondJSON(c, http.StatusUnprocessableEntity, "Request body must contain a message", nil)
		return
	}

	length := utf8.RuneCountInString(req.Message)
	if length < oc.MinMessageLength || (oc.MaxMessageLength > 0 && length > oc.MaxMessageLength) {
		utils.RespondJSON(c, http.StatusUnprocessableEntity,
			fmt.Sprintf("Message must be between %d and %d characters", oc.MinMessageLength, oc.MaxMessageLength), nil)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		utils.RespondJSON(c, http.StatusUnprocessableEntity, "Message cannot be empty", nil)
		return
	}

	c.JSON(http.StatusOK, oc.Orders.Process(c.Request.Context(), req.Message))
}

// GetCurrentOrders -> all active orders with totals
func (oc *OrderController) GetCurrentOrders(c *gin.Context) {
	c.JSON(http.StatusOK, oc.Orders.CurrentOrders())
}

func (oc *OrderController) GetOrderStats(c *gin.Context) {
	snap := oc.Orders.ActiveSnapshot()
	utils.RespondJSON(c, http.StatusOK, "Order statistics", gin.H{
		"stats":  oc.Orders.Stats(),
		"totals": snap.Totals,
	})
}

// GetOrderHistory -> every order, newest first
func (oc *OrderController) GetOrderHistory(c *gin.Context) {
	limit, err := parseLimit(c.Query("limit"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	history := oc.Orders.History(limit)
	utils.RespondJSON(c, http.StatusOK, "Order history", gin.H{
		"orders": history,
		"count":  len(history),
		"limit":  limit,
	})
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		_ = c.Error(utils.Invalid("Invalid order number format"))
		return
	}

	order, ok := oc.Orders.GetOrder(id)
	if !ok {
		_ = c.Error(utils.NotFound("Order #%d not found", id))
		return
	}
	utils.RespondJSON(c, http.StatusOK, order.Label(), order)
}

// CancelOrder -> cancel by path id; a miss is reported in the body, not the status
func (oc *OrderController) CancelOrder(c *gin.Context) {
	c.JSON(http.StatusOK, oc.Orders.CancelOrder(c.Request.Context(), c.Param("order_id")))
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return defaultHistoryLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxHistoryLimit {
		return 0, utils.Invalid("limit must be an integer between 1 and %d", maxHistoryLimit)
	}
	return limit, nil
}
