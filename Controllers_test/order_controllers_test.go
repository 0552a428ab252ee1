package Controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/drivethru-app/config"
	"github.com/yeremiapane/drivethru-app/controllers"
	"github.com/yeremiapane/drivethru-app/database"
	"github.com/yeremiapane/drivethru-app/middlewares"
	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/services"
	"github.com/yeremiapane/drivethru-app/utils"
)

// scriptedParser answers with the intent registered for a message.
type scriptedParser map[string]models.IntentResult

func (p scriptedParser) ParseIntent(_ context.Context, message string) models.IntentResult {
	if result, ok := p[message]; ok {
		return result
	}
	return models.IntentResult{Success: false, Error: "No function call detected"}
}

func setupOrderRouter(parser services.IntentParser) (*gin.Engine, *services.OrderService) {
	gin.SetMode(gin.TestMode)
	store := database.NewOrderStore()
	orders := services.NewOrderService(store, parser, nil, services.OrderOptions{
		MaxItemQuantity: 50,
		AITimeout:       time.Second,
	})

	router := gin.New()
	router.Use(middlewares.RequestID(), middlewares.ErrorHandler())
	orderCtrl := controllers.NewOrderController(orders, 1, 500)
	healthCtrl := controllers.NewHealthController(&config.Config{Environment: "test", AIProvider: config.ProviderGemini})
	router.GET("/health", healthCtrl.Health)
	router.POST("/api/v1/process", orderCtrl.ProcessOrder)
	router.GET("/api/v1/orders", orderCtrl.GetCurrentOrders)
	router.GET("/api/v1/orders/stats", orderCtrl.GetOrderStats)
	router.GET("/api/v1/orders/history", orderCtrl.GetOrderHistory)
	router.GET("/api/v1/orders/:order_id", orderCtrl.GetOrderByID)
	router.DELETE("/api/v1/orders/:order_id", orderCtrl.CancelOrder)
	return router, orders
}

func postMessage(t *testing.T, router *gin.Engine, message string) (*httptest.ResponseRecorder, models.OrderResponse) {
	t.Helper()
	payload, err := json.Marshal(models.OrderRequest{Message: message})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, "/api/v1/process", bytes.NewBuffer(payload))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var resp models.OrderResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

func TestProcessOrder(t *testing.T) {
	utils.InitLogger("ERROR", "text")
	router, _ := setupOrderRouter(scriptedParser{
		"two burgers and fries": {
			Success: true,
			Action:  models.IntentPlaceOrder,
			Data:    map[string]interface{}{"burgers": 2.0, "fries": 1.0, "drinks": 0.0},
		},
	})

	w, resp := postMessage(t, router, "two burgers and fries")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, models.ActionPlaced, resp.Action)
	require.NotNil(t, resp.OrderID)
	assert.Equal(t, 1, *resp.OrderID)
	assert.Equal(t, "Order #1 placed: 2 burgers and 1 order of fries", resp.Message)
	assert.Equal(t, models.Items{Burgers: 2, Fries: 1}, resp.Totals)
	assert.Equal(t, models.Items{Burgers: 2, Fries: 1}, resp.Orders[1])

	w, resp = postMessage(t, router, "sing me a song")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, resp.Success)
	assert.Equal(t, models.ActionError, resp.Action)
	assert.Equal(t, "Could not understand your request. Please specify items to order or order number to cancel.", resp.Message)
	assert.Equal(t, models.Items{Burgers: 2, Fries: 1}, resp.Totals)
}

func TestProcessOrder_ValidatesMessage(t *testing.T) {
	router, _ := setupOrderRouter(scriptedParser{})

	w, _ := postMessage(t, router, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = postMessage(t, router, "    ")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w, _ = postMessage(t, router, strings.Repeat("a", 501))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/process", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestGetAndCancelOrder(t *testing.T) {
	router, orders := setupOrderRouter(scriptedParser{})
	orders.PlaceOrder(context.Background(), map[string]interface{}{"burgers": 1, "drinks": 2})

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/orders/1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var detail struct {
		Status  bool         `json:"status"`
		Message string       `json:"message"`
		Data    models.Order `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.True(t, detail.Status)
	assert.Equal(t, "Order #1", detail.Message)
	assert.Equal(t, models.Items{Burgers: 1, Drinks: 2}, detail.Data.Items)
	assert.Equal(t, models.StatusActive, detail.Data.Status)

	req, _ = http.NewRequest(http.MethodDelete, "/api/v1/orders/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var canceled models.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &canceled))
	assert.True(t, canceled.Success)
	assert.Equal(t, "Order #1 has been canceled", canceled.Message)
	assert.Equal(t, models.Items{}, canceled.Totals)

	req, _ = http.NewRequest(http.MethodDelete, "/api/v1/orders/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &canceled))
	assert.False(t, canceled.Success)
	assert.Equal(t, "Order #1 not found or already canceled", canceled.Message)

	// canceled orders stay retrievable
	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
	assert.Equal(t, models.StatusCanceled, detail.Data.Status)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/42", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req, _ = http.NewRequest(http.MethodDelete, "/api/v1/orders/abc", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &canceled))
	assert.Equal(t, "Invalid order number format", canceled.Message)
}

func TestListStatsAndHistory(t *testing.T) {
	router, orders := setupOrderRouter(scriptedParser{})
	ctx := context.Background()
	orders.PlaceOrder(ctx, map[string]interface{}{"burgers": 1})
	orders.PlaceOrder(ctx, map[string]interface{}{"fries": 2})
	orders.CancelByID(ctx, 1)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var list models.OrderResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, models.ActionNone, list.Action)
	assert.Equal(t, map[int]models.Items{2: {Fries: 2}}, list.Orders)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/stats", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var stats struct {
		Data struct {
			Stats  models.OrderStats `json:"stats"`
			Totals models.Items      `json:"totals"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stats))
	assert.Equal(t, models.OrderStats{TotalOrders: 2, ActiveOrders: 1, CanceledOrders: 1, NextOrderID: 3}, stats.Data.Stats)
	assert.Equal(t, models.Items{Fries: 2}, stats.Data.Totals)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/history?limit=1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	var history struct {
		Data struct {
			Orders []models.Order `json:"orders"`
			Count  int            `json:"count"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 1, history.Data.Count)

	req, _ = http.NewRequest(http.MethodGet, "/api/v1/orders/history?limit=0", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router, _ := setupOrderRouter(scriptedParser{})

	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}
