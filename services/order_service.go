package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/drivethru-app/database"
	"github.com/yeremiapane/drivethru-app/models"
	"github.com/yeremiapane/drivethru-app/utils"
)

const (
	msgNotUnderstood  = "Could not understand your request. Please specify items to order or order number to cancel."
	msgEmptyMessage   = "Message cannot be empty"
	msgNoItems        = "Please specify at least one item to order"
	msgUnknownAction  = "Unknown action requested"
	msgModifyNoID     = "Order ID is required for modifications"
	msgCancelNoID     = "Please specify an order number to cancel"
	msgInvalidID      = "Invalid order number format"
	msgNonPositiveID  = "Order number must be positive"
	msgCurrentOrders  = "Here are the current orders"
	msgOrdersCleared  = "All orders cleared"
	removeAllQuantity = 999
)

var errQuantityLimit = errors.New("quantity limit exceeded")

type OrderOptions struct {
	// MaxItemQuantity caps each item type of a single order. Zero disables the cap.
	MaxItemQuantity int
	// AITimeout bounds one intent parser call. Zero means no extra deadline.
	AITimeout time.Duration
}

// OrderService applies parsed customer intents to the order store and
// reports every outcome as an OrderResponse.
type OrderService struct {
	store    *database.OrderStore
	parser   IntentParser
	notifier OrderNotifier
	opts     OrderOptions
}

func NewOrderService(store *database.OrderStore, parser IntentParser, notifier OrderNotifier, opts OrderOptions) *OrderService {
	return &OrderService{
		store:    store,
		parser:   parser,
		notifier: notifier,
		opts:     opts,
	}
}

// Process classifies message with the intent parser and executes the result.
// No store lock is held while the parser runs.
func (s *OrderService) Process(ctx context.Context, message string) models.OrderResponse {
	message = strings.TrimSpace(message)
	if message == "" {
		return s.errorResponse(msgEmptyMessage)
	}

	utils.InfoLogger.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFrom(ctx),
		"length":     len(message),
	}).Info("Processing order request")

	parseCtx := ctx
	if s.opts.AITimeout > 0 {
		var cancel context.CancelFunc
		parseCtx, cancel = context.WithTimeout(ctx, s.opts.AITimeout)
		defer cancel()
	}

	intent := s.parser.ParseIntent(parseCtx, message)
	if err := parseCtx.Err(); err != nil {
		utils.InfoLogger.WithField("request_id", utils.RequestIDFrom(ctx)).Warnf("Intent parsing aborted: %v", err)
		return s.errorResponse(msgNotUnderstood)
	}
	if !intent.Success {
		utils.InfoLogger.WithField("request_id", utils.RequestIDFrom(ctx)).Warnf("Failed to parse intent: %s", intent.Error)
		return s.errorResponse(msgNotUnderstood)
	}

	resp := s.ExecuteAction(ctx, intent)
	utils.InfoLogger.WithFields(logrus.Fields{
		"request_id": utils.RequestIDFrom(ctx),
		"action":     resp.Action,
		"success":    resp.Success,
	}).Info("Order request processed")
	return resp
}

// ExecuteAction dispatches a successfully parsed intent.
func (s *OrderService) ExecuteAction(ctx context.Context, intent models.IntentResult) models.OrderResponse {
	data := intent.Data
	if data == nil {
		data = map[string]interface{}{}
	}

	switch intent.Action {
	case models.IntentPlaceOrder:
		return s.PlaceOrder(ctx, data)
	case models.IntentModifyOrder:
		return s.ModifyOrder(ctx, data)
	case models.IntentCancelOrder:
		return s.CancelOrder(ctx, data["order_id"])
	default:
		utils.InfoLogger.Warnf("Unknown action: %q", intent.Action)
		return s.errorResponse(msgUnknownAction)
	}
}

func (s *OrderService) PlaceOrder(ctx context.Context, data map[string]interface{}) models.OrderResponse {
	var items models.Items
	for _, t := range models.ItemTypes {
		qty, _ := toInt(data[string(t)])
		items.Set(t, qty)
	}

	if items.IsEmpty() {
		return s.errorResponse(msgNoItems)
	}
	if s.exceedsLimit(items) {
		return s.errorResponse(s.limitMessage())
	}

	id := s.store.Add(items)
	message := fmt.Sprintf("Order #%d placed: %s", id, DescribeItems(items))

	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"burgers":  items.Burgers,
		"fries":    items.Fries,
		"drinks":   items.Drinks,
	}).Info("Order placed")

	s.emit(ctx, id, models.ActionPlaced, items, message)
	return s.response(true, models.ActionPlaced, &id, &items, message)
}

// ModifyOrder changes an active order in place. For every item type exactly
// one rule applies, checked in the order set, add, remove.
func (s *OrderService) ModifyOrder(ctx context.Context, data map[string]interface{}) models.OrderResponse {
	id, ok := toInt(data["order_id"])
	if !ok || id == 0 {
		return s.errorResponse(msgModifyNoID)
	}

	order, err := s.store.Modify(id, func(current models.Items) (models.Items, error) {
		next := applyModifications(current, data)
		if s.exceedsLimit(next) {
			return current, errQuantityLimit
		}
		return next, nil
	})
	switch {
	case errors.Is(err, errQuantityLimit):
		return s.errorResponse(s.limitMessage())
	case err != nil:
		return s.errorResponse(fmt.Sprintf("Order #%d not found or not active", id))
	}

	items := order.Items
	message := fmt.Sprintf("Order #%d has been updated", id)
	utils.InfoLogger.WithFields(logrus.Fields{
		"order_id": id,
		"burgers":  items.Burgers,
		"fries":    items.Fries,
		"drinks":   items.Drinks,
	}).Info("Order modified")

	s.emit(ctx, id, models.ActionModified, items, message)
	return s.response(true, models.ActionModified, &id, &items, message)
}

func applyModifications(current models.Items, data map[string]interface{}) models.Items {
	next := current
	for _, t := range models.ItemTypes {
		qty := current.Get(t)
		if v, ok := toInt(data["set_"+string(t)]); ok && v >= 0 {
			next.Set(t, v)
			continue
		}
		if v, ok := toInt(data["add_"+string(t)]); ok && v > 0 {
			next.Set(t, qty+v)
			continue
		}
		if v, ok := toInt(data["remove_"+string(t)]); ok && v > 0 {
			if v >= removeAllQuantity {
				next.Set(t, 0)
			} else {
				next.Set(t, qty-v)
			}
		}
	}
	return next
}

// CancelOrder validates a raw order id from a parsed intent and cancels it.
func (s *OrderService) CancelOrder(ctx context.Context, rawID interface{}) models.OrderResponse {
	if rawID == nil {
		return s.errorResponse(msgCancelNoID)
	}
	id, ok := toInt(rawID)
	if !ok {
		return s.errorResponse(msgInvalidID)
	}
	return s.CancelByID(ctx, id)
}

func (s *OrderService) CancelByID(ctx context.Context, id int) models.OrderResponse {
	if id <= 0 {
		return s.errorResponse(msgNonPositiveID)
	}

	items, ok := s.store.Cancel(id)
	if !ok {
		return s.errorResponse(fmt.Sprintf("Order #%d not found or already canceled", id))
	}

	message := fmt.Sprintf("Order #%d has been canceled", id)
	utils.InfoLogger.WithField("order_id", id).Info("Order canceled")

	s.emit(ctx, id, models.ActionCanceled, items, message)
	return s.response(true, models.ActionCanceled, &id, &items, message)
}

// CurrentOrders lists every active order without changing anything.
func (s *OrderService) CurrentOrders() models.OrderResponse {
	return s.response(true, models.ActionNone, nil, nil, msgCurrentOrders)
}

func (s *OrderService) ActiveSnapshot() models.ActiveSnapshot {
	return s.store.Snapshot()
}

// GetOrder returns the order with id whatever its status.
func (s *OrderService) GetOrder(id int) (models.Order, bool) {
	return s.store.Get(id)
}

// History returns up to limit orders, newest first. limit <= 0 returns all.
func (s *OrderService) History(limit int) []models.Order {
	history := s.store.History()
	if limit > 0 && len(history) > limit {
		history = history[:limit]
	}
	return history
}

func (s *OrderService) Stats() models.OrderStats {
	return s.store.Stats()
}

// Reset drops every order and restarts numbering.
func (s *OrderService) Reset(ctx context.Context) {
	s.store.Clear()
	utils.InfoLogger.WithField("request_id", utils.RequestIDFrom(ctx)).Warn("All orders cleared")
	s.emit(ctx, 0, models.ActionNone, models.Items{}, msgOrdersCleared)
}

func (s *OrderService) emit(ctx context.Context, orderID int, action models.ActionType, items models.Items, message string) {
	if s.notifier == nil {
		return
	}
	event := models.NewOrderEvent(orderID, action, items, message)
	event.RequestID = utils.RequestIDFrom(ctx)
	s.notifier.Notify(ctx, event)
}

func (s *OrderService) exceedsLimit(items models.Items) bool {
	if s.opts.MaxItemQuantity <= 0 {
		return false
	}
	for _, t := range models.ItemTypes {
		if items.Get(t) > s.opts.MaxItemQuantity {
			return true
		}
	}
	return false
}

func (s *OrderService) limitMessage() string {
	return fmt.Sprintf("Each item is limited to %d per order", s.opts.MaxItemQuantity)
}

func (s *OrderService) response(success bool, action models.ActionType, id *int, items *models.Items, message string) models.OrderResponse {
	snap := s.store.Snapshot()
	return models.OrderResponse{
		Success: success,
		Action:  action,
		OrderID: id,
		Items:   items,
		Message: message,
		Totals:  snap.Totals,
		Orders:  snap.Orders,
	}
}

func (s *OrderService) errorResponse(message string) models.OrderResponse {
	return s.response(false, models.ActionError, nil, nil, message)
}

// DescribeItems renders items for customers, e.g.
// "2 burgers, 1 order of fries, and 3 drinks".
func DescribeItems(items models.Items) string {
	var parts []string
	if n := items.Burgers; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "burger", "burgers")))
	}
	if n := items.Fries; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s of fries", n, plural(n, "order", "orders")))
	}
	if n := items.Drinks; n > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", n, plural(n, "drink", "drinks")))
	}

	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	case 2:
		return parts[0] + " and " + parts[1]
	default:
		return strings.Join(parts[:len(parts)-1], ", ") + ", and " + parts[len(parts)-1]
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// toInt coerces a decoded JSON value to an int. Floats are truncated and
// numeric strings are parsed. Out of range numbers saturate at
// ±math.MaxInt32 so quantity limits still see them. Anything else reports false.
func toInt(v interface{}) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int32:
		return int(n), true
	case int64:
		return clampInt(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return clampInt(i), true
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt(f)
		}
	case string:
		s := strings.TrimSpace(n)
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return clampInt(i), true
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return floatToInt(f)
		}
	}
	return 0, false
}

func floatToInt(f float64) (int, bool) {
	switch {
	case math.IsNaN(f) || math.IsInf(f, 0):
		return 0, false
	case f > math.MaxInt32:
		return math.MaxInt32, true
	case f < -math.MaxInt32:
		return -math.MaxInt32, true
	}
	return int(f), true
}

func clampInt(i int64) int {
	switch {
	case i > math.MaxInt32:
		return math.MaxInt32
	case i < -math.MaxInt32:
		return -math.MaxInt32
	}
	return int(i)
}
