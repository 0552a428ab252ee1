package models

type ActionType string

const (
	ActionPlaced   ActionType = "placed"
	ActionCanceled ActionType = "canceled"
	ActionModified ActionType = "modified"
	ActionError    ActionType = "error"
	ActionNone     ActionType = "none"
)

// Intent actions understood by the order service.
const (
	IntentPlaceOrder  = "place_order"
	IntentModifyOrder = "modify_order"
	IntentCancelOrder = "cancel_order"
)

type OrderRequest struct {
	Message string `json:"message" binding:"required"`
}

// OrderResponse is returned for every outcome of a customer request,
// successful or not, so the caller always sees current totals.
type OrderResponse struct {
	Success bool          `json:"success"`
	Action  ActionType    `json:"action"`
	OrderID *int          `json:"order_id"`
	Items   *Items        `json:"items"`
	Message string        `json:"message"`
	Totals  Items         `json:"totals"`
	Orders  map[int]Items `json:"orders"`
}

// IntentResult is what an intent parser makes of a customer utterance.
type IntentResult struct {
	Success bool                   `json:"success"`
	Action  string                 `json:"action,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// ActiveSnapshot is the view of every active order plus running totals.
type ActiveSnapshot struct {
	Orders map[int]Items `json:"orders"`
	Totals Items         `json:"totals"`
}
