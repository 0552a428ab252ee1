package models

import (
	"time"
)

// OrderEvent records one lifecycle change of an order. It is broadcast to
// board clients, published to the broker and appended to the journal.
type OrderEvent struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OrderID   int        `gorm:"not null;index:idx_order_action" json:"order_id"`
	Action    ActionType `gorm:"type:varchar(20);not null;index:idx_order_action" json:"action"`
	Burgers   int        `gorm:"not null;default:0" json:"burgers"`
	Fries     int        `gorm:"not null;default:0" json:"fries"`
	Drinks    int        `gorm:"not null;default:0" json:"drinks"`
	Message   string     `gorm:"type:text" json:"message"`
	RequestID string     `gorm:"type:varchar(64)" json:"request_id,omitempty"`
	CreatedAt time.Time  `gorm:"not null" json:"created_at"`
}

func NewOrderEvent(orderID int, action ActionType, items Items, message string) OrderEvent {
	return OrderEvent{
		OrderID:   orderID,
		Action:    action,
		Burgers:   items.Burgers,
		Fries:     items.Fries,
		Drinks:    items.Drinks,
		Message:   message,
		CreatedAt: time.Now(),
	}
}

func (e OrderEvent) Items() Items {
	return Items{Burgers: e.Burgers, Fries: e.Fries, Drinks: e.Drinks}
}
