package models

import (
	"fmt"
	"time"
)

type OrderStatus string

const (
	StatusActive   OrderStatus = "active"
	StatusCanceled OrderStatus = "canceled"
)

// ItemType is one of the fixed menu items a drive-thru order can hold.
type ItemType string

const (
	Burgers ItemType = "burgers"
	Fries   ItemType = "fries"
	Drinks  ItemType = "drinks"
)

// ItemTypes lists the menu in display order.
var ItemTypes = []ItemType{Burgers, Fries, Drinks}

// Items holds the quantity of every menu item. It is a value type so
// copies handed out by the store never alias internal state.
type Items struct {
	Burgers int `json:"burgers"`
	Fries   int `json:"fries"`
	Drinks  int `json:"drinks"`
}

func (it Items) Get(t ItemType) int {
	switch t {
	case Burgers:
		return it.Burgers
	case Fries:
		return it.Fries
	case Drinks:
		return it.Drinks
	}
	return 0
}

// Set stores n for t, clamping negatives to zero.
func (it *Items) Set(t ItemType, n int) {
	if n < 0 {
		n = 0
	}
	switch t {
	case Burgers:
		it.Burgers = n
	case Fries:
		it.Fries = n
	case Drinks:
		it.Drinks = n
	}
}

func (it Items) IsEmpty() bool {
	return it.Burgers == 0 && it.Fries == 0 && it.Drinks == 0
}

func (it Items) Total() int {
	return it.Burgers + it.Fries + it.Drinks
}

// Add returns the element-wise sum of it and other.
func (it Items) Add(other Items) Items {
	return Items{
		Burgers: it.Burgers + other.Burgers,
		Fries:   it.Fries + other.Fries,
		Drinks:  it.Drinks + other.Drinks,
	}
}

type Order struct {
	ID        int         `json:"id"`
	Items     Items       `json:"items"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}

func (o Order) IsActive() bool {
	return o.Status == StatusActive
}

// Label is the customer-facing order number, e.g. "Order #7".
func (o Order) Label() string {
	return fmt.Sprintf("Order #%d", o.ID)
}

type OrderStats struct {
	TotalOrders    int `json:"total_orders"`
	ActiveOrders   int `json:"active_orders"`
	CanceledOrders int `json:"canceled_orders"`
	NextOrderID    int `json:"next_order_id"`
}
