package services

import (
	"context"

	"github.com/yeremiapane/drivethru-app/models"
)

// OrderNotifier receives every successful order mutation. Notify must not
// block for long and reports its own failures.
type OrderNotifier interface {
	Notify(ctx context.Context, event models.OrderEvent)
}

// MultiNotifier fans an event out to several notifiers in order.
type MultiNotifier []OrderNotifier

func (m MultiNotifier) Notify(ctx context.Context, event models.OrderEvent) {
	for _, n := range m {
		if n != nil {
			n.Notify(ctx, event)
		}
	}
}

// NotifierFunc adapts a plain function to OrderNotifier.
type NotifierFunc func(ctx context.Context, event models.OrderEvent)

func (f NotifierFunc) Notify(ctx context.Context, event models.OrderEvent) {
	f(ctx, event)
}
