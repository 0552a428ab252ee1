package database

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/yeremiapane/drivethru-app/models"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrOrderNotActive = errors.New("order not active")
)

// OrderStore keeps every order of the current session in memory. A single
// mutex serializes all operations, and every value handed out is a copy.
type OrderStore struct {
	mu     sync.Mutex
	orders map[int]*models.Order
	nextID int
	now    func() time.Time
}

func NewOrderStore() *OrderStore {
	return &OrderStore{
		orders: make(map[int]*models.Order),
		nextID: 1,
		now:    time.Now,
	}
}

// Add stores a new active order and returns its id.
func (s *OrderStore) Add(items models.Items) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.orders[id] = &models.Order{
		ID:        id,
		Items:     items,
		Status:    models.StatusActive,
		CreatedAt: s.now(),
	}
	s.nextID++
	return id
}

// Get looks an order up regardless of its status.
func (s *OrderStore) Get(id int) (models.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, false
	}
	return *order, true
}

// Cancel flips an active order to canceled and returns the items it held.
// Only one caller can observe the transition; everyone else gets false.
func (s *OrderStore) Cancel(id int) (models.Items, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok || order.Status != models.StatusActive {
		return models.Items{}, false
	}
	order.Status = models.StatusCanceled
	return order.Items, true
}

// Modify replaces the items of an active order with the result of fn.
// When fn fails the order is left untouched and its error is returned.
func (s *OrderStore) Modify(id int, fn func(models.Items) (models.Items, error)) (models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return models.Order{}, ErrOrderNotFound
	}
	if order.Status != models.StatusActive {
		return models.Order{}, ErrOrderNotActive
	}

	items, err := fn(order.Items)
	if err != nil {
		return models.Order{}, err
	}
	// re-apply Set so fn cannot store negative quantities
	for _, t := range models.ItemTypes {
		items.Set(t, items.Get(t))
	}
	order.Items = items
	return *order, nil
}

// Totals sums items over active orders.
func (s *OrderStore) Totals() models.Items {
	s.mu.Lock()
	defer s.mu.Unlock()

	var totals models.Items
	for _, order := range s.orders {
		if order.Status == models.StatusActive {
			totals = totals.Add(order.Items)
		}
	}
	return totals
}

func (s *OrderStore) ActiveOrders() map[int]models.Items {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[int]models.Items)
	for id, order := range s.orders {
		if order.Status == models.StatusActive {
			active[id] = order.Items
		}
	}
	return active
}

// Snapshot returns active orders and their totals from one critical section.
func (s *OrderStore) Snapshot() models.ActiveSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := models.ActiveSnapshot{Orders: make(map[int]models.Items)}
	for id, order := range s.orders {
		if order.Status == models.StatusActive {
			snap.Orders[id] = order.Items
			snap.Totals = snap.Totals.Add(order.Items)
		}
	}
	return snap
}

// History returns all orders, newest first.
func (s *OrderStore) History() []models.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := make([]models.Order, 0, len(s.orders))
	for _, order := range s.orders {
		history = append(history, *order)
	}
	sort.Slice(history, func(i, j int) bool {
		if !history[i].CreatedAt.Equal(history[j].CreatedAt) {
			return history[i].CreatedAt.After(history[j].CreatedAt)
		}
		return history[i].ID > history[j].ID
	})
	return history
}

func (s *OrderStore) Stats() models.OrderStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := models.OrderStats{
		TotalOrders: len(s.orders),
		NextOrderID: s.nextID,
	}
	for _, order := range s.orders {
		switch order.Status {
		case models.StatusActive:
			stats.ActiveOrders++
		case models.StatusCanceled:
			stats.CanceledOrders++
		}
	}
	return stats
}

func (s *OrderStore) HasActive(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	return ok && order.Status == models.StatusActive
}

// Clear drops every order and restarts numbering at 1.
func (s *OrderStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orders = make(map[int]*models.Order)
	s.nextID = 1
}
