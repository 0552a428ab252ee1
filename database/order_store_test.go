package database

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yeremiapane/drivethru-app/models"
)

func TestOrderStore_IDsIncreaseAndAreNeverReused(t *testing.T) {
	store := NewOrderStore()

	var ids []int
	for i := 0; i < 5; i++ {
		ids = append(ids, store.Add(models.Items{Burgers: 1}))
	}
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids)

	_, ok := store.Cancel(5)
	require.True(t, ok)
	assert.Equal(t, 6, store.Add(models.Items{Drinks: 1}))
}

func TestOrderStore_CancelIsIdempotent(t *testing.T) {
	store := NewOrderStore()
	id := store.Add(models.Items{Burgers: 2, Fries: 1})

	items, ok := store.Cancel(id)
	assert.True(t, ok)
	assert.Equal(t, models.Items{Burgers: 2, Fries: 1}, items)
	totals := store.Totals()

	_, ok = store.Cancel(id)
	assert.False(t, ok)
	_, ok = store.Cancel(99)
	assert.False(t, ok)
	assert.Equal(t, totals, store.Totals())

	order, found := store.Get(id)
	require.True(t, found)
	assert.Equal(t, models.StatusCanceled, order.Status)
	assert.False(t, store.HasActive(id))
}

func TestOrderStore_ConcurrentCancelHasOneWinner(t *testing.T) {
	store := NewOrderStore()
	id := store.Add(models.Items{Drinks: 3})

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, ok := store.Cancel(id); ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
}

func TestOrderStore_ConcurrentAddsGetDistinctIDs(t *testing.T) {
	store := NewOrderStore()

	var wg sync.WaitGroup
	ids := make(chan int, 100)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- store.Add(models.Items{Fries: 1})
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 100)
	assert.Equal(t, models.Items{Fries: 100}, store.Totals())
}

func TestOrderStore_TotalsOnlyCountActiveOrders(t *testing.T) {
	store := NewOrderStore()
	assert.Equal(t, models.Items{}, store.Totals())

	store.Add(models.Items{Burgers: 2, Fries: 1})
	second := store.Add(models.Items{Burgers: 1, Drinks: 4})
	store.Add(models.Items{Fries: 2, Drinks: 1})
	store.Cancel(second)

	assert.Equal(t, models.Items{Burgers: 2, Fries: 3, Drinks: 1}, store.Totals())

	active := store.ActiveOrders()
	assert.Len(t, active, 2)
	assert.NotContains(t, active, second)

	snap := store.Snapshot()
	assert.Equal(t, active, snap.Orders)
	assert.Equal(t, store.Totals(), snap.Totals)
}

func TestOrderStore_Modify(t *testing.T) {
	store := NewOrderStore()
	id := store.Add(models.Items{Burgers: 2})
	before, _ := store.Get(id)

	order, err := store.Modify(id, func(items models.Items) (models.Items, error) {
		items.Drinks = 3
		items.Burgers = -4
		return items, nil
	})
	require.NoError(t, err)
	assert.Equal(t, models.Items{Burgers: 0, Drinks: 3}, order.Items)
	assert.Equal(t, id, order.ID)
	assert.Equal(t, before.CreatedAt, order.CreatedAt)

	t.Run("callback error leaves order untouched", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := store.Modify(id, func(items models.Items) (models.Items, error) {
			return models.Items{Burgers: 9}, boom
		})
		assert.ErrorIs(t, err, boom)
		current, _ := store.Get(id)
		assert.Equal(t, models.Items{Drinks: 3}, current.Items)
	})

	t.Run("missing order", func(t *testing.T) {
		_, err := store.Modify(42, func(items models.Items) (models.Items, error) { return items, nil })
		assert.ErrorIs(t, err, ErrOrderNotFound)
	})

	t.Run("canceled order", func(t *testing.T) {
		store.Cancel(id)
		_, err := store.Modify(id, func(items models.Items) (models.Items, error) { return items, nil })
		assert.ErrorIs(t, err, ErrOrderNotActive)
	})
}

func TestOrderStore_ReturnsCopies(t *testing.T) {
	store := NewOrderStore()
	id := store.Add(models.Items{Burgers: 1})

	order, _ := store.Get(id)
	order.Items.Burgers = 10
	order.Status = models.StatusCanceled

	again, _ := store.Get(id)
	assert.Equal(t, 1, again.Items.Burgers)
	assert.True(t, again.IsActive())

	active := store.ActiveOrders()
	active[id] = models.Items{Drinks: 7}
	assert.Equal(t, models.Items{Burgers: 1}, store.ActiveOrders()[id])
}

func TestOrderStore_HistoryNewestFirst(t *testing.T) {
	store := NewOrderStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	times := []time.Time{base, base.Add(time.Minute), base.Add(time.Minute), base.Add(-time.Minute)}
	i := 0
	store.now = func() time.Time {
		ts := times[i]
		i++
		return ts
	}

	for range times {
		store.Add(models.Items{Burgers: 1})
	}
	store.Cancel(1)

	var ids []int
	for _, o := range store.History() {
		ids = append(ids, o.ID)
	}
	assert.Equal(t, []int{3, 2, 1, 4}, ids)
}

func TestOrderStore_StatsAndClear(t *testing.T) {
	store := NewOrderStore()
	store.Add(models.Items{Burgers: 1})
	store.Add(models.Items{Fries: 1})
	store.Cancel(1)

	assert.Equal(t, models.OrderStats{
		TotalOrders:    2,
		ActiveOrders:   1,
		CanceledOrders: 1,
		NextOrderID:    3,
	}, store.Stats())

	store.Clear()
	assert.Equal(t, models.OrderStats{NextOrderID: 1}, store.Stats())
	assert.Equal(t, models.Items{}, store.Totals())
	assert.Equal(t, 1, store.Add(models.Items{Drinks: 1}))
}
