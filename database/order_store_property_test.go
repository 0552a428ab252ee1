package database

import (
	"testing"

	"go.uber.org/goleak"
	"pgregory.net/rapid"

	"github.com/yeremiapane/drivethru-app/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func genItems(t *rapid.T, label string) models.Items {
	return models.Items{
		Burgers: rapid.IntRange(0, 60).Draw(t, label+"-burgers"),
		Fries:   rapid.IntRange(0, 60).Draw(t, label+"-fries"),
		Drinks:  rapid.IntRange(0, 60).Draw(t, label+"-drinks"),
	}
}

// The store is checked against a plain map model after every operation.
func TestOrderStore_MatchesModel(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		store := NewOrderStore()
		active := map[int]models.Items{}
		lastID := 0

		steps := rapid.IntRange(1, 60).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				items := genItems(t, "add")
				id := store.Add(items)
				if id != lastID+1 {
					t.Fatalf("expected id %d, got %d", lastID+1, id)
				}
				lastID = id
				active[id] = items
			case 1:
				id := rapid.IntRange(0, lastID+2).Draw(t, "cancel-id")
				items, ok := store.Cancel(id)
				want, wasActive := active[id]
				if ok != wasActive {
					t.Fatalf("cancel(%d) = %v, model says active=%v", id, ok, wasActive)
				}
				if ok && items != want {
					t.Fatalf("cancel(%d) returned %+v, want %+v", id, items, want)
				}
				delete(active, id)
			case 2:
				id := rapid.IntRange(0, lastID+2).Draw(t, "modify-id")
				delta := rapid.IntRange(-80, 80).Draw(t, "delta")
				order, err := store.Modify(id, func(items models.Items) (models.Items, error) {
					items.Burgers += delta
					return items, nil
				})
				if _, isActive := active[id]; isActive != (err == nil) {
					t.Fatalf("modify(%d) err=%v, model says active=%v", id, err, isActive)
				}
				if err == nil {
					if order.Items.Burgers < 0 {
						t.Fatalf("negative quantity after modify: %+v", order.Items)
					}
					active[id] = order.Items
				}
			}

			var want models.Items
			for _, items := range active {
				want = want.Add(items)
			}
			if got := store.Totals(); got != want {
				t.Fatalf("totals %+v, want %+v", got, want)
			}
			if got := len(store.ActiveOrders()); got != len(active) {
				t.Fatalf("%d active orders, want %d", got, len(active))
			}
			if stats := store.Stats(); stats.TotalOrders != lastID || stats.NextOrderID != lastID+1 {
				t.Fatalf("unexpected stats %+v after %d adds", stats, lastID)
			}
		}
	})
}
