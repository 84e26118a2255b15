package datasource

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/stretchr/testify/assert"
)

func TestStoreReplaceListDropsDuplicates(t *testing.T) {
	s := NewStore()
	s.ReplaceList(records(
		map[string]any{"id": float64(1), "name": "first"},
		map[string]any{"name": "no id"},
		map[string]any{"id": "1", "name": "dup"},
		map[string]any{"id": float64(2)},
	))

	got := s.List()
	want := entity.Collection{
		{"id": float64(1), "name": "first"},
		{"id": float64(2)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("list mismatch (-want +got):\n%s", diff)
	}
}

func TestStoreListReturnsCopies(t *testing.T) {
	s := NewStore()
	s.ReplaceList(records(map[string]any{"id": float64(1), "blocked": false}))

	items := s.List()
	items[0]["blocked"] = true

	rec, _ := s.Get("1")
	assert.False(t, rec.Blocked())
}

func TestStorePatchUpdatesListAndSelected(t *testing.T) {
	s := NewStore()
	s.ReplaceList(records(map[string]any{"id": float64(1)}, map[string]any{"id": float64(2)}))
	s.Select(entity.Record{"id": float64(1), "items": []any{"x"}})
	v := s.Version()

	assert.True(t, s.Patch("1", map[string]any{"status": "delivered", "id": "other"}))
	assert.Greater(t, s.Version(), v)

	rec, _ := s.Get("1")
	assert.Equal(t, "delivered", rec.Status())
	assert.Equal(t, entity.ID("1"), rec.ID())

	selected, ok := s.Selected()
	assert.True(t, ok)
	assert.Equal(t, "delivered", selected.Status())
	assert.Equal(t, []any{"x"}, selected["items"])

	other, _ := s.Get("2")
	assert.Empty(t, other.Status())

	assert.False(t, s.Patch("404", map[string]any{"status": "x"}))
}

func TestStoreInsertAndRemove(t *testing.T) {
	s := NewStore()
	s.ReplaceList(records(map[string]any{"id": float64(2)}, map[string]any{"id": float64(10)}))

	assert.True(t, s.Insert(entity.Record{"id": float64(5)}, true))
	assert.Equal(t, []entity.ID{"2", "5", "10"}, s.List().IDs())

	assert.True(t, s.Insert(entity.Record{"id": float64(1)}, false))
	assert.Equal(t, []entity.ID{"2", "5", "10", "1"}, s.List().IDs())

	assert.True(t, s.Insert(entity.Record{"id": float64(5), "name": "again"}, true))
	assert.Equal(t, 4, s.Len())

	assert.False(t, s.Insert(entity.Record{"name": "anonymous"}, true))

	s.Select(entity.Record{"id": float64(5)})
	assert.True(t, s.Remove("5"))
	_, open := s.Selected()
	assert.False(t, open)
	assert.False(t, s.Remove("5"))
	assert.Equal(t, []entity.ID{"2", "10", "1"}, s.List().IDs())
}
