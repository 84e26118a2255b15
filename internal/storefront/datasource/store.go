package datasource

import (
	"slices"
	"sync"

	"github.com/storefront-hq/storectl/internal/storefront/entity"
)

// Store holds the entities of one page keyed by id. The list is an ordered
// slice of ids over the summaries; the selected detail is kept separately
// because detail responses carry nested associations the list does not.
// Patch updates both under one lock.
type Store struct {
	mu       sync.RWMutex
	records  map[entity.ID]entity.Record
	order    []entity.ID
	selected entity.Record
	version  uint64
}

func NewStore() *Store {
	return &Store{records: map[entity.ID]entity.Record{}}
}

// ReplaceList swaps the whole list. Records without an id and repeated ids
// are dropped.
func (s *Store) ReplaceList(items entity.Collection) {
	items = items.Dedupe()

	records := make(map[entity.ID]entity.Record, len(items))
	order := make([]entity.ID, 0, len(items))
	for _, rec := range items {
		id := rec.ID()
		records[id] = rec.Clone()
		order = append(order, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.order = order
	s.version++
}

// List returns a copy of the list in display order.
func (s *Store) List() entity.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(entity.Collection, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Len returns the number of listed records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get returns the list entry for id.
func (s *Store) Get(id entity.ID) (entity.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Insert adds rec to the list, replacing an entry with the same id in place.
// New entries are appended, or placed by id when sortByID is set.
func (s *Store) Insert(rec entity.Record, sortByID bool) bool {
	id := rec.ID()
	if id == "" {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[id]; !exists {
		if sortByID {
			pos, _ := slices.BinarySearchFunc(s.order, id, entity.CompareIDs)
			s.order = slices.Insert(s.order, pos, id)
		} else {
			s.order = append(s.order, id)
		}
	}
	s.records[id] = rec.Clone()
	s.version++
	return true
}

// Remove deletes id from the list and closes the detail when it shows id.
// It reports whether the list held id.
func (s *Store) Remove(id entity.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.selected != nil && s.selected.ID() == id {
		s.selected = nil
	}

	if _, ok := s.records[id]; !ok {
		return false
	}
	delete(s.records, id)
	s.order = slices.DeleteFunc(s.order, func(other entity.ID) bool { return other == id })
	s.version++
	return true
}

// Patch merges fields into the list entry for id and into the selected
// detail when it shows id. It reports whether anything changed.
func (s *Store) Patch(id entity.ID, fields map[string]any) bool {
	if len(fields) == 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	if rec, ok := s.records[id]; ok {
		s.records[id] = rec.Merge(fields)
		changed = true
	}
	if s.selected != nil && s.selected.ID() == id {
		s.selected = s.selected.Merge(fields)
		changed = true
	}
	if changed {
		s.version++
	}
	return changed
}

// Select stores rec as the open detail.
func (s *Store) Select(rec entity.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected = rec.Clone()
	s.version++
}

// ClearSelected closes the detail. It is a no-op when nothing is open.
func (s *Store) ClearSelected() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return
	}
	s.selected = nil
	s.version++
}

// Selected returns a copy of the open detail.
func (s *Store) Selected() (entity.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.selected == nil {
		return nil, false
	}
	return s.selected.Clone(), true
}

// Version increases on every change. Views compare it to skip redraws.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
