package entity

import "sort"

// Adapter performs normalized collection operations for a record type. The
// identifier is derived from the record via selectID; ordering is insertion
// order unless a comparator is supplied, in which case it is applied
// consistently across every mutating operation.
type Adapter[T any] struct {
	selectID func(T) string
	less     func(a, b T) bool
}

// Option configures an adapter.
type Option[T any] func(*Adapter[T])

// WithSort orders collections by the supplied comparator instead of insertion
// order.
func WithSort[T any](less func(a, b T) bool) Option[T] {
	return func(a *Adapter[T]) {
		a.less = less
	}
}

// NewAdapter constructs an adapter deriving identifiers via selectID.
func NewAdapter[T any](selectID func(T) string, opts ...Option[T]) Adapter[T] {
	a := Adapter[T]{selectID: selectID}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// Empty returns a collection with no records.
func (a Adapter[T]) Empty() Collection[T] {
	return Collection[T]{Entities: map[string]T{}}
}

// Update pairs an identifier with a patch applied to the current record.
type Update[T any] struct {
	ID    string
	Patch func(T) T
}

// AddOne inserts a record. An identifier that is already present is ignored
// and the input collection is returned unchanged.
func (a Adapter[T]) AddOne(c Collection[T], record T) Collection[T] {
	return a.AddMany(c, record)
}

// AddMany inserts records, ignoring identifiers that are already present.
// When every record is a duplicate the input collection is returned
// unchanged.
func (a Adapter[T]) AddMany(c Collection[T], records ...T) Collection[T] {
	fresh := make([]T, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, record := range records {
		id := a.selectID(record)
		if _, dup := seen[id]; dup {
			continue
		}
		if c.Has(id) {
			continue
		}
		seen[id] = struct{}{}
		fresh = append(fresh, record)
	}
	if len(fresh) == 0 {
		return c
	}
	entities := c.cloneEntities()
	ids := c.cloneIDs()
	for _, record := range fresh {
		id := a.selectID(record)
		entities[id] = record
		ids = a.insertID(ids, entities, id)
	}
	return Collection[T]{IDs: ids, Entities: entities}
}

// SetAll replaces the entire collection with the supplied records, resetting
// the ordering. Later records win on duplicate identifiers.
func (a Adapter[T]) SetAll(c Collection[T], records ...T) Collection[T] {
	entities := make(map[string]T, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		id := a.selectID(record)
		if _, dup := entities[id]; !dup {
			ids = append(ids, id)
		}
		entities[id] = record
	}
	if a.less != nil {
		sort.SliceStable(ids, func(i, j int) bool {
			return a.less(entities[ids[i]], entities[ids[j]])
		})
	}
	return Collection[T]{IDs: ids, Entities: entities}
}

// RemoveOne removes the record with the given identifier; absent identifiers
// leave the input collection unchanged.
func (a Adapter[T]) RemoveOne(c Collection[T], id string) Collection[T] {
	return a.RemoveMany(c, id)
}

// RemoveMany removes the records with the given identifiers.
func (a Adapter[T]) RemoveMany(c Collection[T], idsToRemove ...string) Collection[T] {
	drop := make(map[string]struct{}, len(idsToRemove))
	for _, id := range idsToRemove {
		if c.Has(id) {
			drop[id] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return c
	}
	entities := make(map[string]T, len(c.Entities)-len(drop))
	ids := make([]string, 0, len(c.IDs)-len(drop))
	for _, id := range c.IDs {
		if _, gone := drop[id]; gone {
			continue
		}
		ids = append(ids, id)
		entities[id] = c.Entities[id]
	}
	return Collection[T]{IDs: ids, Entities: entities}
}

// RemoveAll clears the collection.
func (a Adapter[T]) RemoveAll(c Collection[T]) Collection[T] {
	if c.Len() == 0 {
		return c
	}
	return a.Empty()
}

// UpdateOne applies a patch to an existing record; an absent identifier is a
// no-op. A patch that changes the identifier moves the record, unless the new
// identifier collides with a different existing record, in which case the
// update is ignored.
func (a Adapter[T]) UpdateOne(c Collection[T], update Update[T]) Collection[T] {
	return a.UpdateMany(c, update)
}

// UpdateMany applies patches to existing records.
func (a Adapter[T]) UpdateMany(c Collection[T], updates ...Update[T]) Collection[T] {
	out := c
	changed := false
	for _, update := range updates {
		if update.Patch == nil {
			continue
		}
		current, ok := out.Get(update.ID)
		if !ok {
			continue
		}
		patched := update.Patch(current)
		newID := a.selectID(patched)
		if newID != update.ID && out.Has(newID) {
			continue
		}
		if !changed {
			out = Collection[T]{IDs: out.cloneIDs(), Entities: out.cloneEntities()}
			changed = true
		}
		if newID == update.ID {
			out.Entities[update.ID] = patched
			if a.less != nil {
				out.IDs = a.repositionID(out.IDs, out.Entities, update.ID)
			}
			continue
		}
		delete(out.Entities, update.ID)
		out.Entities[newID] = patched
		for i, id := range out.IDs {
			if id == update.ID {
				out.IDs[i] = newID
				break
			}
		}
		if a.less != nil {
			out.IDs = a.repositionID(out.IDs, out.Entities, newID)
		}
	}
	if !changed {
		return c
	}
	return out
}

// UpsertOne inserts the record when absent and replaces it when present.
func (a Adapter[T]) UpsertOne(c Collection[T], record T) Collection[T] {
	return a.UpsertMany(c, record)
}

// UpsertMany inserts or replaces records.
func (a Adapter[T]) UpsertMany(c Collection[T], records ...T) Collection[T] {
	if len(records) == 0 {
		return c
	}
	entities := c.cloneEntities()
	ids := c.cloneIDs()
	for _, record := range records {
		id := a.selectID(record)
		if _, exists := entities[id]; exists {
			entities[id] = record
			if a.less != nil {
				ids = a.repositionID(ids, entities, id)
			}
			continue
		}
		entities[id] = record
		ids = a.insertID(ids, entities, id)
	}
	return Collection[T]{IDs: ids, Entities: entities}
}

// insertID appends id, or places it at its comparator position when the
// adapter is sorted. The record must already be present in entities.
func (a Adapter[T]) insertID(ids []string, entities map[string]T, id string) []string {
	if a.less == nil {
		return append(ids, id)
	}
	record := entities[id]
	pos := sort.Search(len(ids), func(i int) bool {
		return a.less(record, entities[ids[i]])
	})
	ids = append(ids, "")
	copy(ids[pos+1:], ids[pos:])
	ids[pos] = id
	return ids
}

// repositionID re-sorts a single id after its record changed.
func (a Adapter[T]) repositionID(ids []string, entities map[string]T, id string) []string {
	for i, existing := range ids {
		if existing == id {
			ids = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	return a.insertID(ids, entities, id)
}
