package entity

// Collection holds records normalized as an ordered id sequence plus a lookup
// map. Invariant: IDs contains exactly the keys present in Entities, without
// duplicates, in either insertion order or the adapter's comparator order.
type Collection[T any] struct {
	IDs      []string
	Entities map[string]T
}

// Len reports the number of records.
func (c Collection[T]) Len() int {
	return len(c.IDs)
}

// Has reports whether a record with the given identifier is present.
func (c Collection[T]) Has(id string) bool {
	_, ok := c.Entities[id]
	return ok
}

// Get retrieves the record with the given identifier.
func (c Collection[T]) Get(id string) (T, bool) {
	record, ok := c.Entities[id]
	return record, ok
}

// All returns the records in collection order.
func (c Collection[T]) All() []T {
	out := make([]T, 0, len(c.IDs))
	for _, id := range c.IDs {
		out = append(out, c.Entities[id])
	}
	return out
}

func (c Collection[T]) cloneEntities() map[string]T {
	cloned := make(map[string]T, len(c.Entities))
	for id, record := range c.Entities {
		cloned[id] = record
	}
	return cloned
}

func (c Collection[T]) cloneIDs() []string {
	return append([]string(nil), c.IDs...)
}
