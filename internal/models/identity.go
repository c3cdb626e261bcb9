package models

// entity is anything with a storage-assigned identity. Before the first save
// the identity is zero and only pointer equality counts.
type entity interface {
	comparable
	key() uint
}

func same[E entity](a, b E) bool {
	if a == b {
		return true
	}
	var zero E
	if a == zero || b == zero {
		return false
	}
	return a.key() != 0 && a.key() == b.key()
}

func indexOf[E entity](list []E, item E) int {
	for i, e := range list {
		if same(e, item) {
			return i
		}
	}
	return -1
}

func contains[E entity](list []E, item E) bool {
	return indexOf(list, item) >= 0
}

// appendUnique adds item unless an equal one is present.
func appendUnique[E entity](list []E, item E) []E {
	if contains(list, item) {
		return list
	}
	return append(list, item)
}

// remove drops every entry equal to item, keeping order.
func remove[E entity](list []E, item E) []E {
	out := list[:0]
	for _, e := range list {
		if !same(e, item) {
			out = append(out, e)
		}
	}
	var zero E
	for i := len(out); i < len(list); i++ {
		list[i] = zero
	}
	return out
}

// IDs returns the identities of a hydrated collection.
func IDs[E entity](list []E) []uint {
	ids := make([]uint, 0, len(list))
	for _, e := range list {
		ids = append(ids, e.key())
	}
	return ids
}
