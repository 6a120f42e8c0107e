package ht

// Stats describes how elements are spread over the slot array.
type Stats struct {
	Count     int // stored elements
	Slots     int // slot array length
	UsedSlots int // slots heading a non-empty chain
	MaxChain  int // longest chain
	// Collisions counts elements sharing their full hash with an earlier
	// element of the same chain. Such keys are only told apart by the
	// byte comparison.
	Collisions int
}

// LoadFactor returns Count / Slots.
func (s Stats) LoadFactor() float64 {
	if s.Slots == 0 {
		return 0
	}

	return float64(s.Count) / float64(s.Slots)
}

// Stats walks every chain and reports the table's distribution.
func (t *Table[V]) Stats() Stats {
	s := Stats{Count: t.count, Slots: len(t.slots)}

	var seen map[uint]struct{}
	for _, head := range t.slots {
		if head == noElement {
			continue
		}
		s.UsedSlots++

		clear(seen)
		chain := 0
		for idx := head; idx != noElement; idx = t.elems[idx].next {
			chain++
			h := t.elems[idx].hash
			if seen == nil {
				seen = make(map[uint]struct{})
			}
			if _, ok := seen[h]; ok {
				s.Collisions++
			}
			seen[h] = struct{}{}
		}
		s.MaxChain = max(s.MaxChain, chain)
	}

	return s
}
