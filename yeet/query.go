package yeet

// Lookup returns the value of the oldest entry recorded under name. This is
// the rule used for argument resolution, so duplicate names resolve to the
// first value bound.
func (s *Stack) Lookup(name string) (any, bool) {
	for _, e := range s.entries {
		if e.Name == name {
			return e.Value, true
		}
	}
	return nil, false
}

// Len returns the number of recorded entries.
func (s *Stack) Len() int { return len(s.entries) }

// Entries returns a copy of the recorded entries in call order.
func (s *Stack) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Yoink returns every recorded entry as a name to value map. When a name
// was bound more than once the most recent value wins.
func (s *Stack) Yoink() map[string]any {
	return s.YoinkLast(len(s.entries))
}

// YoinkLast returns the last n entries as a name to value map, later
// entries overwriting earlier ones. n larger than Len is clamped; n <= 0
// yields an empty map.
func (s *Stack) YoinkLast(n int) map[string]any {
	if n > len(s.entries) {
		n = len(s.entries)
	}
	if n < 0 {
		n = 0
	}
	out := make(map[string]any, n)
	for _, e := range s.entries[len(s.entries)-n:] {
		out[e.Name] = e.Value
	}
	return out
}
