package bibtex

// Store is a mapping from citation key to BibEntry that preserves
// insertion order for serialization.
type Store struct {
	order   []string
	entries map[string]*BibEntry
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{entries: make(map[string]*BibEntry)}
}

// Lookup returns the entry for key, or nil if not present.
func (s *Store) Lookup(key string) *BibEntry {
	if s == nil {
		return nil
	}
	return s.entries[key]
}

// Insert adds e, keeping the first entry on a duplicate key (caller is
// expected to have already warned; Insert itself is silent so it can be
// reused by callers that want different duplicate policies).
func (s *Store) Insert(e *BibEntry) (inserted bool) {
	if s.entries == nil {
		s.entries = make(map[string]*BibEntry)
	}
	if _, exists := s.entries[e.Key]; exists {
		return false
	}
	s.order = append(s.order, e.Key)
	s.entries[e.Key] = e
	return true
}

// Keys iterates citation keys in insertion order.
func (s *Store) Keys() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// Entries iterates entries in insertion order.
func (s *Store) Entries() []*BibEntry {
	out := make([]*BibEntry, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.entries[k])
	}
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int { return len(s.order) }
