package catalog

import "sync/atomic"

// Sequencer tags keystroke searches so slow responses cannot clobber the
// results of a newer query. Searches are not debounced; the consumer asks
// Latest before rendering and drops anything stale.
type Sequencer struct {
	latest atomic.Uint64
}

// Next registers a new query and returns its token.
func (s *Sequencer) Next() uint64 {
	return s.latest.Add(1)
}

// Latest reports whether token still identifies the newest query.
func (s *Sequencer) Latest(token uint64) bool {
	return s.latest.Load() == token
}
