// Package recent provides a bounded, thread-safe, least-recently-used map.
//
// A [Store] keeps at most a fixed number of entries. Writing a new key into
// a full store silently drops the entry that was touched longest ago; both
// reads and writes count as a touch. Memory stays bounded at the cost of
// losing old state.
//
//	s, err := recent.New[string, int](1024)
//	if err != nil {
//	    return err
//	}
//	s.Set("a", 1)
//	total, _ := s.Update("a", func(old int, _ bool) int { return old + 1 })
//
// Direct iteration is not supported ([Store.Range] always fails with
// [ErrIterationUnsupported]); use [Store.Keys] to take a snapshot.
package recent
