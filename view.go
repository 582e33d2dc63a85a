// Logical-to-physical record mapping.
//
// The offset tables stay keyed to physical line numbers even when a filter
// narrowed the visible records; Lines is the indirection between the two
// numberings. No I/O happens here.
package tandem

import "fmt"

// Len returns the number of externally visible records.
func (s *State) Len() int {
	return len(s.Lines)
}

// physical translates a logical record index to its physical line number.
func (s *State) physical(i int) (int64, error) {
	if i < 0 || i >= len(s.Lines) {
		return 0, fmt.Errorf("%w: %d of %d", ErrRange, i, len(s.Lines))
	}
	return s.Lines[i], nil
}
