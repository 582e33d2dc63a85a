// Positioned read primitive.
//
// Records are fetched with ReadAt via a SectionReader so a read never moves
// the handle's file position. The byte extent of every line is known from
// the offset table, so a fetch is a single bounded read.
package tandem

import (
	"fmt"
	"io"
	"os"
)

// lineAt reads the n bytes starting at off. A short read means the file
// shrank after indexing; it is surfaced as an I/O error, not truncated.
func lineAt(f *os.File, off, n int64) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(io.NewSectionReader(f, off, n), buf); err != nil {
		return nil, fmt.Errorf("read %s at %d: %w", f.Name(), off, err)
	}
	return buf, nil
}
