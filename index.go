// Line-boundary indexing: the single lockstep pass that builds a State.
//
// All files are read one line at a time, together. After every simultaneous
// read the post-line cursor position of each file is appended to its offset
// table, so offsets[i]..offsets[i+1] bound physical line i. If any file
// runs out of lines before the others the pass aborts with ErrLineCount,
// since alignment cannot be repaired locally. The filter predicate, when
// present, sees each decoded line set exactly once and only its boolean
// outcome is kept.
package tandem

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// lineScanner reads physical lines from one file, tracking the absolute
// byte offset of its cursor. Terminator recognition follows the file's
// newline policy and works on raw bytes.
type lineScanner struct {
	r   *bufio.Reader
	dec *decoder
	off int64 // bytes consumed from the start of the file
}

// next returns the next physical line including its terminator, or io.EOF
// when the file is exhausted. A final line without a trailing terminator is
// returned as-is.
func (s *lineScanner) next() ([]byte, error) {
	var line []byte
	for {
		b, err := s.r.ReadByte()
		if err == io.EOF {
			if len(line) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, err
		}
		line = append(line, b)
		if s.terminated(&line, b) {
			break
		}
	}
	s.off += int64(len(line))
	return line, nil
}

// terminated reports whether the byte just read ends the line. Under
// NewlineAuto a lone \r terminates, and a directly following \n is folded
// into the same line so \r\n never splits in two.
func (s *lineScanner) terminated(line *[]byte, b byte) bool {
	switch s.dec.newline {
	case NewlineLF:
		return b == '\n'
	case NewlineCR:
		return b == '\r'
	case NewlineCRLF:
		n := len(*line)
		return b == '\n' && n >= 2 && (*line)[n-2] == '\r'
	}
	if b == '\n' {
		return true
	}
	if b != '\r' {
		return false
	}
	if nb, err := s.r.Peek(1); err == nil && nb[0] == '\n' {
		s.r.ReadByte()
		*line = append(*line, '\n')
	}
	return true
}

// buildState runs the indexing pass over the given files and returns the
// persistable State. When cfg.Fingerprint is set, each file's content is
// hashed incrementally as the scan consumes it.
func buildState(specs []FileSpec, filter FilterFunc, cfg Config) (*State, error) {
	decs, err := decoders(specs)
	if err != nil {
		return nil, err
	}

	files := make([]*os.File, len(specs))
	defer func() {
		for _, f := range files {
			if f != nil {
				f.Close()
			}
		}
	}()

	scanners := make([]*lineScanner, len(specs))
	digests := make([]*digest, len(specs))
	for i, spec := range specs {
		f, err := os.Open(spec.Path)
		if err != nil {
			return nil, err
		}
		files[i] = f

		var src io.Reader = f
		if cfg.Fingerprint != 0 {
			dg, err := newDigest(cfg.Fingerprint)
			if err != nil {
				return nil, err
			}
			digests[i] = dg
			src = io.TeeReader(f, dg)
		}
		scanners[i] = &lineScanner{r: bufio.NewReaderSize(src, cfg.ReadBuffer), dec: decs[i]}
	}

	offsets := make([][]int64, len(specs))
	for i := range offsets {
		offsets[i] = []int64{0}
	}

	var lines []int64
	var linenum int64
	raws := make([][]byte, len(specs))
	decoded := make([]string, len(specs))

	for {
		ended := 0
		for i, sc := range scanners {
			raw, err := sc.next()
			if err == io.EOF {
				ended++
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("indexing %s: %w", specs[i].Path, err)
			}
			raws[i] = raw
		}
		if ended > 0 {
			if ended < len(scanners) {
				return nil, ErrLineCount
			}
			break
		}

		for i, sc := range scanners {
			offsets[i] = append(offsets[i], sc.off)
		}

		if filter != nil {
			for i, raw := range raws {
				s, err := decs[i].decode(decs[i].canon(raw))
				if err != nil {
					return nil, fmt.Errorf("indexing %s line %d: %w", specs[i].Path, linenum, err)
				}
				decoded[i] = s
			}
			if filter(decoded) {
				lines = append(lines, linenum)
			}
		} else {
			lines = append(lines, linenum)
		}
		linenum++
	}

	st := &State{
		Specs:   specs,
		Offsets: offsets,
		Lines:   lines,
	}
	if cfg.Fingerprint != 0 {
		st.Algorithm = cfg.Fingerprint
		st.Sums = make([]string, len(digests))
		for i, dg := range digests {
			st.Sums[i] = dg.sum()
		}
	}
	return st, nil
}
