// Persistable dataset state and the snapshot codec.
//
// State is pure data: file specs, offset tables, the logical line index,
// and optional content fingerprints. It holds no file handles, so it can
// be serialized, stored, and later turned back into a live Dataset. The
// snapshot format is a short magic/version frame followed by
// zstd-compressed JSON.
package tandem

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// State is the persistable portion of a Dataset. Offsets[k][i] is the byte
// position where physical line i of file k starts; Lines holds the
// physical line numbers that are externally visible, in increasing order.
type State struct {
	Specs     []FileSpec `json:"specs"`
	Offsets   [][]int64  `json:"offsets"`
	Lines     []int64    `json:"lines"`
	Algorithm int        `json:"alg,omitempty"`  // Fingerprint algorithm, 0 when disabled
	Sums      []string   `json:"sums,omitempty"` // One 16 hex char fingerprint per file
}

// snapshotMagic frames serialized snapshots; the trailing byte is the
// format version.
var snapshotMagic = []byte("tandem\x00\x01")

// Shared encoder/decoder: both are documented as safe for concurrent use,
// and construction is expensive enough to amortise across snapshots.
var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	zstdDecoder, _ = zstd.NewReader(nil)
)

// MarshalBinary serializes the state as framed, zstd-compressed JSON.
func (s *State) MarshalBinary() ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(snapshotMagic), len(snapshotMagic)+len(data)/2)
	copy(out, snapshotMagic)
	return zstdEncoder.EncodeAll(data, out), nil
}

// UnmarshalBinary restores a state serialized by MarshalBinary and
// validates its internal consistency.
func (s *State) UnmarshalBinary(data []byte) error {
	if !bytes.HasPrefix(data, snapshotMagic) {
		return fmt.Errorf("%w: bad magic", ErrCorruptSnapshot)
	}
	raw, err := zstdDecoder.DecodeAll(data[len(snapshotMagic):], nil)
	if err != nil {
		return fmt.Errorf("%w: zstd: %v", ErrCorruptSnapshot, err)
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return fmt.Errorf("%w: json: %v", ErrCorruptSnapshot, err)
	}
	if err := st.validate(); err != nil {
		return err
	}
	*s = st
	return nil
}

// WriteSnapshot serializes a state to a file.
func WriteSnapshot(path string, s *State) error {
	data, err := s.MarshalBinary()
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSnapshot loads a state written by WriteSnapshot.
func ReadSnapshot(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var st State
	if err := st.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &st, nil
}

// validate checks the structural invariants a usable state must hold:
// at least one file, one offset table per file, all tables starting at 0
// with equal length and strictly increasing entries, visible line numbers
// strictly increasing and within the physical line count, and fingerprints
// (when present) one per file.
func (s *State) validate() error {
	if len(s.Specs) == 0 {
		return fmt.Errorf("%w: no file specs", ErrCorruptSnapshot)
	}
	if len(s.Offsets) != len(s.Specs) {
		return fmt.Errorf("%w: %d offset tables for %d files", ErrCorruptSnapshot, len(s.Offsets), len(s.Specs))
	}

	var physical int64 = -1
	for k, table := range s.Offsets {
		if len(table) == 0 || table[0] != 0 {
			return fmt.Errorf("%w: offset table %d does not start at 0", ErrCorruptSnapshot, k)
		}
		if physical == -1 {
			physical = int64(len(table)) - 1
		} else if int64(len(table))-1 != physical {
			return fmt.Errorf("%w: offset tables disagree on line count", ErrCorruptSnapshot)
		}
		for i := 1; i < len(table); i++ {
			if table[i] <= table[i-1] {
				return fmt.Errorf("%w: offset table %d not increasing at %d", ErrCorruptSnapshot, k, i)
			}
		}
	}

	var prev int64 = -1
	for _, ln := range s.Lines {
		if ln <= prev || ln >= physical {
			return fmt.Errorf("%w: line index out of order or range", ErrCorruptSnapshot)
		}
		prev = ln
	}

	if len(s.Sums) != 0 && len(s.Sums) != len(s.Specs) {
		return fmt.Errorf("%w: %d fingerprints for %d files", ErrCorruptSnapshot, len(s.Sums), len(s.Specs))
	}
	return nil
}

// clone deep-copies the state so callers and Datasets never alias slices.
func (s *State) clone() *State {
	out := &State{
		Specs:     slices.Clone(s.Specs),
		Offsets:   make([][]int64, len(s.Offsets)),
		Lines:     slices.Clone(s.Lines),
		Algorithm: s.Algorithm,
		Sums:      slices.Clone(s.Sums),
	}
	for i, table := range s.Offsets {
		out.Offsets[i] = slices.Clone(table)
	}
	return out
}

// verify re-hashes every file and compares against the recorded
// fingerprints.
func (s *State) verify(cfg Config) error {
	if s.Algorithm == 0 || len(s.Sums) == 0 {
		return fmt.Errorf("%w: snapshot carries no fingerprints", ErrChecksum)
	}
	for i, spec := range s.Specs {
		sum, err := fingerprint(spec.Path, s.Algorithm, cfg.ReadBuffer)
		if err != nil {
			return err
		}
		if sum != s.Sums[i] {
			return fmt.Errorf("%w: %s", ErrChecksum, spec.Path)
		}
	}
	return nil
}
