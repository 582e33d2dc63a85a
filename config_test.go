// Option broadcasting and configuration tests.
//
// Encoding, Errors and Newline each accept zero, one, or exactly
// file-count values. These tests verify that broadcasting applies a single
// value to every file, that per-file lists are used positionally, that any
// other length fails construction with ErrOptionCount, and that Config
// zero values receive defaults.
package tandem

import (
	"errors"
	"testing"
)

// TestOptionBroadcastSingle verifies that one option value is applied to
// every file. If broadcasting were wrong, only the first file would decode
// with the requested encoding and the rest would silently fall back to
// UTF-8.
func TestOptionBroadcastSingle(t *testing.T) {
	a := writeFile(t, "\xe9\n")
	b := writeFile(t, "\xe8\n")

	d, err := Open([]string{a, b}, Options{Encoding: []string{"ISO-8859-1"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	rec, err := d.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if rec[0] != "é\n" || rec[1] != "è\n" {
		t.Errorf("Get(0) = %q, want [é\\n è\\n]", rec)
	}
}

// TestOptionPerFile verifies that a full-length option list is applied
// positionally: here the first file decodes Latin-1 while the second stays
// UTF-8.
func TestOptionPerFile(t *testing.T) {
	a := writeFile(t, "\xe9\n")
	b := writeFile(t, "é\n") // already UTF-8

	d, err := Open([]string{a, b}, Options{Encoding: []string{"ISO-8859-1", "UTF-8"}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	rec, err := d.Get(0)
	if err != nil {
		t.Fatalf("Get(0): %v", err)
	}
	if rec[0] != "é\n" || rec[1] != "é\n" {
		t.Errorf("Get(0) = %q", rec)
	}
}

// TestOptionCountMismatch verifies that an option list that is neither
// empty, singular, nor file-count long aborts construction. Accepting it
// would leave some files with unspecified decoding.
func TestOptionCountMismatch(t *testing.T) {
	a := writeFile(t, "x\n")
	b := writeFile(t, "y\n")
	c := writeFile(t, "z\n")
	paths := []string{a, b, c}

	tests := []struct {
		name string
		opts Options
	}{
		{"encoding", Options{Encoding: []string{"UTF-8", "UTF-8"}}},
		{"errors", Options{Errors: []string{ErrorsStrict, ErrorsStrict}}},
		{"newline", Options{Newline: []string{NewlineLF, NewlineLF}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Open(paths, tt.opts); !errors.Is(err, ErrOptionCount) {
				t.Errorf("Open = %v, want ErrOptionCount", err)
			}
		})
	}
}

// TestConfigReadBufferDefault verifies the 64KB default scan buffer. The
// buffer only affects indexing throughput, never correctness, but the
// default should be stable.
func TestConfigReadBufferDefault(t *testing.T) {
	d := openTestDataset(t, "x\n")

	if d.config.ReadBuffer != 64*1024 {
		t.Errorf("ReadBuffer = %d, want %d", d.config.ReadBuffer, 64*1024)
	}
}

// TestConfigReadBufferCustom verifies that a custom buffer size overrides
// the default and the dataset remains fully functional.
func TestConfigReadBufferCustom(t *testing.T) {
	d, err := Open([]string{writeFile(t, "x\ny\n")}, Options{
		Config: Config{ReadBuffer: 128 * 1024},
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	if d.config.ReadBuffer != 128*1024 {
		t.Errorf("ReadBuffer = %d, want %d", d.config.ReadBuffer, 128*1024)
	}
	if got, _ := d.Line(1); got != "y\n" {
		t.Errorf("Line(1) = %q", got)
	}
}

// TestConfigFingerprintOffByDefault verifies that no fingerprints are
// recorded unless requested. Hashing every input on construction would be
// a silent cost change for existing users.
func TestConfigFingerprintOffByDefault(t *testing.T) {
	d := openTestDataset(t, "x\n")

	if d.state.Algorithm != 0 || len(d.state.Sums) != 0 {
		t.Errorf("fingerprints recorded without opt-in: alg=%d sums=%v", d.state.Algorithm, d.state.Sums)
	}
}
