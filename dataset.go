// Core dataset type and lifecycle operations.
//
// Dataset pairs a pure-data State with the transient resources needed to
// serve reads: one open handle per file and the resolved decoders. A single
// mutex guards the handle set so that a multi-file record is always read as
// one atomic unit and so that Close or Restore can never swap handles out
// from under an in-flight Get.
package tandem

import (
	"os"
	"sync"
)

// Dataset provides random access to the records of one or more
// line-aligned text files. Safe for concurrent use by multiple goroutines.
type Dataset struct {
	state  *State
	decs   []*decoder
	config Config
	mu     sync.Mutex
	files  []*os.File // nil when closed
}

// Open indexes the given files and returns a ready Dataset. All files are
// scanned once, in lockstep; they must contain the same number of lines.
// Files are assumed static once indexed; modifying them afterwards makes
// offsets stale and reads undefined.
func Open(paths []string, opts Options) (*Dataset, error) {
	cfg := withDefaults(opts.Config)

	specs, err := resolve(paths, opts)
	if err != nil {
		return nil, err
	}

	st, err := buildState(specs, opts.Filter, cfg)
	if err != nil {
		return nil, err
	}
	return fromState(st, cfg)
}

// FromState rebuilds a Dataset from a previously captured State, reopening
// handles against the state's file specs. The caller is responsible for the
// underlying files being byte-identical to when the state was captured;
// set Config.VerifyRestore to have recorded fingerprints checked.
func FromState(st *State, cfg Config) (*Dataset, error) {
	if st == nil {
		return nil, ErrCorruptSnapshot
	}
	if err := st.validate(); err != nil {
		return nil, err
	}
	return fromState(st.clone(), withDefaults(cfg))
}

func fromState(st *State, cfg Config) (*Dataset, error) {
	decs, err := decoders(st.Specs)
	if err != nil {
		return nil, err
	}
	if cfg.VerifyRestore {
		if err := st.verify(cfg); err != nil {
			return nil, err
		}
	}

	d := &Dataset{state: st, decs: decs, config: cfg}
	if err := d.Open(); err != nil {
		return nil, err
	}
	return d, nil
}

// Len returns the number of records visible through the dataset: the
// filtered count when a filter was supplied, otherwise the physical line
// count.
func (d *Dataset) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Len()
}

// Get returns record i as one decoded line per file, in file order,
// terminators included. Out-of-range indices fail with ErrRange before any
// I/O. The whole multi-file read runs under the dataset mutex so concurrent
// calls can never splice lines from different records, and a concurrent
// Restore can never swap the state out mid-read.
func (d *Dataset) Get(i int) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	phys, err := d.state.physical(i)
	if err != nil {
		return nil, err
	}
	if d.files == nil {
		return nil, ErrClosed
	}

	out := make([]string, len(d.files))
	for k, f := range d.files {
		start := d.state.Offsets[k][phys]
		end := d.state.Offsets[k][phys+1]
		raw, err := lineAt(f, start, end-start)
		if err != nil {
			return nil, err
		}
		s, err := d.decs[k].decode(d.decs[k].canon(raw))
		if err != nil {
			return nil, err
		}
		out[k] = s
	}
	return out, nil
}

// Line is the single-file convenience form of Get, returning the record's
// line from the first file. Most callers with one input file want this.
func (d *Dataset) Line(i int) (string, error) {
	rec, err := d.Get(i)
	if err != nil {
		return "", err
	}
	return rec[0], nil
}

// Open opens one handle per file. Idempotent: a no-op when handles are
// already open. Called automatically on construction and restore; callers
// only need it to revive a Dataset after an explicit Close.
func (d *Dataset) Open() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.openLocked()
}

func (d *Dataset) openLocked() error {
	if d.files != nil {
		return nil
	}
	files := make([]*os.File, len(d.state.Specs))
	for i, spec := range d.state.Specs {
		f, err := os.Open(spec.Path)
		if err != nil {
			for _, g := range files[:i] {
				g.Close()
			}
			return err
		}
		files[i] = f
	}
	d.files = files
	return nil
}

// Close closes all handles. Idempotent, and always returns nil: individual
// close failures are swallowed so one bad handle never prevents releasing
// the rest. The indexed state survives; Open revives the dataset.
func (d *Dataset) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
	return nil
}

func (d *Dataset) closeLocked() {
	for _, f := range d.files {
		f.Close()
	}
	d.files = nil
}

// Snapshot captures the persistable portion of the dataset. The returned
// State shares nothing with the Dataset and holds no handles; it can be
// serialized with MarshalBinary or WriteSnapshot.
func (d *Dataset) Snapshot() *State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.clone()
}

// Restore closes any open handles, adopts the given state, and reopens
// handles against its file specs. The dataset's Config (including
// VerifyRestore) carries over.
func (d *Dataset) Restore(st *State) error {
	if st == nil {
		return ErrCorruptSnapshot
	}
	if err := st.validate(); err != nil {
		return err
	}
	decs, err := decoders(st.Specs)
	if err != nil {
		return err
	}
	if d.config.VerifyRestore {
		if err := st.verify(d.config); err != nil {
			return err
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.closeLocked()
	d.state = st.clone()
	d.decs = decs
	return d.openLocked()
}
