// Configuration and per-file option handling.
//
// Options carry the caller-facing knobs for Open: per-file decoding options
// (broadcast from a single value or matched one-to-one against the file
// list), the filter predicate, and runtime Config. FileSpec is the resolved
// per-file form that ends up in the persistable State.
package tandem

// Config holds runtime configuration options.
type Config struct {
	ReadBuffer    int  // Buffer size for the indexing scan (default 64KB)
	Fingerprint   int  // Content hash recorded at index time: 0=off, AlgXXHash3, AlgFNV1a, AlgBlake2b
	VerifyRestore bool // Re-hash files on restore and fail on mismatch
}

// FilterFunc decides whether a physical line is externally visible. It
// receives the decoded lines of one lockstep read, one per file in file
// order, terminators included. It runs once per physical line during
// indexing; the lines themselves are not retained afterwards.
type FilterFunc func(lines []string) bool

// Options configures Open. Encoding, Errors and Newline each accept zero
// values (defaults for every file), a single value (applied to every file),
// or exactly one value per file; any other length is ErrOptionCount.
type Options struct {
	Encoding []string
	Errors   []string
	Newline  []string
	Filter   FilterFunc
	Config   Config
}

// FileSpec describes one input file: its path and how its bytes decode.
// Order within a dataset defines the file's position in returned records.
type FileSpec struct {
	Path     string `json:"path"`
	Encoding string `json:"enc,omitempty"`
	Errors   string `json:"err,omitempty"`
	Newline  string `json:"nl,omitempty"`
}

// broadcast expands an option list to one value per file.
func broadcast(vals []string, n int) ([]string, error) {
	switch len(vals) {
	case 0:
		return make([]string, n), nil
	case 1:
		out := make([]string, n)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	case n:
		return vals, nil
	default:
		return nil, ErrOptionCount
	}
}

// resolve builds one FileSpec per path, applying option broadcasting.
func resolve(paths []string, opts Options) ([]FileSpec, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}

	enc, err := broadcast(opts.Encoding, len(paths))
	if err != nil {
		return nil, err
	}
	pol, err := broadcast(opts.Errors, len(paths))
	if err != nil {
		return nil, err
	}
	nl, err := broadcast(opts.Newline, len(paths))
	if err != nil {
		return nil, err
	}

	specs := make([]FileSpec, len(paths))
	for i, p := range paths {
		specs[i] = FileSpec{Path: p, Encoding: enc[i], Errors: pol[i], Newline: nl[i]}
	}
	return specs, nil
}

// withDefaults fills in zero-value Config fields.
func withDefaults(cfg Config) Config {
	if cfg.ReadBuffer == 0 {
		cfg.ReadBuffer = 64 * 1024
	}
	return cfg
}
