// Per-file line decoding: character encoding, decode error policy, and
// newline policy.
//
// Line boundaries are always found on raw bytes so that offset tables stay
// valid for positioned reads; decoding applies to each line's bytes after
// the fact. This restricts supported encodings to ASCII-compatible ones
// (UTF-8 and the 8-bit charmaps): an encoding whose code units can embed
// 0x0A bytes, such as UTF-16, would be mis-indexed and is rejected at
// construction with ErrEncoding.
package tandem

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// Decode error policies, mirroring the usual strict/replace/ignore triple.
const (
	ErrorsReplace = "replace" // Substitute U+FFFD for undecodable bytes (default)
	ErrorsStrict  = "strict"  // Fail the read with ErrDecode
	ErrorsIgnore  = "ignore"  // Drop undecodable bytes
)

// Newline policies. The zero value is NewlineAuto: \n, \r\n, and lone \r
// all terminate a line and the terminator is returned as \n. The literal
// policies terminate only on their exact byte sequence and return it as-is.
const (
	NewlineAuto = ""
	NewlineLF   = "\n"
	NewlineCR   = "\r"
	NewlineCRLF = "\r\n"
)

// decoder is the resolved decoding pipeline for one file.
type decoder struct {
	enc     encoding.Encoding // nil means UTF-8 passthrough
	errors  string
	newline string
}

// newDecoder validates a FileSpec's decoding options and resolves the
// encoding by IANA name.
func newDecoder(spec FileSpec) (*decoder, error) {
	switch spec.Errors {
	case "", ErrorsReplace, ErrorsStrict, ErrorsIgnore:
	default:
		return nil, fmt.Errorf("%w: errors=%q", ErrPolicy, spec.Errors)
	}
	switch spec.Newline {
	case NewlineAuto, NewlineLF, NewlineCR, NewlineCRLF:
	default:
		return nil, fmt.Errorf("%w: newline=%q", ErrPolicy, spec.Newline)
	}

	d := &decoder{errors: spec.Errors, newline: spec.Newline}

	name := spec.Encoding
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return d, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("%w: %q", ErrEncoding, name)
	}

	// ASCII compatibility probe: newline and a plain ASCII byte must
	// encode to themselves, otherwise byte-level line scanning is unsound.
	probe, err := enc.NewEncoder().Bytes([]byte("\r\nA"))
	if err != nil || !bytes.Equal(probe, []byte("\r\nA")) {
		return nil, fmt.Errorf("%w: %q is not ASCII-compatible", ErrEncoding, name)
	}

	d.enc = enc
	return d, nil
}

// canon rewrites the line terminator according to the newline policy.
// Only NewlineAuto translates: \r\n and lone \r become \n. The literal
// policies return the bytes untouched.
func (d *decoder) canon(raw []byte) []byte {
	if d.newline != NewlineAuto {
		return raw
	}
	n := len(raw)
	switch {
	case n >= 2 && raw[n-2] == '\r' && raw[n-1] == '\n':
		return append(raw[:n-2:n-2], '\n')
	case n >= 1 && raw[n-1] == '\r':
		return append(raw[:n-1:n-1], '\n')
	}
	return raw
}

// decode converts one line's raw bytes to a string, applying the encoding
// and then the error policy. Undecodable input surfaces as U+FFFD from the
// underlying decoder; the policy decides whether that fails the read, stays,
// or is stripped.
func (d *decoder) decode(raw []byte) (string, error) {
	var s string
	if d.enc == nil {
		s = string(raw)
	} else {
		out, err := d.enc.NewDecoder().Bytes(raw)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrDecode, err)
		}
		s = string(out)
	}

	switch d.errors {
	case ErrorsStrict:
		if !utf8.ValidString(s) || strings.ContainsRune(s, utf8.RuneError) {
			return "", fmt.Errorf("%w: invalid bytes under strict policy", ErrDecode)
		}
	case ErrorsIgnore:
		s = strings.ToValidUTF8(s, "")
		s = strings.ReplaceAll(s, string(utf8.RuneError), "")
	default: // replace
		if !utf8.ValidString(s) {
			s = strings.ToValidUTF8(s, string(utf8.RuneError))
		}
	}
	return s, nil
}

// decoders resolves one decoder per FileSpec.
func decoders(specs []FileSpec) ([]*decoder, error) {
	out := make([]*decoder, len(specs))
	for i, spec := range specs {
		d, err := newDecoder(spec)
		if err != nil {
			return nil, err
		}
		out[i] = d
	}
	return out, nil
}
