// Package tandem provides line-indexed random access to one or more text
// files read in lockstep. A single indexing pass records the byte offset of
// every line boundary in every file, after which any record can be fetched
// with one positioned read per file, never a rescan, regardless of file
// size. When more than one file is given, all files must contain the same
// number of lines and a record is the tuple of corresponding lines, one per
// file.
//
// An optional filter predicate, evaluated once per line during indexing,
// narrows the externally visible records while the offset tables stay keyed
// to the original physical line numbers.
//
// The offset index is plain data and can be snapshotted, persisted, and
// restored independently of open file handles. Restoring a snapshot against
// files that have been modified since indexing yields undefined reads; the
// optional content fingerprint (Config.Fingerprint) exists to detect this.
package tandem

import "errors"

// Sentinel errors for programmatic handling. Construction-time conditions
// (ErrNoFiles, ErrOptionCount, ErrPolicy, ErrEncoding, ErrLineCount) mean no
// usable Dataset was produced. Per-call conditions (ErrRange, ErrClosed,
// ErrDecode) leave the Dataset usable for subsequent calls.
var (
	ErrNoFiles         = errors.New("at least one text file must be specified")
	ErrOptionCount     = errors.New("option count does not match file count")
	ErrPolicy          = errors.New("unknown decode policy")
	ErrEncoding        = errors.New("unsupported encoding")
	ErrLineCount       = errors.New("number of lines in files does not match")
	ErrRange           = errors.New("record index out of range")
	ErrClosed          = errors.New("dataset is closed")
	ErrDecode          = errors.New("line decoding failed")
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
	ErrChecksum        = errors.New("content fingerprint mismatch")
)
