// Content fingerprints for snapshot integrity.
//
// A restored snapshot is only meaningful if the underlying files are
// byte-identical to when it was captured. Fingerprinting is opt-in: when
// Config.Fingerprint names an algorithm, a 16 hex character hash of each
// file's full content is recorded in the State during indexing, and
// Config.VerifyRestore makes restore re-hash the files and fail with
// ErrChecksum on any mismatch.
package tandem

import (
	"encoding/hex"
	"hash"
	"hash/fnv"
	"io"
	"os"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint algorithm constants.
const (
	AlgXXHash3 = 1 // Default, fastest
	AlgFNV1a   = 2 // No external dependencies
	AlgBlake2b = 3 // Best distribution
)

// digest accumulates one file's content hash during the indexing scan.
type digest struct {
	h hash.Hash
}

func newDigest(alg int) (*digest, error) {
	switch alg {
	case AlgXXHash3:
		return &digest{h: xxh3.New()}, nil
	case AlgFNV1a:
		return &digest{h: fnv.New64a()}, nil
	case AlgBlake2b:
		h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
		return &digest{h: h}, nil
	default:
		return nil, ErrPolicy
	}
}

func (d *digest) Write(p []byte) (int, error) {
	return d.h.Write(p)
}

func (d *digest) sum() string {
	return hex.EncodeToString(d.h.Sum(nil))
}

// fingerprint hashes a file's entire content with the given algorithm.
// Used on the restore path; the indexing path hashes incrementally.
func fingerprint(path string, alg int, bufsize int) (string, error) {
	dg, err := newDigest(alg)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	buf := make([]byte, bufsize)
	if _, err := io.CopyBuffer(dg, f, buf); err != nil {
		return "", err
	}
	return dg.sum(), nil
}
