// Package fingerprint computes content signatures for candidate files
// and runs them through a bounded worker pool.
//
// Three signature functions are provided: a full-content SHA-256 for
// exact matching, a cheap xxhash over the leading bytes used to thin out
// same-size candidates before the full pass, and a perceptual image hash
// for similarity matching.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"github.com/corona10/goimagehash"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/dupetools/dupes/internal/types"
)

// quickHashBytes is how much of a file the quick pass reads.
const quickHashBytes = 64 * 1024

// Perceptual hash geometry. 16x16 gives a 256-bit gradient signature,
// fine enough that the default threshold of 95 tolerates about 12
// differing bits.
const (
	imageHashWidth  = 16
	imageHashHeight = 16
)

// Fingerprint pairs a candidate with its computed signature. Exactly one
// of Digest and Image is set, depending on the function that produced it.
type Fingerprint struct {
	Candidate types.Candidate

	// Digest is a hex content hash: full-stream SHA-256, or xxhash64 of
	// the leading bytes from the quick pass.
	Digest string

	// Image is the perceptual hash in similarity mode.
	Image *goimagehash.ExtImageHash
}

// Func computes one candidate's fingerprint. Implementations report
// failures as *types.FileError so callers can classify them.
type Func func(ctx context.Context, c types.Candidate) (Fingerprint, error)

// SHA256File streams the whole file through SHA-256.
func SHA256File(_ context.Context, c types.Candidate) (Fingerprint, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, err)
	}

	return Fingerprint{Candidate: c, Digest: fmt.Sprintf("%x", h.Sum(nil))}, nil
}

// QuickHash hashes the first 64 KiB with xxhash64. It is not a duplicate
// test by itself. Files whose quick hashes differ cannot be identical,
// which is all the pre-filter pass needs.
func QuickHash(_ context.Context, c types.Candidate) (Fingerprint, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, err)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.CopyN(h, f, quickHashBytes); err != nil && err != io.EOF {
		return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, err)
	}

	return Fingerprint{Candidate: c, Digest: fmt.Sprintf("%016x", h.Sum64())}, nil
}

// ImageHash decodes the file as an image and computes a 16x16 difference
// hash. Files that do not decode produce a decode error rather than a
// silent skip.
func ImageHash(_ context.Context, c types.Candidate) (Fingerprint, error) {
	f, err := os.Open(c.Path)
	if err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrRead, c.Path, err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrDecode, c.Path, err)
	}

	hash, err := goimagehash.ExtDifferenceHash(img, imageHashWidth, imageHashHeight)
	if err != nil {
		return Fingerprint{}, types.NewFileError(types.ErrDecode, c.Path, err)
	}

	return Fingerprint{Candidate: c, Image: hash}, nil
}

// Score rates how alike two perceptual hashes are on a 0-100 scale.
// 100 means every bit matches; the scale falls linearly with Hamming
// distance.
func Score(a, b *goimagehash.ExtImageHash) (float64, error) {
	dist, err := a.Distance(b)
	if err != nil {
		return 0, fmt.Errorf("comparing image hashes: %w", err)
	}
	return 100 * (1 - float64(dist)/float64(a.Bits())), nil
}
