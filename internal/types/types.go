package types

import (
	"fmt"
	"time"
)

// Mode selects how file equivalence is decided.
type Mode string

const (
	// ModeHash matches files whose full contents are byte-identical.
	ModeHash Mode = "hash"
	// ModeSimilarity matches image files whose perceptual hashes score
	// at or above the configured threshold.
	ModeSimilarity Mode = "similarity"
)

// IsValid checks if the mode value is valid
func (m Mode) IsValid() bool {
	switch m {
	case ModeHash, ModeSimilarity:
		return true
	}
	return false
}

// KeepPolicy selects which member of a sorted duplicate group survives.
type KeepPolicy string

const (
	KeepFirst KeepPolicy = "first"
	KeepLast  KeepPolicy = "last"
)

// IsValid checks if the keep policy value is valid
func (k KeepPolicy) IsValid() bool {
	switch k {
	case KeepFirst, KeepLast:
		return true
	}
	return false
}

// OrderBy is the criterion used to sort group members before the keep
// policy is applied, and optionally to sort groups for display.
type OrderBy string

const (
	OrderModified OrderBy = "modified"
	OrderCreated  OrderBy = "created"
	OrderName     OrderBy = "name"
)

// IsValid checks if the order criterion is valid
func (o OrderBy) IsValid() bool {
	switch o {
	case OrderModified, OrderCreated, OrderName:
		return true
	}
	return false
}

// Candidate is a regular file observed during listing. Candidates are
// immutable once produced; later stages only read them.
type Candidate struct {
	Path      string
	Size      int64
	ModTime   time.Time
	CreatedAt time.Time

	// Index is the candidate's position in listing order. Workers finish
	// in arbitrary order, so grouping re-sorts members by Index to keep
	// results reproducible across thread counts.
	Index int
}

// ErrorKind classifies a per-file failure.
type ErrorKind string

const (
	// ErrListing covers entries that could not be inspected during
	// directory traversal.
	ErrListing ErrorKind = "listing"
	// ErrRead covers files that could not be opened or read while
	// fingerprinting.
	ErrRead ErrorKind = "read"
	// ErrDecode covers files that are not decodable images in
	// similarity mode.
	ErrDecode ErrorKind = "decode"
	// ErrDelete covers files the filesystem refused to remove.
	ErrDelete ErrorKind = "delete"
)

// IsValid checks if the error kind is valid
func (k ErrorKind) IsValid() bool {
	switch k {
	case ErrListing, ErrRead, ErrDecode, ErrDelete:
		return true
	}
	return false
}

// FileError records a failure against a single path. Whether it aborts
// the run or is merely collected is decided by the caller's error policy,
// not here.
type FileError struct {
	Path string
	Kind ErrorKind
	Err  error
}

// NewFileError wraps err as a FileError for path.
func NewFileError(kind ErrorKind, path string, err error) *FileError {
	return &FileError{Path: path, Kind: kind, Err: err}
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s error for %s: %v", e.Kind, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}
