package bufferpool

import "github.com/pkg/errors"

// Sentinel errors corresponding to the taxonomy in spec.md §7. Callers can
// match them with errors.Is; I/O failures from the page file are wrapped
// with github.com/pkg/errors and propagate the underlying error verbatim
// underneath the wrap.
var (
	// ErrUninitialized covers invalid construction arguments: empty file
	// name, non-positive frame count, or a nil page file.
	ErrUninitialized = errors.New("bufferpool: uninitialized handle")
	// ErrNonExistingPage is returned by Pin for a negative page id.
	ErrNonExistingPage = errors.New("bufferpool: non-existing page")
	// ErrAllPinned covers a Pin miss with no evictable frame, teardown
	// with outstanding pins, and unpin of an already-zero pin count.
	ErrAllPinned = errors.New("bufferpool: all frames pinned")
	// ErrKeyNotFound is returned when MarkDirty/Unpin/Force target a
	// page that is not resident.
	ErrKeyNotFound = errors.New("bufferpool: key not found")
	// ErrAllocationFailure covers frame buffer or management allocation
	// failures. Go's allocator panics rather than returning on OOM, and a
	// non-positive frame count is reported as ErrUninitialized, so no
	// operation in this package returns it.
	ErrAllocationFailure = errors.New("bufferpool: allocation failure")
)
