// Package pagefile is the thin block-storage collaborator the buffer pool
// consumes. It mirrors the storage manager in original_source/storage_mgr.c:
// a page file is an array of fixed-size blocks at offsets 0, PAGE_SIZE,
// 2*PAGE_SIZE, ... with no pool-owned header or free list.
package pagefile

import "github.com/pkg/errors"

// PageSize is the fixed block size shared with the buffer pool.
const PageSize = 4096

// ErrOutOfRange is returned by ReadBlock/WriteBlock when pageIndex falls
// outside the file's current length.
var ErrOutOfRange = errors.New("pagefile: block index out of range")

// File is the block-layer interface the buffer pool core depends on. It is
// deliberately minimal: random-access page I/O and capacity growth, nothing
// else. Implementations must not buffer partial pages.
type File interface {
	// Length reports the file's current size in whole pages.
	Length() (int, error)
	// ReadBlock reads exactly PageSize bytes at pageIndex*PageSize into buf.
	// buf must be at least PageSize bytes. Fails on out-of-range pageIndex.
	ReadBlock(pageIndex int, buf []byte) error
	// WriteBlock writes exactly PageSize bytes from buf at
	// pageIndex*PageSize. pageIndex must be within the current length.
	WriteBlock(pageIndex int, buf []byte) error
	// EnsureCapacity grows the file, zero-filling, so its length is at
	// least requiredPages.
	EnsureCapacity(requiredPages int) error
	// Close releases the file's resources.
	Close() error
}
