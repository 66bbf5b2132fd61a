// Package bufferpool implements a fixed-size, single-threaded, page-oriented
// buffer pool: a bounded set of frames mediating between pinning clients and
// a page file. It is grounded on the replacement algorithm in
// original_source/buffer_mgr.c (pinPage's FIFO/LRU victim selection) and
// structured the way teacher's src/bufferpool/library.go organizes a frame
// pool, a pluggable eviction strategy, and a pool that owns both.
package bufferpool

import "github.com/avadhanam/relbuf/src/pagefile"

// PageSize is the fixed page size shared with the page file layer.
const PageSize = pagefile.PageSize

// PageID identifies a page within a page file.
type PageID int

// NoPage is the sentinel value marking an empty frame.
const NoPage PageID = -1

// Handle is returned to clients by Pin. Bytes aliases the frame's buffer
// for as long as the client holds at least one pin on PageID; it must not
// be retained past the matching Unpin.
type Handle struct {
	PageID PageID
	Bytes  []byte
}
