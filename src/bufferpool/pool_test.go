package bufferpool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avadhanam/relbuf/src/pagefile"
)

func newTestPool(t *testing.T, n int, strategy Strategy) *Pool {
	t.Helper()
	p, err := New(pagefile.NewMemory(), n, strategy)
	require.NoError(t, err)
	return p
}

func pinUnpin(t *testing.T, p *Pool, id PageID) {
	t.Helper()
	h, err := p.Pin(id)
	require.NoError(t, err)
	require.NoError(t, p.Unpin(h))
}

// S1 — FIFO eviction order.
func TestFIFOEvictionOrder(t *testing.T) {
	p := newTestPool(t, 3, FIFO)
	pinUnpin(t, p, 0)
	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)

	_, err := p.Pin(3)
	require.NoError(t, err)
	require.NoError(t, p.Unpin(Handle{PageID: 3}))

	assert.Equal(t, []PageID{3, 1, 2}, p.FrameContents())
	assert.Equal(t, 4, p.ReadIO())
	assert.Equal(t, 0, p.WriteIO())
}

// S2 — LRU retains recently used.
func TestLRURetainsRecentlyUsed(t *testing.T) {
	p := newTestPool(t, 3, LRU)
	pinUnpin(t, p, 0)
	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)
	pinUnpin(t, p, 0) // refresh P0's lastUsedTime

	_, err := p.Pin(3)
	require.NoError(t, err)

	assert.Equal(t, []PageID{0, 3, 2}, p.FrameContents())
}

// S3 — Dirty write-back on eviction.
func TestDirtyWriteBackOnEviction(t *testing.T) {
	p := newTestPool(t, 3, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	for i := range h.Bytes {
		h.Bytes[i] = 0xAA
	}
	require.NoError(t, p.MarkDirty(h))
	require.NoError(t, p.Unpin(h))

	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)
	pinUnpin(t, p, 3) // forces P0 out

	assert.GreaterOrEqual(t, p.WriteIO(), 1)

	buf := make([]byte, PageSize)
	require.NoError(t, p.file.ReadBlock(0, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0xAA), b)
	}
}

// S4 — Pinned page is never victim.
func TestPinnedPageNeverVictim(t *testing.T) {
	p := newTestPool(t, 3, FIFO)
	h0, err := p.Pin(0) // stays pinned
	require.NoError(t, err)

	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)

	_, err = p.Pin(3)
	require.NoError(t, err)

	assert.Contains(t, p.FrameContents(), PageID(0))
	assert.NotContains(t, p.FrameContents(), PageID(1))
	assert.Equal(t, PageID(0), h0.PageID)
}

// S5 — Teardown refuses pinned pages.
func TestTeardownRefusesPinnedPages(t *testing.T) {
	p := newTestPool(t, 3, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)

	err = p.Close()
	assert.ErrorIs(t, err, ErrAllPinned)

	require.NoError(t, p.Unpin(h))
	require.NoError(t, p.Close())

	assert.Equal(t, 1, p.ReadIO())
	assert.Equal(t, 0, p.WriteIO())
}

// S6 — unpin of an already-unpinned page.
func TestUnpinAlreadyUnpinned(t *testing.T) {
	p := newTestPool(t, 3, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	require.NoError(t, p.Unpin(h))

	err = p.Unpin(h)
	assert.ErrorIs(t, err, ErrAllPinned)
	assert.Equal(t, 0, p.FixCounts()[0])
}

func TestPinNegativePageIDFails(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	_, err := p.Pin(-1)
	assert.ErrorIs(t, err, ErrNonExistingPage)
}

func TestMarkDirtyUnpinForceMissingPage(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h := Handle{PageID: 99}
	assert.ErrorIs(t, p.MarkDirty(h), ErrKeyNotFound)
	assert.ErrorIs(t, p.Unpin(h), ErrKeyNotFound)
	assert.ErrorIs(t, p.Force(h), ErrKeyNotFound)
}

func TestPinExtendsFileAndZeroFills(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h, err := p.Pin(5)
	require.NoError(t, err)
	for _, b := range h.Bytes {
		assert.Equal(t, byte(0), b)
	}
}

func TestWriteThenReadRoundTrip(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	copy(h.Bytes, []byte("hello world"))
	require.NoError(t, p.MarkDirty(h))
	require.NoError(t, p.Unpin(h))

	// Evict P0 by touching N other pages.
	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)

	h2, err := p.Pin(0)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(h2.Bytes[:11]))
}

func TestForceWritesImmediately(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	copy(h.Bytes, []byte("forced"))
	require.NoError(t, p.MarkDirty(h))
	require.NoError(t, p.Force(h))

	buf := make([]byte, PageSize)
	require.NoError(t, p.file.ReadBlock(0, buf))
	assert.Equal(t, "forced", string(buf[:6]))
	assert.False(t, p.DirtyFlags()[0])
}

func TestMarkDirtyIdempotent(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	require.NoError(t, p.MarkDirty(h))
	require.NoError(t, p.MarkDirty(h))
	assert.True(t, p.DirtyFlags()[0])
}

func TestPoolSizeOnePinsAndEvicts(t *testing.T) {
	p := newTestPool(t, 1, FIFO)
	h0, err := p.Pin(0)
	require.NoError(t, err)
	// Pinning while held should fail: only frame is pinned.
	_, err = p.Pin(1)
	assert.ErrorIs(t, err, ErrAllPinned)

	require.NoError(t, p.Unpin(h0))
	_, err = p.Pin(1)
	require.NoError(t, err)
	assert.Equal(t, []PageID{1}, p.FrameContents())
}

func TestFlushAllSkipsPinnedDirtyFrames(t *testing.T) {
	p := newTestPool(t, 2, FIFO)
	h, err := p.Pin(0)
	require.NoError(t, err)
	require.NoError(t, p.MarkDirty(h))

	require.NoError(t, p.FlushAll())
	assert.True(t, p.DirtyFlags()[0], "pinned dirty frame must not be flushed")
	assert.Equal(t, 0, p.WriteIO())

	require.NoError(t, p.Unpin(h))
	require.NoError(t, p.FlushAll())
	assert.False(t, p.DirtyFlags()[0])
	assert.Equal(t, 1, p.WriteIO())
}

func TestRecentActivityTracksPins(t *testing.T) {
	p, err := New(pagefile.NewMemory(), 3, LRU, WithRecencyWindow(2))
	require.NoError(t, err)
	pinUnpin(t, p, 0)
	pinUnpin(t, p, 1)
	pinUnpin(t, p, 2)
	assert.Equal(t, []PageID{1, 2}, p.RecentActivity())
}

func TestUninitializedConstruction(t *testing.T) {
	_, err := New(pagefile.NewMemory(), 0, FIFO)
	assert.ErrorIs(t, err, ErrUninitialized)

	_, err = New(nil, 3, FIFO)
	assert.ErrorIs(t, err, ErrUninitialized)

	_, err = Open("", 3, FIFO)
	assert.ErrorIs(t, err, ErrUninitialized)
}
