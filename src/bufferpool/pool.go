package bufferpool

import (
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/avadhanam/relbuf/src/metrics"
	"github.com/avadhanam/relbuf/src/pagefile"
	"github.com/avadhanam/relbuf/src/recency"
)

// Pool is a fixed-size array of frames fronting one page file. It is
// single-threaded: spec.md §5 assumes at most one caller is inside any
// public operation at a time. Wrap a Pool in a single mutex for
// multi-threaded use; relbuf does not do per-frame locking.
type Pool struct {
	frames   []*frame
	strategy Strategy
	pol      policy
	file     pagefile.File

	time    int64
	readIO  int64
	writeIO int64

	log     zerolog.Logger
	metrics *metrics.Collector
	recent  *recency.Stack[PageID]
}

// Option configures optional ambient behavior on construction.
type Option func(*Pool)

// WithLogger attaches a structured logger for diagnostic events. The
// default is a disabled logger: the core never requires logging to
// operate correctly, mirroring spec.md §7 ("a diagnostic message may be
// emitted but the code is always returned").
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pool) { p.log = log }
}

// WithMetrics attaches a Prometheus collector updated on every physical
// read/write and pin/unpin.
func WithMetrics(c *metrics.Collector) Option {
	return func(p *Pool) { p.metrics = c }
}

// WithRecencyWindow bounds the diagnostic recent-activity trail returned
// by RecentActivity. cap <= 0 means unbounded.
func WithRecencyWindow(cap int) Option {
	return func(p *Pool) { p.recent = recency.New[PageID](cap) }
}

// Open opens fileName via the disk page file implementation and
// constructs a Pool over it. The file must already exist; use
// pagefile.Create first if it does not (spec.md §4.2.1).
func Open(fileName string, n int, strategy Strategy, opts ...Option) (*Pool, error) {
	if fileName == "" {
		return nil, ErrUninitialized
	}
	f, err := pagefile.Open(fileName, zerolog.Nop())
	if err != nil {
		return nil, err
	}
	p, err := New(f, n, strategy, opts...)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return p, nil
}

// New constructs a Pool of n frames, all empty, over an already-open page
// file. Construction never reads from file beyond its current length.
func New(file pagefile.File, n int, strategy Strategy, opts ...Option) (*Pool, error) {
	if file == nil || n < 1 {
		return nil, ErrUninitialized
	}

	frames := make([]*frame, n)
	for i := range frames {
		frames[i] = newFrame()
	}

	p := &Pool{
		frames:   frames,
		strategy: strategy,
		pol:      policyFor(strategy),
		file:     file,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// frameByPage returns the resident frame holding pageID, or nil.
func (p *Pool) frameByPage(id PageID) *frame {
	for _, f := range p.frames {
		if f.pageID == id {
			return f
		}
	}
	return nil
}

// Pin brings pageID into the pool (if not already resident) and
// increments its pin count, returning a handle whose Bytes alias the
// frame's buffer for as long as the caller holds the pin. See spec.md
// §4.2.2 for the exact ordering this follows.
func (p *Pool) Pin(pageID PageID) (Handle, error) {
	if pageID < 0 {
		return Handle{}, ErrNonExistingPage
	}
	p.time++

	length, err := p.file.Length()
	if err != nil {
		return Handle{}, errors.Wrap(err, "bufferpool: pin")
	}
	if int(pageID) >= length {
		if err := p.file.EnsureCapacity(int(pageID) + 1); err != nil {
			return Handle{}, errors.Wrap(err, "bufferpool: pin: grow file")
		}
	}

	if f := p.frameByPage(pageID); f != nil {
		f.pinCount++
		f.lastUsedTime = p.time
		p.touchMetricsHit()
		if f.pinCount == 1 {
			p.touchMetricsPinned(1)
		}
		p.touchRecent(pageID)
		return Handle{PageID: pageID, Bytes: f.bytes}, nil
	}

	victimIdx, ok := selectVictim(p.frames, p.pol)
	if !ok {
		return Handle{}, ErrAllPinned
	}
	victim := p.frames[victimIdx]

	if !victim.empty() && victim.dirty {
		if err := p.file.WriteBlock(int(victim.pageID), victim.bytes); err != nil {
			return Handle{}, errors.Wrapf(err, "bufferpool: pin: write back page %d", victim.pageID)
		}
		victim.dirty = false
		p.writeIO++
		p.touchMetricsWrite()
	}
	if !victim.empty() {
		p.log.Debug().Int("victim_page", int(victim.pageID)).Int("new_page", int(pageID)).Msg("evicting frame")
		p.touchMetricsEvict()
	}

	if err := p.file.ReadBlock(int(pageID), victim.bytes); err != nil {
		// spec.md Open Questions: a failed physical read leaves the
		// frame reset to Empty rather than stale, to preserve
		// invariant 1 (a non-empty frame's bytes are authoritative).
		victim.reset()
		return Handle{}, errors.Wrapf(err, "bufferpool: pin: read page %d", pageID)
	}
	p.readIO++
	p.touchMetricsMiss()

	victim.pageID = pageID
	victim.pinCount = 1
	victim.dirty = false
	victim.loadTime = p.time
	victim.lastUsedTime = p.time
	p.touchMetricsPinned(1)
	p.touchRecent(pageID)

	return Handle{PageID: pageID, Bytes: victim.bytes}, nil
}

// Unpin decrements the pin count on handle.PageID. Does not update
// lastUsedTime — only Pin does.
func (p *Pool) Unpin(handle Handle) error {
	f := p.frameByPage(handle.PageID)
	if f == nil {
		return ErrKeyNotFound
	}
	if f.pinCount <= 0 {
		return ErrAllPinned
	}
	f.pinCount--
	if f.pinCount == 0 {
		p.touchMetricsPinned(-1)
	}
	return nil
}

// MarkDirty marks handle.PageID's frame dirty without writing it.
func (p *Pool) MarkDirty(handle Handle) error {
	f := p.frameByPage(handle.PageID)
	if f == nil {
		return ErrKeyNotFound
	}
	f.dirty = true
	return nil
}

// Force writes handle.PageID's frame to disk unconditionally — dirty or
// not, matching original_source/buffer_mgr.c's forcePage — and clears
// dirty.
func (p *Pool) Force(handle Handle) error {
	f := p.frameByPage(handle.PageID)
	if f == nil {
		return ErrKeyNotFound
	}
	if err := p.file.WriteBlock(int(f.pageID), f.bytes); err != nil {
		return errors.Wrapf(err, "bufferpool: force page %d", f.pageID)
	}
	f.dirty = false
	p.writeIO++
	p.touchMetricsWrite()
	return nil
}

// FlushAll writes back every dirty, unpinned frame without evicting it,
// in frame-index order, stopping at the first write error.
func (p *Pool) FlushAll() error {
	for _, f := range p.frames {
		if f.dirty && f.pinCount == 0 {
			if err := p.file.WriteBlock(int(f.pageID), f.bytes); err != nil {
				return errors.Wrapf(err, "bufferpool: flushAll page %d", f.pageID)
			}
			f.dirty = false
			p.writeIO++
			p.touchMetricsWrite()
		}
	}
	return nil
}

// Close tears the pool down: refuses while any frame is pinned, else
// flushes dirty frames and closes the page file. Matches
// shutdownBufferPool's ordering (spec.md §4.2.7 / Open Questions: the
// pin check is not re-run after flush, which is sound only because the
// pool is single-threaded).
func (p *Pool) Close() error {
	for _, f := range p.frames {
		if f.pinCount > 0 {
			return ErrAllPinned
		}
	}
	if err := p.FlushAll(); err != nil {
		return err
	}
	if err := p.file.Close(); err != nil {
		return errors.Wrap(err, "bufferpool: close page file")
	}
	p.log.Debug().Int("readIO", int(p.readIO)).Int("writeIO", int(p.writeIO)).Msg("pool torn down")
	return nil
}

// FrameContents returns a fresh snapshot of each frame's current page id
// (NoPage for empty), in frame-index order.
func (p *Pool) FrameContents() []PageID {
	out := make([]PageID, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.pageID
	}
	return out
}

// DirtyFlags returns a fresh snapshot of each frame's dirty flag, in
// frame-index order.
func (p *Pool) DirtyFlags() []bool {
	out := make([]bool, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.dirty
	}
	return out
}

// FixCounts returns a fresh snapshot of each frame's pin count, in
// frame-index order.
func (p *Pool) FixCounts() []int {
	out := make([]int, len(p.frames))
	for i, f := range p.frames {
		out[i] = f.pinCount
	}
	return out
}

// ReadIO returns the number of physical reads since construction.
func (p *Pool) ReadIO() int { return int(p.readIO) }

// WriteIO returns the number of physical writes since construction.
func (p *Pool) WriteIO() int { return int(p.writeIO) }

// RecentActivity returns the bounded, deduped trail of recently pinned
// page ids, least to most recent, if WithRecencyWindow was configured.
// Returns nil otherwise.
func (p *Pool) RecentActivity() []PageID {
	if p.recent == nil {
		return nil
	}
	return p.recent.OrderedRead()
}

func (p *Pool) touchRecent(id PageID) {
	if p.recent != nil {
		p.recent.Touch(id)
	}
}

func (p *Pool) touchMetricsHit() {
	if p.metrics != nil {
		p.metrics.Hits.Inc()
	}
}

func (p *Pool) touchMetricsMiss() {
	if p.metrics != nil {
		p.metrics.Misses.Inc()
		p.metrics.ReadIO.Inc()
	}
}

func (p *Pool) touchMetricsWrite() {
	if p.metrics != nil {
		p.metrics.WriteIO.Inc()
	}
}

func (p *Pool) touchMetricsEvict() {
	if p.metrics != nil {
		p.metrics.Evictions.Inc()
	}
}

func (p *Pool) touchMetricsPinned(delta float64) {
	if p.metrics != nil {
		p.metrics.PinnedNow.Add(delta)
	}
}
