package bufferpool

// Strategy names a replacement policy. LRUK is accepted and treated
// identically to LRU: the source this pool is grounded on
// (original_source/buffer_mgr.c, pinPage's switch on bm->strategy) folds
// RS_LRU_K into the RS_LRU case, and spec.md directs implementers to
// preserve that equivalence rather than silently add K-distinct-reference
// semantics.
type Strategy int

const (
	FIFO Strategy = iota
	LRU
	LRUK
)

// policy picks an eviction victim among a pool's frames. It is the
// adapted replacement for teacher's Evictor interface: teacher's
// RandomEvictor/BottomEvictor picked from an auxiliary LRU stack,
// relbuf's policies read the metric straight off each frame's own
// loadTime/lastUsedTime tick, per spec.md §4.1.
type policy interface {
	// metric returns the tick used to rank f for eviction under this
	// policy. Lower is evicted first.
	metric(f *frame) int64
}

type fifoPolicy struct{}

func (fifoPolicy) metric(f *frame) int64 { return f.loadTime }

type lruPolicy struct{}

func (lruPolicy) metric(f *frame) int64 { return f.lastUsedTime }

func policyFor(s Strategy) policy {
	switch s {
	case FIFO:
		return fifoPolicy{}
	case LRU, LRUK:
		return lruPolicy{}
	default:
		return fifoPolicy{}
	}
}

// selectVictim implements spec.md §4.1's selection rule:
//  1. the lowest-index empty frame, if any, is a free win;
//  2. otherwise the unpinned frame minimizing the policy metric, ties
//     broken by lowest index;
//  3. if no frame is unpinned, selection fails.
func selectVictim(frames []*frame, p policy) (int, bool) {
	for i, f := range frames {
		if f.empty() {
			return i, true
		}
	}

	victim := -1
	var best int64
	for i, f := range frames {
		if f.pinCount != 0 {
			continue
		}
		m := p.metric(f)
		if victim == -1 || m < best {
			victim = i
			best = m
		}
	}
	if victim == -1 {
		return 0, false
	}
	return victim, true
}
