package pagefile

import (
	"sync"

	"github.com/pkg/errors"
)

// Memory is an in-process File, grounded on teacher's MockPool: a map
// keyed by page index guarded by a RWMutex, used so the buffer pool's own
// tests never touch disk.
type Memory struct {
	m     sync.RWMutex
	pages map[int][]byte
	size  int
}

// NewMemory creates an empty in-memory page file.
func NewMemory() *Memory {
	return &Memory{pages: map[int][]byte{}}
}

func (m *Memory) Length() (int, error) {
	m.m.RLock()
	defer m.m.RUnlock()
	return m.size, nil
}

func (m *Memory) ReadBlock(pageIndex int, buf []byte) error {
	m.m.RLock()
	defer m.m.RUnlock()
	if pageIndex < 0 || pageIndex >= m.size {
		return errors.Wrapf(ErrOutOfRange, "read page %d", pageIndex)
	}
	page, ok := m.pages[pageIndex]
	if !ok {
		// Grown-but-never-written page: zero-filled, per ensureCapacity.
		for i := range buf[:PageSize] {
			buf[i] = 0
		}
		return nil
	}
	copy(buf[:PageSize], page)
	return nil
}

func (m *Memory) WriteBlock(pageIndex int, buf []byte) error {
	m.m.Lock()
	defer m.m.Unlock()
	if pageIndex < 0 || pageIndex >= m.size {
		return errors.Wrapf(ErrOutOfRange, "write page %d", pageIndex)
	}
	page := make([]byte, PageSize)
	copy(page, buf[:PageSize])
	m.pages[pageIndex] = page
	return nil
}

func (m *Memory) EnsureCapacity(requiredPages int) error {
	m.m.Lock()
	defer m.m.Unlock()
	if requiredPages > m.size {
		m.size = requiredPages
	}
	return nil
}

func (m *Memory) Close() error {
	return nil
}
