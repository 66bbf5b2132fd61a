// Package recordmgr is a thin, deliberately unfinished client of
// bufferpool, grounded on original_source/record_mgr.c. spec.md §1 calls
// the record-manager layer "a skeleton with no real engineering content
// in this revision" and treats it as one possible client of the buffer
// pool core; this package keeps that fidelity rather than building out a
// real tuple/schema engine.
package recordmgr

import (
	"errors"

	"github.com/rs/zerolog"

	"github.com/avadhanam/relbuf/src/bufferpool"
	"github.com/avadhanam/relbuf/src/pagefile"
)

func zeroLogger() zerolog.Logger { return zerolog.Nop() }

// defaultPoolFrames mirrors record_mgr.c's openTable, which hardcodes a
// 3-frame FIFO pool per table.
const defaultPoolFrames = 3

// Table is the Go analog of RM_TableMgmtData: one buffer pool and a
// tuple counter per open table.
type Table struct {
	Name string
	pool *bufferpool.Pool
	// numTuples is a count only; insertRecord in the original source
	// never writes tuple bytes anywhere, so neither does this.
	numTuples int
}

// CreateTable creates a fresh, empty page file for name. Mirrors
// createTable's createPageFile+openPageFile+ensureCapacity(1)+closePageFile
// sequence.
func CreateTable(name string) error {
	if err := pagefile.Create(name); err != nil {
		return err
	}
	d, err := pagefile.Open(name, zeroLogger())
	if err != nil {
		return err
	}
	defer d.Close()
	return d.EnsureCapacity(1)
}

// OpenTable opens an existing table's page file behind a small FIFO
// buffer pool.
func OpenTable(name string) (*Table, error) {
	pool, err := bufferpool.Open(name, defaultPoolFrames, bufferpool.FIFO)
	if err != nil {
		return nil, err
	}
	return &Table{Name: name, pool: pool}, nil
}

// CloseTable tears down the table's buffer pool.
func (t *Table) CloseTable() error {
	return t.pool.Close()
}

// DeleteTable removes a table's page file entirely.
func DeleteTable(name string) error {
	return pagefile.Destroy(name)
}

// NumTuples returns the table's tracked tuple count.
func (t *Table) NumTuples() int { return t.numTuples }

// InsertRecord increments the table's tuple count. The original source's
// insertRecord does nothing else — no slot allocation, no page write —
// and this keeps that skeleton behavior rather than inventing a tuple
// format the spec never described.
func (t *Table) InsertRecord() {
	t.numTuples++
}

// Scan is the Go analog of RM_ScanHandle: a scan that — per the original
// skeleton — never produces a tuple.
type Scan struct {
	table *Table
}

// ErrNoMoreTuples mirrors RC_RM_NO_MORE_TUPLES.
var ErrNoMoreTuples = errors.New("recordmgr: no more tuples")

// StartScan opens a scan over t. The original's startScan also took a
// scan condition (Expr *cond); relbuf drops it since nothing here ever
// evaluates one — next() in the skeleton returns "no more tuples"
// unconditionally.
func StartScan(t *Table) *Scan {
	return &Scan{table: t}
}

// Next always reports no more tuples: the original record manager never
// implemented tuple iteration.
func (s *Scan) Next() error {
	return ErrNoMoreTuples
}

// CloseScan is a no-op placeholder matching closeScan's free(scan->mgmtData).
func (s *Scan) CloseScan() {}
