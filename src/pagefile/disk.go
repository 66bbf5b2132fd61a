package pagefile

import (
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Disk is a File backed by a real, already-existing file on disk. It never
// creates the file it opens — see Create below for that — matching
// spec.md's "creating it is not the pool's job" contract.
type Disk struct {
	f    *os.File
	name string
	log  zerolog.Logger
}

// Open opens an existing page file. The file must already exist; Open
// never creates one (createPageFile in original_source/storage_mgr.c is a
// distinct, explicit step, carried here as Create).
func Open(name string, log zerolog.Logger) (*Disk, error) {
	f, err := os.OpenFile(name, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "pagefile: open %s", name)
	}
	return &Disk{f: f, name: name, log: log.With().Str("pagefile", name).Logger()}, nil
}

// Create creates a new, empty page file (zero pages long). It mirrors
// original_source/storage_mgr.c's createPageFile, which writes a single
// empty page; relbuf instead leaves the file at zero length and lets the
// first EnsureCapacity/Pin grow it, since the pool never assumes page 0
// exists ahead of a pin.
func Create(name string) error {
	f, err := os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return errors.Wrapf(err, "pagefile: create %s", name)
	}
	return f.Close()
}

// Destroy removes a page file from disk. Mirrors destroyPageFile.
func Destroy(name string) error {
	if err := os.Remove(name); err != nil {
		return errors.Wrapf(err, "pagefile: destroy %s", name)
	}
	return nil
}

func (d *Disk) Length() (int, error) {
	info, err := d.f.Stat()
	if err != nil {
		return 0, errors.Wrap(err, "pagefile: stat")
	}
	return int(info.Size() / PageSize), nil
}

func (d *Disk) ReadBlock(pageIndex int, buf []byte) error {
	length, err := d.Length()
	if err != nil {
		return err
	}
	if pageIndex < 0 || pageIndex >= length {
		return errors.Wrapf(ErrOutOfRange, "read page %d", pageIndex)
	}
	n, err := d.f.ReadAt(buf[:PageSize], int64(pageIndex)*PageSize)
	if err != nil {
		return errors.Wrapf(err, "pagefile: read page %d", pageIndex)
	}
	if n != PageSize {
		return errors.Wrapf(ErrOutOfRange, "short read on page %d (%d bytes)", pageIndex, n)
	}
	d.log.Debug().Int("page", pageIndex).Msg("read block")
	return nil
}

func (d *Disk) WriteBlock(pageIndex int, buf []byte) error {
	length, err := d.Length()
	if err != nil {
		return err
	}
	if pageIndex < 0 || pageIndex >= length {
		return errors.Wrapf(ErrOutOfRange, "write page %d", pageIndex)
	}
	n, err := d.f.WriteAt(buf[:PageSize], int64(pageIndex)*PageSize)
	if err != nil {
		return errors.Wrapf(err, "pagefile: write page %d", pageIndex)
	}
	if n != PageSize {
		return errors.Wrapf(ErrOutOfRange, "short write on page %d (%d bytes)", pageIndex, n)
	}
	d.log.Debug().Int("page", pageIndex).Msg("write block")
	return nil
}

func (d *Disk) EnsureCapacity(requiredPages int) error {
	cur, err := d.Length()
	if err != nil {
		return err
	}
	if requiredPages <= cur {
		return nil
	}
	zero := make([]byte, PageSize)
	for p := cur; p < requiredPages; p++ {
		if _, err := d.f.WriteAt(zero, int64(p)*PageSize); err != nil {
			return errors.Wrapf(err, "pagefile: grow to %d pages", requiredPages)
		}
	}
	d.log.Debug().Int("from", cur).Int("to", requiredPages).Msg("grew page file")
	return nil
}

func (d *Disk) Close() error {
	if err := d.f.Close(); err != nil {
		return errors.Wrap(err, "pagefile: close")
	}
	return nil
}
