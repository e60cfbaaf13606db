package disk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/ncw/directio"

	"github.com/sharedcode/nodestore"
	"github.com/sharedcode/nodestore/pagealloc"
)

// PageIO reads and writes whole pages of the data file.
type PageIO interface {
	pagealloc.PageReader
	pagealloc.PageWriter
	// NewScratch returns a page sized buffer suitable for ReadPage/WritePage.
	NewScratch() []byte
	Truncate() error
	Sync() error
	Close() error
}

type pageFile struct {
	file     *os.File
	path     string
	pageSize int
	direct   bool
}

// openPageFile opens (creating if needed) the data file. truncate discards any existing content.
func openPageFile(ctx context.Context, path string, pageSize int, direct, truncate bool) (*pageFile, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := nodestore.RetryIO(ctx, func() error { return os.MkdirAll(dir, 0o755) }); err != nil {
			return nil, err
		}
	}
	flag := os.O_RDWR | os.O_CREATE
	if truncate {
		flag |= os.O_TRUNC
	}
	var f *os.File
	err := nodestore.RetryIO(ctx, func() error {
		var err error
		if direct {
			f, err = directio.OpenFile(path, flag, 0o644)
		} else {
			f, err = os.OpenFile(path, flag, 0o644)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &pageFile{
		file:     f,
		path:     path,
		pageSize: pageSize,
		direct:   direct,
	}, nil
}

func (pf *pageFile) NewScratch() []byte {
	if pf.direct {
		return directio.AlignedBlock(pf.pageSize)
	}
	return make([]byte, pf.pageSize)
}

// ReadPage reads exactly one page. Anything short of a full page means the file no longer
// matches the index and is reported as CorruptPage.
func (pf *pageFile) ReadPage(page int64, buf []byte) error {
	if pf.file == nil {
		return nodestore.Disposed()
	}
	n, err := pf.file.ReadAt(buf[:pf.pageSize], page*int64(pf.pageSize))
	if n < pf.pageSize {
		if err == nil || errors.Is(err, io.EOF) {
			err = nodestore.ErrShortRead
		}
		return nodestore.Error{
			Code:     nodestore.CorruptPage,
			Err:      fmt.Errorf("page %d of %s: read %d of %d bytes: %w", page, pf.path, n, pf.pageSize, err),
			UserData: page,
		}
	}
	return nil
}

func (pf *pageFile) WritePage(page int64, buf []byte) error {
	if pf.file == nil {
		return nodestore.Disposed()
	}
	if _, err := pf.file.WriteAt(buf[:pf.pageSize], page*int64(pf.pageSize)); err != nil {
		return nodestore.Error{Code: nodestore.FileIOError, Err: fmt.Errorf("write page %d of %s: %w", page, pf.path, err), UserData: page}
	}
	return nil
}

func (pf *pageFile) Truncate() error {
	if pf.file == nil {
		return nodestore.Disposed()
	}
	if err := pf.file.Truncate(0); err != nil {
		return nodestore.Error{Code: nodestore.FileIOError, Err: err}
	}
	return nil
}

func (pf *pageFile) Sync() error {
	if pf.file == nil {
		return nodestore.Disposed()
	}
	if err := pf.file.Sync(); err != nil {
		return nodestore.Error{Code: nodestore.FileIOError, Err: err}
	}
	return nil
}

func (pf *pageFile) Close() error {
	if pf.file == nil {
		return nil
	}
	err := pf.file.Close()
	pf.file = nil
	return err
}
