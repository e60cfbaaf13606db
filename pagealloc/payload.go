package pagealloc

import "fmt"

// PageReader reads exactly one page into buf (len(buf) == page size).
type PageReader interface {
	ReadPage(page int64, buf []byte) error
}

// PageWriter writes exactly one page from buf (len(buf) == page size).
type PageWriter interface {
	WritePage(page int64, buf []byte) error
}

// WritePayload splits payload at pageSize boundaries and writes it across pages in order.
// Every write is a full page taken from scratch; the tail of the last page keeps whatever scratch
// held from the previous chunk, readers only ever consume the payload length.
func WritePayload(w PageWriter, pageSize int, pages []int64, payload []byte, scratch []byte) error {
	if len(scratch) != pageSize {
		return fmt.Errorf("scratch buffer is %d bytes, page size is %d", len(scratch), pageSize)
	}
	if want := (len(payload) + pageSize - 1) / pageSize; want != len(pages) {
		return fmt.Errorf("payload of %d bytes needs %d pages, got %d", len(payload), want, len(pages))
	}
	for i, p := range pages {
		start := i * pageSize
		end := min(start+pageSize, len(payload))
		copy(scratch, payload[start:end])
		if err := w.WritePage(p, scratch); err != nil {
			return err
		}
	}
	return nil
}

// ReadPayload reads length bytes spread across pages, in order.
func ReadPayload(r PageReader, pageSize int, pages []int64, length int, scratch []byte) ([]byte, error) {
	if len(scratch) != pageSize {
		return nil, fmt.Errorf("scratch buffer is %d bytes, page size is %d", len(scratch), pageSize)
	}
	if want := (length + pageSize - 1) / pageSize; want != len(pages) {
		return nil, fmt.Errorf("payload of %d bytes needs %d pages, got %d", length, want, len(pages))
	}
	out := make([]byte, length)
	for i, p := range pages {
		if err := r.ReadPage(p, scratch); err != nil {
			return nil, err
		}
		start := i * pageSize
		end := min(start+pageSize, length)
		copy(out[start:end], scratch)
	}
	return out, nil
}
