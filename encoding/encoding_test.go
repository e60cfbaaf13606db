package encoding

import (
	"errors"
	"testing"
)

func TestWriterReader(t *testing.T) {
	w := NewWriter(0)
	w.PutUint8(7)
	w.PutBool(true)
	w.PutUint16(513)
	w.PutInt32(-4)
	w.PutInt64(-1 << 40)
	w.PutFloat64(3.25)
	w.PutRaw([]byte{1, 2})
	w.PutBytes([]byte("abc"))
	w.PutBytes(nil)
	w.PutString("name")

	r := NewReader(w.Data())
	if r.Uint8() != 7 || !r.Bool() || r.Uint16() != 513 || r.Int32() != -4 ||
		r.Int64() != -1<<40 || r.Float64() != 3.25 {
		t.Fatal("fixed size fields did not round trip")
	}
	if raw := r.Raw(2); raw[0] != 1 || raw[1] != 2 {
		t.Errorf("raw got %v", raw)
	}
	if string(r.Bytes()) != "abc" || r.Bytes() != nil || r.String() != "name" {
		t.Error("variable size fields did not round trip")
	}
	if r.Err() != nil || r.Remaining() != 0 || r.Offset() != w.Len() {
		t.Errorf("reader state off: err %v, remaining %d", r.Err(), r.Remaining())
	}
}

func TestReaderStickyError(t *testing.T) {
	r := NewReader([]byte{1, 2, 3})
	if r.Uint32() != 0 || !errors.Is(r.Err(), ErrTruncated) {
		t.Fatalf("expected truncation, got %v", r.Err())
	}
	if r.Uint8() != 0 || r.Offset() != 0 {
		t.Error("reads after a failure should return zero values")
	}
}

func TestReaderCount(t *testing.T) {
	w := NewWriter(0)
	w.PutUint32(1000)
	w.PutRaw(make([]byte, 10))
	r := NewReader(w.Data())
	if r.Count(4) != 0 || !errors.Is(r.Err(), ErrTruncated) {
		t.Errorf("count larger than the data should fail, got %v", r.Err())
	}
}
