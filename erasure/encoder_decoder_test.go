package erasure

import (
	"bytes"
	"slices"
	"testing"
)

func encodeWithMetadata(t *testing.T, e *Erasure, d []byte) ([][]byte, [][]byte) {
	t.Helper()
	shards, err := e.Encode(d)
	if err != nil {
		t.Fatal(err)
	}
	sm := make([][]byte, len(shards))
	for i := range shards {
		sm[i] = e.ComputeShardMetadata(len(d), shards, i)
	}
	return shards, sm
}

func Test_Encode_Decode(t *testing.T) {
	e, _ := NewErasure(4, 2)
	d := []byte{1, 2, 3, 4, 5}
	shards, sm := encodeWithMetadata(t, e, d)
	if sm[0][0] != 3 {
		t.Errorf("stuff 0 count got %d, expected 3", sm[0][0])
	}
	dr := e.Decode(shards, sm)
	if dr.Error != nil {
		t.Fatal(dr.Error)
	}
	if !bytes.Equal(dr.DecodedData, d) {
		t.Errorf("DecodedData got %v, expected %v", dr.DecodedData, d)
	}
	if len(dr.ReconstructedShardsIndices) != 0 {
		t.Errorf("nothing should have been reconstructed, got %v", dr.ReconstructedShardsIndices)
	}
}

func Test_bitrot(t *testing.T) {
	e, _ := NewErasure(4, 2)
	d := []byte{1, 2, 3, 4, 5}
	shards, sm := encodeWithMetadata(t, e, d)

	// Flip a byte to simulate bitrot.
	shards[1][1] ^= 0xff

	dr := e.Decode(shards, sm)
	if dr.Error != nil {
		t.Fatal(dr.Error)
	}
	if !slices.Equal(dr.ReconstructedShardsIndices, []int{1}) {
		t.Errorf("ReconstructedShardsIndices got %v, expected [1]", dr.ReconstructedShardsIndices)
	}
	if !bytes.Equal(dr.DecodedData, d) {
		t.Errorf("DecodedData got %v, expected %v", dr.DecodedData, d)
	}
}

func Test_MissingShardsAndMetadata(t *testing.T) {
	e, _ := NewErasure(3, 2)
	d := bytes.Repeat([]byte("index blob "), 40)
	shards, sm := encodeWithMetadata(t, e, d)
	shards[0], sm[0] = nil, nil
	shards[3] = nil

	dr := e.Decode(shards, sm)
	if dr.Error != nil {
		t.Fatal(dr.Error)
	}
	if !bytes.Equal(dr.DecodedData, d) {
		t.Error("DecodedData mismatch after reconstruction")
	}
	if !slices.Equal(dr.ReconstructedShardsIndices, []int{0, 3}) {
		t.Errorf("ReconstructedShardsIndices got %v", dr.ReconstructedShardsIndices)
	}
	if shards[0] == nil || shards[3] == nil {
		t.Error("repaired shards were not filled in")
	}
}

func Test_TooManyLost(t *testing.T) {
	e, _ := NewErasure(2, 1)
	shards, sm := encodeWithMetadata(t, e, []byte("abcdef"))
	shards[0], shards[1] = nil, nil
	if dr := e.Decode(shards, sm); dr.Error == nil {
		t.Error("expected failure when more shards are lost than parity allows")
	}
}

func Test_EmptyData(t *testing.T) {
	e, _ := NewErasure(2, 1)
	if _, err := e.Encode(nil); err == nil {
		t.Error("expected error encoding empty data")
	}
}
