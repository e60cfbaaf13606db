// Package erasure implements Reed-Solomon erasure coding helpers used by the disk node store
// to keep a reconstructable copy of its page index.
package erasure

import (
	"crypto/md5"
	"fmt"

	"github.com/klauspost/reedsolomon"
)

// Erasure wraps a Reed-Solomon encoder for a fixed data/parity shard layout.
type Erasure struct {
	DataShardsCount   int
	ParityShardsCount int
	encoder           reedsolomon.Encoder
}

const (
	// MetaDataSize is 1 byte of padding count + md5 checksum (16 bytes).
	MetaDataSize = 17
)

// NewErasure instantiates an erasure encoder.
func NewErasure(dataShards int, parityShards int) (*Erasure, error) {
	if dataShards+parityShards > 256 {
		return nil, fmt.Errorf("sum of data and parity shards cannot exceed 256")
	}
	enc, err := reedsolomon.New(dataShards, parityShards)
	if err != nil {
		return nil, err
	}
	return &Erasure{
		DataShardsCount:   dataShards,
		ParityShardsCount: parityShards,
		encoder:           enc,
	}, nil
}

// ShardsCount returns data plus parity shards.
func (e *Erasure) ShardsCount() int {
	return e.DataShardsCount + e.ParityShardsCount
}

// Encode splits data into data shards and computes the parity shards.
// data is copied first since the encoder may use its spare capacity.
func (e *Erasure) Encode(data []byte) ([][]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("can't erasure encode empty data")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	shards, err := e.encoder.Split(buf)
	if err != nil {
		return nil, err
	}
	if err := e.encoder.Encode(shards); err != nil {
		return nil, err
	}
	return shards, nil
}

// ComputeShardMetadata returns the metadata of shard shardIndex: the count of zero bytes
// stuffed at the end of the data shards, followed by the shard's md5 checksum.
func (e *Erasure) ComputeShardMetadata(dataSize int, shards [][]byte, shardIndex int) []byte {
	checksum := md5.Sum(shards[shardIndex])
	r := make([]byte, MetaDataSize)
	if dataSize%e.DataShardsCount != 0 {
		r[0] = byte(e.DataShardsCount - dataSize%e.DataShardsCount)
	}
	copy(r[1:], checksum[:])
	return r
}
