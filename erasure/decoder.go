package erasure

import (
	"bytes"
	"crypto/md5"
	"fmt"
	log "log/slog"
)

// DecodeResult is the outcome of Decode.
type DecodeResult struct {
	DecodedData []byte
	// ReconstructedShardsIndices lists the shards that were missing or corrupt and got rebuilt,
	// so the caller can rewrite them.
	ReconstructedShardsIndices []int
	Error                      error
}

// Decode rebuilds the original data from shards. Missing shards are passed as nil, and
// their metadata may be nil too. Shards failing their checksum are treated as missing.
// On success, shards holds the repaired set.
func (e *Erasure) Decode(shards [][]byte, shardsMetaData [][]byte) *DecodeResult {
	if len(shards) != e.ShardsCount() || len(shardsMetaData) != len(shards) {
		return &DecodeResult{
			Error: fmt.Errorf("expected %d shards and metadata, got %d and %d", e.ShardsCount(), len(shards), len(shardsMetaData)),
		}
	}
	padding := -1
	for i := range shardsMetaData {
		if len(shardsMetaData[i]) == MetaDataSize {
			padding = int(shardsMetaData[i][0])
			break
		}
	}
	if padding < 0 {
		return &DecodeResult{Error: fmt.Errorf("no shard metadata available")}
	}

	r := &DecodeResult{}
	for i := range shards {
		if shards[i] == nil {
			r.ReconstructedShardsIndices = append(r.ReconstructedShardsIndices, i)
			continue
		}
		if len(shardsMetaData[i]) != MetaDataSize {
			shards[i] = nil
			r.ReconstructedShardsIndices = append(r.ReconstructedShardsIndices, i)
			continue
		}
		got := md5.Sum(shards[i])
		if !bytes.Equal(shardsMetaData[i][1:], got[:]) {
			log.Info("erasure shard failed checksum, reconstructing", "shard", i)
			shards[i] = nil
			r.ReconstructedShardsIndices = append(r.ReconstructedShardsIndices, i)
		}
	}

	if len(r.ReconstructedShardsIndices) > 0 {
		if len(r.ReconstructedShardsIndices) > e.ParityShardsCount {
			return &DecodeResult{
				Error: fmt.Errorf("%d shards lost, parity can only rebuild %d", len(r.ReconstructedShardsIndices), e.ParityShardsCount),
			}
		}
		if err := e.encoder.Reconstruct(shards); err != nil {
			return &DecodeResult{Error: fmt.Errorf("reconstruct failed, error: %w", err)}
		}
	}
	if ok, err := e.encoder.Verify(shards); !ok {
		return &DecodeResult{Error: fmt.Errorf("shards verification failed, error: %v", err)}
	}

	var b bytes.Buffer
	shardSize := len(shards[0])
	if err := e.encoder.Join(&b, shards, shardSize*e.DataShardsCount-padding); err != nil {
		return &DecodeResult{Error: fmt.Errorf("encoder.Join failed, error: %w", err)}
	}
	r.DecodedData = b.Bytes()
	return r
}
