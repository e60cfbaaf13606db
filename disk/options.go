package disk

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ncw/directio"

	"github.com/sharedcode/nodestore"
)

// Options configures a disk Storage.
type Options struct {
	// DataFile is the flat page file. Required unless IndexFile is set, in which case it
	// defaults to the index path with a ".data" extension.
	DataFile string
	// IndexFile persists the page index on Flush. Optional; without it nothing survives a restart.
	IndexFile string
	// PageSize in bytes. Required unless a valid index file is reloaded, whose page size wins.
	PageSize int
	// DirectIO opens the data file with O_DIRECT. PageSize must then be a multiple of directio.BlockSize.
	DirectIO bool
	// IndexErasure, when set, keeps Reed-Solomon shards of the index next to the index file.
	IndexErasure *ErasureOptions
	// Codec encodes nodes, nodestore.DefaultNodeCodec when nil.
	Codec nodestore.NodeCodec
}

// ErasureOptions lays the index shards out, one shard file per folder.
type ErasureOptions struct {
	DataShards   int
	ParityShards int
	// Folders must hold exactly DataShards+ParityShards entries, ideally on distinct drives.
	Folders []string
}

// OptionsFromProperties reads the disk properties.
func OptionsFromProperties(props nodestore.Properties) (Options, error) {
	opts := Options{
		DataFile:  props.String(nodestore.DataFileProperty, ""),
		IndexFile: props.String(nodestore.IndexFileProperty, ""),
	}
	var err error
	if opts.PageSize, err = props.Int(nodestore.PageSizeProperty, 0); err != nil {
		return opts, err
	}
	if opts.DirectIO, err = props.Bool(nodestore.DirectIOProperty, false); err != nil {
		return opts, err
	}
	if folders := props.List(nodestore.IndexErasureFoldersProperty); len(folders) > 0 {
		eo := &ErasureOptions{Folders: folders}
		if eo.DataShards, err = props.Int(nodestore.IndexErasureDataShardsProperty, 0); err != nil {
			return opts, err
		}
		if eo.ParityShards, err = props.Int(nodestore.IndexErasureParityShardsProperty, 0); err != nil {
			return opts, err
		}
		opts.IndexErasure = eo
	}
	return opts, nil
}

func configError(format string, args ...any) error {
	return nodestore.Error{Code: nodestore.ConfigurationError, Err: fmt.Errorf(format, args...)}
}

// normalize validates opts and fills in the derived defaults.
func (opts *Options) normalize() error {
	if opts.DataFile == "" {
		if opts.IndexFile == "" {
			return nodestore.Error{
				Code:     nodestore.ConfigurationError,
				Err:      fmt.Errorf("%s: %w", nodestore.DataFileProperty, nodestore.ErrMissingProperty),
				UserData: nodestore.DataFileProperty,
			}
		}
		opts.DataFile = strings.TrimSuffix(opts.IndexFile, filepath.Ext(opts.IndexFile)) + ".data"
	}
	if opts.IndexFile != "" && filepath.Clean(opts.IndexFile) == filepath.Clean(opts.DataFile) {
		return configError("index file and data file must differ, both are %s", opts.DataFile)
	}
	if opts.PageSize < 0 {
		return configError("page size must be positive, got %d", opts.PageSize)
	}
	if opts.DirectIO && opts.PageSize > 0 && opts.PageSize%directio.BlockSize != 0 {
		return configError("direct I/O needs a page size multiple of %d, got %d", directio.BlockSize, opts.PageSize)
	}
	if eo := opts.IndexErasure; eo != nil {
		if opts.IndexFile == "" {
			return configError("index erasure coding requires an index file")
		}
		if eo.DataShards < 1 || eo.ParityShards < 1 {
			return configError("index erasure coding needs at least one data and one parity shard")
		}
		if len(eo.Folders) != eo.DataShards+eo.ParityShards {
			return configError("index erasure coding needs %d folders, got %d", eo.DataShards+eo.ParityShards, len(eo.Folders))
		}
	}
	if opts.Codec == nil {
		opts.Codec = nodestore.DefaultNodeCodec
	}
	return nil
}
