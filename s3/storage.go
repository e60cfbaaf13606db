package s3

import (
	"bytes"
	"context"
	"fmt"
	"io"
	log "log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sharedcode/nodestore"
)

const largeObjectMinSize = 10 * 1024 * 1024

// Storage is the S3 node store. Writes are immediate, so Flush does nothing.
// Feature types and bounds are kept in process only.
type Storage struct {
	nodestore.Metadata
	client   Client
	uploader *manager.Uploader
	bucket   string
	prefix   string
	codec    nodestore.NodeCodec
	disposed atomic.Bool
}

// NewFromProperties connects with the s3 properties.
func NewFromProperties(ctx context.Context, props nodestore.Properties) (nodestore.Storage, error) {
	cfg, err := ConfigFromProperties(props)
	if err != nil {
		return nil, err
	}
	return New(Connect(cfg), cfg), nil
}

// New stores nodes in cfg.Bucket through client.
func New(client Client, cfg Config) *Storage {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "nodes"
	}
	return &Storage{
		client: client,
		uploader: manager.NewUploader(client, func(u *manager.Uploader) {
			u.PartSize = largeObjectMinSize
		}),
		bucket: cfg.Bucket,
		prefix: prefix,
		codec:  nodestore.DefaultNodeCodec,
	}
}

func (s *Storage) key(id nodestore.NodeID) string {
	return s.prefix + "/" + id.String()
}

func (s *Storage) check() error {
	if s.disposed.Load() {
		return nodestore.Disposed()
	}
	return nil
}

func (s *Storage) Get(ctx context.Context, id nodestore.NodeID) (*nodestore.Node, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, bucketError(s.bucket, err)
	}
	defer result.Body.Close()
	body, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, bucketError(s.bucket, err)
	}
	n, err := s.codec.Decode(body)
	if err != nil {
		log.Warn("s3 node failed to decode, treating as absent", "key", s.key(id), "error", err)
		return nil, nil
	}
	n.ID = id
	return n, nil
}

// Put uploads the node, switching to multipart for nodes over the part size.
func (s *Storage) Put(ctx context.Context, n *nodestore.Node) error {
	if err := s.check(); err != nil {
		return err
	}
	ba, err := s.codec.Encode(n)
	if err != nil {
		return err
	}
	_, err = s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(n.ID)),
		Body:   bytes.NewReader(ba),
	})
	if err != nil {
		return bucketError(s.bucket, err)
	}
	return nil
}

// Remove deletes the object, failing with ErrNodeNotFound when it does not exist.
// S3 deletes are idempotent, so existence is checked first.
func (s *Storage) Remove(ctx context.Context, id nodestore.NodeID) error {
	if ok, err := s.Contains(ctx, id); err != nil {
		return err
	} else if !ok {
		return nodestore.NodeNotFound(id)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return bucketError(s.bucket, err)
	}
	return nil
}

func (s *Storage) Flush(ctx context.Context) error {
	return s.check()
}

// list walks the object keys under the prefix one page at a time.
func (s *Storage) list(ctx context.Context, visit func(keys []string) error) error {
	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + "/"),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return bucketError(s.bucket, err)
		}
		keys := make([]string, 0, len(page.Contents))
		for _, o := range page.Contents {
			keys = append(keys, aws.ToString(o.Key))
		}
		if len(keys) == 0 {
			continue
		}
		if err := visit(keys); err != nil {
			return err
		}
	}
	return nil
}

// Clear deletes every object under the prefix.
func (s *Storage) Clear(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	return s.list(ctx, func(keys []string) error {
		objectIds := make([]types.ObjectIdentifier, len(keys))
		for i, k := range keys {
			objectIds[i] = types.ObjectIdentifier{Key: aws.String(k)}
		}
		output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{Objects: objectIds},
		})
		if err != nil {
			return bucketError(s.bucket, err)
		}
		if len(output.Errors) > 0 {
			e := output.Errors[0]
			return bucketError(s.bucket, fmt.Errorf("delete of %d objects failed, first %s: %s", len(output.Errors), aws.ToString(e.Key), aws.ToString(e.Message)))
		}
		return nil
	})
}

func (s *Storage) Dispose(ctx context.Context) error {
	s.disposed.Store(true)
	return nil
}

func (s *Storage) FindUniqueInstance(id nodestore.NodeID) nodestore.NodeID {
	return id
}

func (s *Storage) Contains(ctx context.Context, id nodestore.NodeID) (bool, error) {
	if err := s.check(); err != nil {
		return false, err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, bucketError(s.bucket, err)
	}
	return true, nil
}

// IDs lists the node ids under the prefix in ascending order. Keys that are not ids are skipped.
func (s *Storage) IDs(ctx context.Context) ([]nodestore.NodeID, error) {
	if err := s.check(); err != nil {
		return nil, err
	}
	var ids []nodestore.NodeID
	err := s.list(ctx, func(keys []string) error {
		for _, k := range keys {
			if id, err := nodestore.ParseNodeID(strings.TrimPrefix(k, s.prefix+"/")); err == nil {
				ids = append(ids, id)
			}
		}
		return nil
	})
	slices.SortFunc(ids, nodestore.NodeID.Compare)
	return ids, err
}
