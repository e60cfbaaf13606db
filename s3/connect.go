// Package s3 stores nodes as objects of an S3 compatible bucket, keyed "<prefix>/<id>".
package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/sharedcode/nodestore"
)

type Config struct {
	// "http://127.0.0.1:9000"
	HostEndpointUrl string
	// "us-east-1"
	Region   string
	Username string
	Password string
	Bucket   string
	// Prefix namespaces the node objects, "nodes" when empty.
	Prefix string
}

// ConfigFromProperties reads the s3 properties. The bucket is required.
func ConfigFromProperties(props nodestore.Properties) (Config, error) {
	bucket, err := props.Require(nodestore.S3BucketProperty)
	if err != nil {
		return Config{}, err
	}
	return Config{
		HostEndpointUrl: props.String(nodestore.S3EndpointProperty, ""),
		Region:          props.String(nodestore.S3RegionProperty, "us-east-1"),
		Username:        props.String(nodestore.S3UsernameProperty, ""),
		Password:        props.String(nodestore.S3PasswordProperty, ""),
		Bucket:          bucket,
		Prefix:          props.String(nodestore.S3PrefixProperty, "nodes"),
	}, nil
}

// Connect to the S3 (or minio) endpoint with static credentials.
func Connect(config Config) *s3.Client {
	client := s3.NewFromConfig(aws.Config{Region: config.Region}, func(o *s3.Options) {
		if config.HostEndpointUrl != "" {
			o.BaseEndpoint = aws.String(config.HostEndpointUrl)
			o.UsePathStyle = true
		}
		o.Credentials = credentials.NewStaticCredentialsProvider(config.Username, config.Password, "")
	})
	return client
}

// Client is the part of the S3 API the node store uses. *s3.Client satisfies it.
type Client interface {
	manager.UploadAPIClient
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
}

// isNotFound detects the missing key errors of GetObject (NoSuchKey) and HeadObject (NotFound).
func isNotFound(err error) bool {
	var ae smithy.APIError
	if !errors.As(err, &ae) {
		return false
	}
	switch ae.ErrorCode() {
	case "NoSuchKey", "NotFound":
		return true
	}
	return false
}

func bucketError(bucket string, err error) error {
	return fmt.Errorf("bucket %s: %w", bucket, err)
}
