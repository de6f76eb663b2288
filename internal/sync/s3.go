package sync

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Destination uploads wall snapshots to an S3-compatible bucket. The
// snapshot header is surfaced as object metadata so a bucket listing can be
// inspected without downloading the JSONL body.
type S3Destination struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination. If endpoint is non-empty,
// path-style addressing is enabled (for MinIO and similar).
func NewS3Destination(ctx context.Context, bucket, key, region, endpoint string) (*S3Destination, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		})
	}

	client := s3.NewFromConfig(cfg, s3opts...)
	return &S3Destination{
		client: client,
		bucket: bucket,
		key:    key,
	}, nil
}

// snapshotMetadata reads the header record off a wall snapshot and converts
// it to S3 object metadata. A snapshot without a parsable header uploads
// without metadata rather than failing the sync.
func snapshotMetadata(data []byte) map[string]string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if !scanner.Scan() {
		return nil
	}

	var h header
	if err := json.Unmarshal(scanner.Bytes(), &h); err != nil || h.Type != "header" {
		return nil
	}

	return map[string]string{
		"wall-schema-version": h.Version,
		"wall-posts":          strconv.Itoa(h.PostCount),
		"wall-comments":       strconv.Itoa(h.CommentCount),
		"wall-snapshot-at":    h.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// Write uploads the snapshot to the configured object key.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	contentType := "application/x-ndjson"
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: &contentType,
		Metadata:    snapshotMetadata(data),
	})
	if err != nil {
		return fmt.Errorf("s3 put object: %w", err)
	}
	return nil
}
