// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package mirror

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"
	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	s3v2 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dustin/go-humanize"
)

// ErrNoObject is returned by Pull when the mirror holds no snapshot. It
// wraps fs.ErrNotExist.
var ErrNoObject = fmt.Errorf("mirror object not found: %w", fs.ErrNotExist)

// ObjectAPI is the slice of the S3 client the mirror needs. *s3.Client
// satisfies it.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3v2.PutObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3v2.GetObjectInput, optFns ...func(*s3v2.Options)) (*s3v2.GetObjectOutput, error)
}

// S3Mirror stores the snapshot as a single object.
type S3Mirror struct {
	Client ObjectAPI
	Bucket string
	Key    string
}

// NewS3Mirror loads AWS configuration and returns a mirror writing to
// s3://bucket/key.
func NewS3Mirror(ctx context.Context, bucket, key string, opts ...Option) (*S3Mirror, error) {
	if bucket == "" || key == "" {
		return nil, errors.New("mirror bucket and key are required")
	}

	cfg, err := LoadAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &S3Mirror{
		Client: NewS3(cfg, endpointOptions(collect(opts))...),
		Bucket: bucket,
		Key:    key,
	}, nil
}

// Push uploads the file at path.
func (m *S3Mirror) Push(ctx context.Context, path string) error {
	f, err := os.Open(path) //nolint:gosec // path is operator configuration
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat snapshot: %w", err)
	}

	if _, err := m.Client.PutObject(ctx, &s3v2.PutObjectInput{
		Bucket:        awsv2.String(m.Bucket),
		Key:           awsv2.String(m.Key),
		Body:          f,
		ContentLength: awsv2.Int64(info.Size()),
	}); err != nil {
		return fmt.Errorf("failed to upload snapshot to s3://%s/%s: %w", m.Bucket, m.Key, err)
	}

	log.WithFields(log.Fields{
		"object": m.uri(),
		"size":   humanize.Bytes(uint64(info.Size())), //nolint:gosec // size is never negative
	}).Debug("snapshot pushed to mirror")
	return nil
}

// Pull downloads the object to path, replacing any existing file only once
// the download is complete.
func (m *S3Mirror) Pull(ctx context.Context, path string) error {
	out, err := m.Client.GetObject(ctx, &s3v2.GetObjectInput{
		Bucket: awsv2.String(m.Bucket),
		Key:    awsv2.String(m.Key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return fmt.Errorf("%w: %s", ErrNoObject, m.uri())
		}
		return fmt.Errorf("failed to download snapshot from %s: %w", m.uri(), err)
	}
	defer out.Body.Close()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-pull-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary snapshot: %w", err)
	}
	tmpPath := tmp.Name()

	n, err := io.Copy(tmp, out.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to download snapshot from %s: %w", m.uri(), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace snapshot: %w", err)
	}

	log.WithFields(log.Fields{
		"object": m.uri(),
		"size":   humanize.Bytes(uint64(n)), //nolint:gosec // size is never negative
	}).Info("snapshot pulled from mirror")
	return nil
}

func (m *S3Mirror) uri() string {
	return fmt.Sprintf("s3://%s/%s", m.Bucket, m.Key)
}
