package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/juju/loggo/v2"
)

var logger = loggo.GetLogger("cloudinventory.state")

const snapshotPrefix = "snapshots/"

// S3API is the part of the S3 client the store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// S3Store implements the Store interface using AWS S3
type S3Store struct {
	client     S3API
	bucketName string
	now        func() time.Time
}

// NewS3Store creates a new S3-based store
func NewS3Store(client S3API, bucketName string) *S3Store {
	return &S3Store{
		client:     client,
		bucketName: bucketName,
		now:        time.Now,
	}
}

func currentKey(name string) string {
	return fmt.Sprintf("%s%s/current.json", snapshotPrefix, name)
}

func versionKey(name, version string) string {
	return fmt.Sprintf("%s%s/versions/%s.json", snapshotPrefix, name, version)
}

// SaveSnapshot writes the current snapshot and a versioned copy
func (s *S3Store) SaveSnapshot(ctx context.Context, name string, snap *Snapshot) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if err := ValidateSnapshot(snap); err != nil {
		return fmt.Errorf("invalid snapshot: %w", err)
	}

	now := s.now().UTC()
	snap.Metadata.Name = name
	if snap.Metadata.CreatedAt.IsZero() {
		snap.Metadata.CreatedAt = now
	}
	if snap.Metadata.Version == "" {
		snap.Metadata.Version = now.Format("20060102T150405Z")
	}

	jsonData, err := marshalSized(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.putObject(ctx, currentKey(name), jsonData); err != nil {
		return fmt.Errorf("failed to save current snapshot: %w", err)
	}
	if err := s.putObject(ctx, versionKey(name, snap.Metadata.Version), jsonData); err != nil {
		// current is already written
		logger.Warningf("failed to save version %s of %s: %v", snap.Metadata.Version, name, err)
	}
	logger.Debugf("saved snapshot %s version %s (%d hosts) to s3://%s", name, snap.Metadata.Version, snap.Metadata.HostCount, s.bucketName)
	return nil
}

// GetSnapshot retrieves the current snapshot
func (s *S3Store) GetSnapshot(ctx context.Context, name string) (*Snapshot, error) {
	return s.getSnapshot(ctx, currentKey(name))
}

// GetSnapshotVersion retrieves a specific version of a snapshot
func (s *S3Store) GetSnapshotVersion(ctx context.Context, name, version string) (*Snapshot, error) {
	return s.getSnapshot(ctx, versionKey(name, version))
}

// ListSnapshots lists the current snapshot metadata of every name, sorted by name
func (s *S3Store) ListSnapshots(ctx context.Context) ([]SnapshotMetadata, error) {
	var names []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucketName),
		Prefix: aws.String(snapshotPrefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list snapshots: %w", err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, "/current.json") {
				continue
			}
			parts := strings.Split(key, "/")
			if len(parts) == 3 {
				names = append(names, parts[1])
			}
		}
	}
	sort.Strings(names)

	var snapshots []SnapshotMetadata
	for _, name := range names {
		snap, err := s.GetSnapshot(ctx, name)
		if err != nil {
			logger.Warningf("skipping snapshot %s: %v", name, err)
			continue
		}
		snapshots = append(snapshots, snap.Metadata)
	}
	return snapshots, nil
}

func (s *S3Store) getSnapshot(ctx context.Context, key string) (*Snapshot, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("%s: %w", key, ErrSnapshotNotFound)
		}
		return nil, fmt.Errorf("failed to get %s from S3: %w", key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot data: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// marshalSized encodes snap with Metadata.Size equal to the length of the
// encoding itself. Size only grows with its own digit count, so this settles
// within a few rounds.
func marshalSized(snap *Snapshot) ([]byte, error) {
	snap.Metadata.Size = 0
	for {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, err
		}
		if int64(len(data)) == snap.Metadata.Size {
			return data, nil
		}
		snap.Metadata.Size = int64(len(data))
	}
}

func (s *S3Store) putObject(ctx context.Context, key string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucketName),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String("application/json"),
		ServerSideEncryption: types.ServerSideEncryptionAes256,
	})
	return err
}
