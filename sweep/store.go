package sweep

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/snappy"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/wippyai/dyncast/errors"
)

// ArtifactStore keeps failing reproducers.
type ArtifactStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// ArtifactKey names the reproducer of seed on toolchain within a run.
func ArtifactKey(runID string, seed uint64, toolchain string) string {
	return strings.TrimSpace(runID) + "/" + strconv.FormatUint(seed, 10) + "/" + toolchain + ".cc"
}

// DirStore writes snappy-compressed artifacts below a root directory. Each
// key becomes <root>/<key>.sz.
type DirStore struct {
	root string
}

// NewDirStore creates root if needed.
func NewDirStore(root string) (*DirStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrap(errors.PhaseSweep, errors.KindIO, err, "artifact dir")
	}
	return &DirStore{root: root}, nil
}

func (d *DirStore) path(key string) string {
	return filepath.Join(d.root, filepath.FromSlash(strings.TrimLeft(key, "/"))) + ".sz"
}

func (d *DirStore) Put(_ context.Context, key string, data []byte) error {
	p := d.path(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrap(errors.PhaseSweep, errors.KindIO, err, key)
	}
	if err := os.WriteFile(p, snappy.Encode(nil, data), 0o644); err != nil {
		return errors.Wrap(errors.PhaseSweep, errors.KindIO, err, key)
	}
	return nil
}

func (d *DirStore) Get(_ context.Context, key string) ([]byte, error) {
	compressed, err := os.ReadFile(d.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound(errors.PhaseSweep, "artifact", key)
		}
		return nil, errors.Wrap(errors.PhaseSweep, errors.KindIO, err, key)
	}
	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseSweep, errors.KindDecode, err, key)
	}
	return data, nil
}

// MinioConfig addresses an S3-compatible bucket.
type MinioConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// MinioStore keeps artifacts in an S3-compatible bucket, created on first use.
type MinioStore struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

// NewMinioStore creates the client. No request is made until the first Put.
func NewMinioStore(cfg MinioConfig) (*MinioStore, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" || cfg.AccessKey == "" || cfg.SecretKey == "" || cfg.Bucket == "" {
		return nil, errors.InvalidInput(errors.PhaseConfig, "minio store needs endpoint, credentials and bucket")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "minio client")
	}
	return &MinioStore{client: client, bucket: cfg.Bucket, region: region}, nil
}

func (s *MinioStore) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

func (s *MinioStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.ensureBucket(ctx); err != nil {
		return errors.Remote("minio", err)
	}
	_, err := s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "text/x-c++src",
	})
	if err != nil {
		return errors.Remote("minio", err)
	}
	return nil
}

func (s *MinioStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, errors.Remote("minio", err)
	}
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Remote("minio", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if code := minio.ToErrorResponse(err).Code; code == "NoSuchKey" || code == "NoSuchBucket" {
			return nil, errors.NotFound(errors.PhaseSweep, "artifact", key)
		}
		return nil, errors.Remote("minio", err)
	}
	return data, nil
}
