package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"lms_console_backend/internal/config"
	"lms_console_backend/internal/util"
	"lms_console_backend/pkg/logger"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// ArchiveStore 保存导入原始文件的对象存储
type ArchiveStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns util.ErrArchiveNotFound for a missing key.
	Get(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
	URL(key string) string
}

// LocalArchive 本地目录，通过 /uploads 静态路由访问
type LocalArchive struct {
	Root string
}

func (l *LocalArchive) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid archive key %q", key)
	}
	return filepath.Join(l.Root, clean), nil
}

func (l *LocalArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	dst, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	// 先写临时文件再改名，避免读到半个文件
	tmp := dst + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, dst)
}

func (l *LocalArchive) Get(ctx context.Context, key string) ([]byte, error) {
	src, err := l.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(src)
	if errors.Is(err, os.ErrNotExist) {
		return nil, util.ErrArchiveNotFound
	}
	return data, err
}

func (l *LocalArchive) Remove(ctx context.Context, key string) error {
	target, err := l.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return util.ErrArchiveNotFound
		}
		return err
	}
	return nil
}

func (l *LocalArchive) URL(key string) string {
	return "/uploads/" + key
}

type MinioArchive struct {
	Client *minio.Client
	Bucket string
}

// NewMinioArchive 连接 MinIO 并确保桶存在
func NewMinioArchive(ctx context.Context, cfg *config.StorageConfig) (*MinioArchive, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(ctx, cfg.MinioBucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket %s: %w", cfg.MinioBucket, err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.MinioBucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket %s: %w", cfg.MinioBucket, err)
		}
	}
	return &MinioArchive{Client: client, Bucket: cfg.MinioBucket}, nil
}

func (m *MinioArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := m.Client.PutObject(ctx, m.Bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *MinioArchive) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := m.Client.GetObject(ctx, m.Bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, util.ErrArchiveNotFound
		}
		return nil, err
	}
	return data, nil
}

func (m *MinioArchive) Remove(ctx context.Context, key string) error {
	return m.Client.RemoveObject(ctx, m.Bucket, key, minio.RemoveObjectOptions{})
}

func (m *MinioArchive) URL(key string) string {
	return m.Client.EndpointURL().String() + "/" + m.Bucket + "/" + key
}

// OSSArchive 阿里云OSS
type OSSArchive struct {
	Bucket   *oss.Bucket
	Endpoint string
}

func NewOSSArchive(cfg *config.StorageConfig) (*OSSArchive, error) {
	client, err := oss.New(cfg.OSSEndpoint, cfg.OSSAccessKey, cfg.OSSSecretKey)
	if err != nil {
		return nil, err
	}
	bucket, err := client.Bucket(cfg.OSSBucket)
	if err != nil {
		return nil, err
	}
	return &OSSArchive{Bucket: bucket, Endpoint: cfg.OSSEndpoint}, nil
}

func (o *OSSArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return o.Bucket.PutObject(key, bytes.NewReader(data), oss.ContentType(contentType), oss.WithContext(ctx))
}

func (o *OSSArchive) Get(ctx context.Context, key string) ([]byte, error) {
	body, err := o.Bucket.GetObject(key, oss.WithContext(ctx))
	if err != nil {
		var svcErr oss.ServiceError
		if errors.As(err, &svcErr) && svcErr.Code == "NoSuchKey" {
			return nil, util.ErrArchiveNotFound
		}
		return nil, err
	}
	defer body.Close()
	return io.ReadAll(body)
}

func (o *OSSArchive) Remove(ctx context.Context, key string) error {
	return o.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (o *OSSArchive) URL(key string) string {
	return fmt.Sprintf("https://%s.%s/%s", o.Bucket.BucketName, o.Endpoint, key)
}

type StorageService struct {
	Store   ArchiveStore
	Backend string
}

// NewStorageService 按配置选择存储后端，远程后端初始化失败时回退到本地
func NewStorageService(cfg *config.Config) *StorageService {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.Storage.Type {
	case util.StorageMinio:
		store, err := NewMinioArchive(ctx, &cfg.Storage)
		if err == nil {
			return &StorageService{Store: store, Backend: util.StorageMinio}
		}
		logger.Log.Warn("minio storage unavailable, falling back to local", zap.Error(err))
	case util.StorageOSS:
		store, err := NewOSSArchive(&cfg.Storage)
		if err == nil {
			return &StorageService{Store: store, Backend: util.StorageOSS}
		}
		logger.Log.Warn("oss storage unavailable, falling back to local", zap.Error(err))
	}
	return &StorageService{Store: &LocalArchive{Root: cfg.Storage.LocalPath}, Backend: util.StorageLocal}
}

// ImportArchiveKey maps a batch id to its object key. Only uuid batch ids
// are accepted so a key can never leave the imports/ prefix.
func ImportArchiveKey(batchID string) (string, error) {
	id, err := uuid.Parse(batchID)
	if err != nil {
		return "", fmt.Errorf("%w: %q", util.ErrInvalidBatchID, batchID)
	}
	return util.ImportArchivePrefix + id.String() + ".csv", nil
}

// ArchiveImport stores the raw bytes of an import batch and returns their URL.
func (s *StorageService) ArchiveImport(ctx context.Context, batchID string, data []byte) (string, error) {
	key, err := ImportArchiveKey(batchID)
	if err != nil {
		return "", err
	}
	if err := s.Store.Put(ctx, key, data, util.MimeCSV); err != nil {
		return "", err
	}
	return s.Store.URL(key), nil
}

func (s *StorageService) LoadImport(ctx context.Context, batchID string) ([]byte, error) {
	key, err := ImportArchiveKey(batchID)
	if err != nil {
		return nil, err
	}
	return s.Store.Get(ctx, key)
}

func (s *StorageService) DeleteImport(ctx context.Context, batchID string) error {
	key, err := ImportArchiveKey(batchID)
	if err != nil {
		return err
	}
	if err := s.Store.Remove(ctx, key); err != nil {
		return err
	}
	logger.Log.Info("Import archive deleted", zap.String("batch_id", batchID), zap.String("backend", s.Backend))
	return nil
}
