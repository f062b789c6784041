package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"licenseportal/internal/common"
	"licenseportal/internal/repositories"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// ObjectStore is the object storage the document service writes to
type ObjectStore interface {
	Upload(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error
	GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error)
	EnsureBucketExists(ctx context.Context, bucketName string) error
}

type minioClient struct {
	client *minio.Client
}

func NewMinioObjectStore(endpoint, accessKey, secretKey string, useSSL bool) (ObjectStore, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioClient{client: client}, nil
}

func (m *minioClient) Upload(ctx context.Context, bucketName, objectName, contentType string, reader io.Reader, objectSize int64) error {
	_, err := m.client.PutObject(ctx, bucketName, objectName, reader, objectSize, minio.PutObjectOptions{
		ContentType: contentType,
	})
	return err
}

func (m *minioClient) GetPresignedURL(ctx context.Context, bucketName, objectName string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(ctx, bucketName, objectName, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioClient) EnsureBucketExists(ctx context.Context, bucketName string) error {
	found, err := m.client.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, bucketName, minio.MakeBucketOptions{})
	}
	return nil
}

const (
	maxDocumentSize = 20 << 20
	documentURLTTL  = 15 * time.Minute
)

type UploadedDocument struct {
	ObjectKey string `json:"object_key"`
	URL       string `json:"url"`
}

// DocumentService stores supporting documents for applications. Object keys
// are prefixed with the tenant so buckets never mix tenants' files.
type DocumentService interface {
	Upload(ctx context.Context, tenantID, applicationID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*UploadedDocument, error)
}

type documentService struct {
	store        ObjectStore
	bucket       string
	applications repositories.ApplicationRepository
}

func NewDocumentService(store ObjectStore, bucket string, repos *repositories.Store) DocumentService {
	return &documentService{store: store, bucket: bucket, applications: repos.Applications}
}

func (s *documentService) Upload(ctx context.Context, tenantID, applicationID uuid.UUID, filename, contentType string, reader io.Reader, size int64) (*UploadedDocument, error) {
	if size <= 0 || size > maxDocumentSize {
		return nil, fmt.Errorf("%w: document size must be between 1 byte and %d bytes", common.ErrValidation, maxDocumentSize)
	}
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return nil, fmt.Errorf("%w: filename is required", common.ErrValidation)
	}
	if _, err := s.applications.GetByID(ctx, tenantID, applicationID); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/applications/%s/%s-%s", tenantID, applicationID, uuid.NewString(), name)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := s.store.Upload(ctx, s.bucket, key, contentType, reader, size); err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}
	url, err := s.store.GetPresignedURL(ctx, s.bucket, key, documentURLTTL)
	if err != nil {
		return nil, fmt.Errorf("presign document: %w", err)
	}
	return &UploadedDocument{ObjectKey: key, URL: url}, nil
}
