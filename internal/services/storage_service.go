// internal/services/storage_service.go
package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/sneakers-backend/internal/config"
)

// ImageRef is what the lifecycle stores for an uploaded image: a resolvable
// URL and the storage key needed to remove it later.
type ImageRef struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// ImageRemover deletes previously uploaded images.
type ImageRemover interface {
	DeleteFile(ctx context.Context, key string) error
}

type StorageService struct {
	s3Client *s3.S3
	config   *config.Config
	log      *logrus.Entry
}

type UploadOptions struct {
	Folder       string
	MaxSize      int64 // in bytes
	AllowedTypes []string
}

const (
	FolderItems      = "items"
	FolderTradeItems = "trade-items"
	FolderTrades     = "trades"
)

func NewStorageService(cfg *config.Config) (*StorageService, error) {
	s := &StorageService{
		config: cfg,
		log:    logrus.WithField("component", "storage"),
	}
	if cfg.AWS.AccessKeyID == "" {
		// No credentials: uploads are simulated for local development.
		return s, nil
	}

	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWS.Region),
		Credentials: credentials.NewStaticCredentials(
			cfg.AWS.AccessKeyID,
			cfg.AWS.SecretAccessKey,
			"",
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	s.s3Client = s3.New(sess)
	return s, nil
}

// UploadOptionsFor returns the limits applied to a folder.
func UploadOptionsFor(folder string) UploadOptions {
	return UploadOptions{
		Folder:       folder,
		MaxSize:      5 * 1024 * 1024, // 5MB
		AllowedTypes: []string{".jpg", ".jpeg", ".png", ".gif", ".webp"},
	}
}

func (s *StorageService) UploadImage(ctx context.Context, header *multipart.FileHeader, options UploadOptions) (*ImageRef, error) {
	if options.MaxSize > 0 && header.Size > options.MaxSize {
		return nil, ValidationError("file %s is %d bytes, the limit is %d", header.Filename, header.Size, options.MaxSize)
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if len(options.AllowedTypes) > 0 && !contains(options.AllowedTypes, ext) {
		return nil, ValidationError("file type %s is not allowed", ext)
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	contentType := http.DetectContentType(fileBytes)
	if !isImageContentType(contentType) {
		return nil, ValidationError("file %s is not an image", header.Filename)
	}

	key := s.generateKey(header.Filename, options.Folder)
	if s.s3Client == nil {
		s.log.WithField("key", key).Debug("Simulated image upload")
		return &ImageRef{
			URL: fmt.Sprintf("http://%s:%s/uploads/%s", s.config.Server.Host, s.config.Server.Port, key),
			Key: key,
		}, nil
	}

	_, err = s.s3Client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.config.AWS.S3Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(fileBytes),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(fileBytes))),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload to S3: %w", err)
	}

	return &ImageRef{URL: s.objectURL(key), Key: key}, nil
}

func (s *StorageService) DeleteFile(ctx context.Context, key string) error {
	if s.s3Client == nil {
		s.log.WithField("key", key).Debug("Simulated image delete")
		return nil
	}

	_, err := s.s3Client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.config.AWS.S3Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete file from S3: %w", err)
	}
	return nil
}

// RemoveImages deletes every ref, logging failures instead of returning them.
func RemoveImages(ctx context.Context, remover ImageRemover, keys []string, log *logrus.Entry) {
	if remover == nil {
		return
	}
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := remover.DeleteFile(ctx, key); err != nil {
			log.WithError(err).WithField("key", key).Warn("Failed to delete image")
		}
	}
}

func (s *StorageService) generateKey(originalName, folder string) string {
	ext := strings.ToLower(filepath.Ext(originalName))
	filename := fmt.Sprintf("%s_%s%s", time.Now().Format("20060102"), uuid.New().String()[:8], ext)
	if folder != "" {
		return folder + "/" + filename
	}
	return filename
}

func (s *StorageService) objectURL(key string) string {
	if s.config.AWS.CloudFrontURL != "" {
		return fmt.Sprintf("%s/%s", s.config.AWS.CloudFrontURL, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.config.AWS.S3Bucket, s.config.AWS.Region, key)
}

func isImageContentType(contentType string) bool {
	switch contentType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
		return true
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
