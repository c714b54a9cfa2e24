package service

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"time"

	"chatsphere/backend/internal/config"
	"chatsphere/backend/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// MediaService stores user-uploaded media (profile pictures) in S3-compatible
// storage.
type MediaService struct {
	config   *config.Config
	uploader *manager.Uploader
	s3Client *s3.Client
}

func NewMediaService(cfg *config.Config) (*MediaService, error) {
	s3Opts := []func(*s3.Options){}

	if cfg.S3Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true // Обязательно для MinIO
		})
	}

	credsProvider := credentials.NewStaticCredentialsProvider(
		cfg.S3AccessKeyID,
		cfg.S3SecretAccessKey,
		"",
	)

	awsCfg := aws.Config{
		Region:      cfg.S3Region,
		Credentials: credsProvider,
	}

	s3Client := s3.NewFromConfig(awsCfg, s3Opts...)

	service := &MediaService{
		config:   cfg,
		uploader: manager.NewUploader(s3Client),
		s3Client: s3Client,
	}

	log.Printf("🔧 media service initialized with endpoint: %s", cfg.S3Endpoint)
	return service, nil
}

// UploadProfilePicture uploads the picture under a fresh uuid key and returns
// its metadata. The caller is responsible for storing the key on the user.
func (s *MediaService) UploadProfilePicture(ctx context.Context, userID uint, filename, contentType string, size int64, body io.Reader) (*model.FileMetadata, error) {
	fileID := uuid.New().String()
	s3Key := path.Join("avatars", fmt.Sprint(userID), fileID, filename)

	result, err := s.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.config.S3Bucket),
		Key:         aws.String(s3Key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload profile picture: %w", err)
	}

	log.Printf("✅ profile picture uploaded: %s", result.Location)

	return &model.FileMetadata{
		ID:               fileID,
		Filename:         filename,
		Size:             size,
		ContentType:      contentType,
		S3Key:            s3Key,
		S3Bucket:         s.config.S3Bucket,
		UploadedByUserID: userID,
		CreatedAt:        time.Now(),
	}, nil
}

// GeneratePresignedURL returns a temporary download URL for a stored object.
func (s *MediaService) GeneratePresignedURL(ctx context.Context, s3Key string, expires time.Duration) (string, error) {
	presignClient := s3.NewPresignClient(s.s3Client)

	request, err := presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(s3Key),
	}, s3.WithPresignExpires(expires))

	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return request.URL, nil
}

func (s *MediaService) HealthCheck(ctx context.Context) error {
	_, err := s.s3Client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return fmt.Errorf("storage health check failed: %w", err)
	}
	return nil
}
