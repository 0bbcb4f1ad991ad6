package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	sc "github.com/fitlifeapp/fitlife/internal/server/config"
)

// MediaService hands out presigned PUT URLs for profile photos backed by an
// S3-compatible object store.
type MediaService struct {
	config *sc.Config
}

func NewMediaService(config *sc.Config) *MediaService {
	return &MediaService{config: config}
}

// Enabled reports whether an object store is configured. When false the
// photo-url endpoint answers 404 and clients fall back to inline storage.
func (s *MediaService) Enabled() bool {
	return s.config.S3Bucket != ""
}

// photoStorageKey spreads objects by date to keep bucket listings usable.
func photoStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%d/%d/%s-%v", d.Year(), d.Month(), d.Day(), userID, uuid.New())
}

func (s *MediaService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return s3.NewPresignClient(client), nil
}

// publicURL is the stable address of a stored object, preferring the
// configured public base URL over the raw endpoint.
func (s *MediaService) publicURL(key string) string {
	base := s.config.S3PublicBaseURL
	if base == "" {
		base = strings.TrimRight(s.config.S3BaseEndpoint, "/") + "/" + s.config.S3Bucket
	}
	return strings.TrimRight(base, "/") + "/" + key
}

// GetPhotoUploadURL returns a short-lived PUT target for a new profile photo
// plus the URL the photo will be reachable at once uploaded.
func (s *MediaService) GetPhotoUploadURL(ctx context.Context, userID, contentType string) (uploadURL, photoURL string, err error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	bucket := s.config.S3Bucket
	key := photoStorageKey(userID)

	input := &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}
	if contentType != "" {
		input.ContentType = &contentType
	}

	req, err := presignClient.PresignPutObject(ctx, input, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", "", err
	}

	return req.URL, s.publicURL(key), nil
}
