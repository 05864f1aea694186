package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/noxus/internal/common"
	sc "github.com/dmitrijs2005/noxus/internal/server/config"
	"github.com/dmitrijs2005/noxus/internal/server/models"
	"github.com/dmitrijs2005/noxus/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

const avatarUploadExpiry = 15 * time.Minute

var avatarContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// AvatarService hands out presigned upload URLs for profile pictures and
// records the uploaded object's public URL on the profile.
type AvatarService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewAvatarService(db *sql.DB, repomanager repomanager.RepositoryManager, config *sc.Config) *AvatarService {
	return &AvatarService{
		db:          db,
		repomanager: repomanager,
		config:      config,
	}
}

func avatarPrefix(userID string) string {
	return "avatars/" + userID + "/"
}

func (s *AvatarService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

// PresignUpload returns a fresh object key under the caller's prefix and a
// presigned PUT URL for it.
func (s *AvatarService) PresignUpload(ctx context.Context, userID, ext string) (string, string, error) {
	if userID == "" {
		return "", "", common.ErrorUnauthorized
	}
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %q", common.ErrorValidation, ext)
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", "", err
	}

	key := avatarPrefix(userID) + uuid.NewString() + "." + ext
	bucket := s.config.S3Bucket

	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket:      &bucket,
		Key:         &key,
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(avatarUploadExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// SetAvatar points the caller's profile at the object stored under key.
func (s *AvatarService) SetAvatar(ctx context.Context, userID, key string) (*models.Profile, error) {
	if userID == "" {
		return nil, common.ErrorUnauthorized
	}
	if !strings.HasPrefix(key, avatarPrefix(userID)) || strings.Contains(key, "..") {
		return nil, common.ErrorForbidden
	}

	return s.repomanager.Profiles(s.db).SetAvatar(ctx, userID, s.PublicURL(key))
}

// PublicURL is the address the stored object is served from.
func (s *AvatarService) PublicURL(key string) string {
	return strings.TrimSuffix(s.config.S3PublicURL, "/") + "/" + key
}
