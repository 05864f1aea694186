package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/dmitrijs2005/noxus/internal/filex"
	"github.com/dmitrijs2005/noxus/internal/netx"
)

// MaxAvatarSize caps uploaded avatar files.
const MaxAvatarSize = 5 << 20

var avatarContentTypes = map[string]string{
	"png":  "image/png",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// uploadFn is a seam for tests.
var uploadFn = netx.UploadToPresignedURL

// AvatarService uploads a picture to object storage through a presigned
// URL and records it on the profile.
type AvatarService struct {
	client client.Client
}

func NewAvatarService(c client.Client) *AvatarService {
	return &AvatarService{client: c}
}

// Upload sends the image at path and returns the updated profile.
func (a *AvatarService) Upload(ctx context.Context, path string) (*models.Profile, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported image type %q", client.ErrInvalidArgument, ext)
	}

	data, err := filex.ReadFileLimited(path, MaxAvatarSize)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}

	key, url, err := a.client.PresignAvatarUpload(ctx, ext)
	if err != nil {
		return nil, fmt.Errorf("presign avatar upload: %w", err)
	}

	if err := uploadFn(ctx, url, contentType, data); err != nil {
		return nil, fmt.Errorf("upload avatar: %w", err)
	}

	return a.client.SetAvatar(ctx, key)
}
