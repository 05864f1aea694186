package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/noxus/internal/client/client"
	"github.com/dmitrijs2005/noxus/internal/client/client/clienttest"
	"github.com/dmitrijs2005/noxus/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadCall struct {
	url, contentType string
	body             []byte
}

func stubUpload(t *testing.T, err error) *[]uploadCall {
	t.Helper()
	var calls []uploadCall
	old := uploadFn
	uploadFn = func(ctx context.Context, url, contentType string, body []byte) error {
		calls = append(calls, uploadCall{url, contentType, body})
		return err
	}
	t.Cleanup(func() { uploadFn = old })
	return &calls
}

func writeImage(t *testing.T, name string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte("img"), 0o600))
	return p
}

func signedInFake() *clienttest.Fake {
	f := clienttest.New()
	f.SetCurrent(&models.Session{AccessToken: "a", User: models.User{ID: "u1"}})
	f.PutProfile(models.Profile{ID: "u1"})
	return f
}

func TestAvatarService_Upload(t *testing.T) {
	calls := stubUpload(t, nil)
	f := signedInFake()
	svc := NewAvatarService(f)

	p, err := svc.Upload(context.Background(), writeImage(t, "me.PNG"))
	require.NoError(t, err)
	assert.Equal(t, clienttest.AvatarBaseURL+"avatars/u1/avatar.png", p.AvatarURL)

	require.Len(t, *calls, 1)
	assert.Equal(t, f.PresignURL, (*calls)[0].url)
	assert.Equal(t, "image/png", (*calls)[0].contentType)
	assert.Equal(t, []byte("img"), (*calls)[0].body)
}

func TestAvatarService_UnsupportedType(t *testing.T) {
	calls := stubUpload(t, nil)
	f := signedInFake()

	_, err := NewAvatarService(f).Upload(context.Background(), writeImage(t, "me.bmp"))
	assert.ErrorIs(t, err, client.ErrInvalidArgument)
	assert.Empty(t, *calls)
	assert.Empty(t, f.Calls())
}

func TestAvatarService_MissingFile(t *testing.T) {
	stubUpload(t, nil)
	_, err := NewAvatarService(signedInFake()).Upload(context.Background(), filepath.Join(t.TempDir(), "none.jpg"))
	assert.Error(t, err)
}

func TestAvatarService_UploadFailsSkipsSetAvatar(t *testing.T) {
	boom := errors.New("boom")
	stubUpload(t, boom)
	f := signedInFake()

	_, err := NewAvatarService(f).Upload(context.Background(), writeImage(t, "me.jpg"))
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, f.Count("SetAvatar"))
}

func TestAvatarService_PresignFails(t *testing.T) {
	calls := stubUpload(t, nil)
	f := signedInFake()
	f.Fail("PresignAvatarUpload", client.ErrUnauthorized)

	_, err := NewAvatarService(f).Upload(context.Background(), writeImage(t, "me.webp"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Empty(t, *calls)
}
