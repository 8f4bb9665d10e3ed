package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func TestLocal_PutRemove(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	store, err := NewLocal(afero.NewMemMapFs(), "/srv/public/images", "http://localhost:8080/images/")
	req.NoError(err)

	key := AttachmentKey(12, "My Photo.PNG")
	req.True(strings.HasPrefix(key, "chats/12/"))
	req.True(strings.HasSuffix(key, "/my-photo.png"))

	file, err := store.Put(ctx, key, "image/png", strings.NewReader("png-bytes"), 9)
	req.NoError(err)
	req.Equal(key, file.Path)
	req.Equal("http://localhost:8080/images/"+key, file.URL)
	req.EqualValues(9, file.Size)
	req.True(store.Exists(key))

	req.NoError(store.Remove(ctx, key))
	req.False(store.Exists(key))

	req.NoError(store.Remove(ctx, key), "removing a missing file is not an error")
}

func TestAttachmentKeyStripsDirectories(t *testing.T) {
	key := AttachmentKey(3, "../../etc/passwd")
	require.True(t, strings.HasSuffix(key, "/passwd"))
	require.NotContains(t, key, "..")
}
