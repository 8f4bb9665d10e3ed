// Package storage holds attachment file stores. Every backend stores an
// object under a path and can remove it by the same path.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"tush00nka/chathub/internal/model"

	"github.com/google/uuid"
)

// MaxPresignTTL is the longest validity S3 allows for a presigned URL. Set a
// public URL for buckets whose objects must stay reachable longer.
const MaxPresignTTL = 7 * 24 * time.Hour

type FileStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (*model.StoredFile, error)
	Remove(ctx context.Context, path string) error
}

// AttachmentKey builds the object key for a file attached to a chat message.
func AttachmentKey(chatID uint, filename string) string {
	return path.Join("chats", fmt.Sprint(chatID), uuid.NewString(), sanitizeFilename(filename))
}

func sanitizeFilename(name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	if name == "." || name == "/" || name == "" {
		return "file"
	}
	return name
}

func publicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}
