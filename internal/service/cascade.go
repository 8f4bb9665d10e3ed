package service

import (
	"context"
	"fmt"
	"log/slog"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/repository"
)

// CascadeDeleter removes the messages of a deleted chat together with their
// attachment files. File removal is best effort; a failure is logged and the
// records are deleted anyway.
type CascadeDeleter struct {
	messages repository.MessageRepository
	files    FileRemover
	log      *slog.Logger
}

func NewCascadeDeleter(messages repository.MessageRepository, files FileRemover, log *slog.Logger) *CascadeDeleter {
	return &CascadeDeleter{messages: messages, files: files, log: log.With("component", "cascade")}
}

func (d *CascadeDeleter) DeleteChatMessages(ctx context.Context, chatID uint) error {
	messages, err := d.messages.FindByChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("list messages of chat %d: %w", chatID, err)
	}

	d.RemoveFiles(ctx, model.AttachmentPaths(messages))

	deleted, err := d.messages.DeleteByChat(ctx, chatID)
	if err != nil {
		return fmt.Errorf("delete messages of chat %d: %w", chatID, err)
	}
	d.log.Debug("chat messages deleted", "chat_id", chatID, "count", deleted)
	return nil
}

// RemoveFiles deletes each path, logging the ones that fail.
func (d *CascadeDeleter) RemoveFiles(ctx context.Context, paths []string) {
	if d.files == nil {
		return
	}
	for _, path := range paths {
		if err := d.files.Remove(ctx, path); err != nil {
			d.log.Warn("failed to remove attachment", "path", path, "error", err)
		}
	}
}
