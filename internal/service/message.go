package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/pkg/storage"
	"tush00nka/chathub/internal/repository"
)

// MaxAttachments is the number of files one message may carry.
const MaxAttachments = 5

type messageService struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	views    *ViewAssembler
	files    storage.FileStore
	cascade  *CascadeDeleter
	events   EventDispatcher
	log      *slog.Logger
}

func NewMessageService(
	chats repository.ChatRepository,
	messages repository.MessageRepository,
	views *ViewAssembler,
	files storage.FileStore,
	cascade *CascadeDeleter,
	events EventDispatcher,
	log *slog.Logger,
) MessageService {
	return &messageService{
		chats:    chats,
		messages: messages,
		views:    views,
		files:    files,
		cascade:  cascade,
		events:   events,
		log:      log.With("component", "message"),
	}
}

func (s *messageService) GetAllMessages(ctx context.Context, requester, chatID uint) ([]model.MessageView, error) {
	if _, err := s.memberChat(ctx, requester, chatID); err != nil {
		return nil, err
	}

	messages, err := s.messages.FindByChat(ctx, chatID)
	if err != nil {
		return nil, apperror.Internal("failed to load messages", err)
	}
	views, err := s.views.Messages(ctx, messages)
	if err != nil {
		return nil, apperror.Internal("failed to load messages", err)
	}
	return views, nil
}

func (s *messageService) SendMessage(ctx context.Context, requester, chatID uint, content string, files []Upload) (*model.MessageView, error) {
	if strings.TrimSpace(content) == "" && len(files) == 0 {
		return nil, apperror.Validation("Message content or attachment is required")
	}
	if len(files) > MaxAttachments {
		return nil, apperror.Validation(fmt.Sprintf("A message can carry at most %d attachments", MaxAttachments))
	}

	chat, err := s.memberChat(ctx, requester, chatID)
	if err != nil {
		return nil, err
	}

	message := &model.Message{ChatID: chat.ID, SenderID: requester, Content: content}
	for _, f := range files {
		stored, err := s.files.Put(ctx, storage.AttachmentKey(chat.ID, f.Filename), f.ContentType, f.Body, f.Size)
		if err != nil {
			s.cascade.RemoveFiles(ctx, model.AttachmentPaths([]model.Message{*message}))
			return nil, apperror.Internal("failed to store attachment", err)
		}
		message.Attachments = append(message.Attachments, model.Attachment{Path: stored.Path, URL: stored.URL})
	}

	if err := s.messages.Create(ctx, message); err != nil {
		s.cascade.RemoveFiles(ctx, model.AttachmentPaths([]model.Message{*message}))
		return nil, apperror.Internal("failed to save message", err)
	}

	// Чат мог быть удален параллельно, тогда сообщение откатывается
	id := message.ID
	if err := s.chats.SetLastMessage(ctx, chat.ID, &id); err != nil {
		s.rollback(ctx, message, false)
		return nil, apperror.Wrap(notFoundAs(err, "Chat does not exist"), "failed to update chat")
	}

	views, err := s.views.Messages(ctx, []model.Message{*message})
	if err != nil {
		s.rollback(ctx, message, true)
		return nil, apperror.Internal("failed to load message", err)
	}
	view := &views[0]

	for _, id := range chat.Participants.Without(requester) {
		s.events.Deliver(id, model.EventMessageReceived, view)
	}
	return view, nil
}

func (s *messageService) DeleteMessage(ctx context.Context, requester, chatID, messageID uint) (*model.MessageView, error) {
	chat, err := s.memberChat(ctx, requester, chatID)
	if err != nil {
		return nil, err
	}

	message, err := s.messages.FindByID(ctx, messageID)
	if err != nil || message.ChatID != chat.ID {
		if err == nil || errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Message does not exist")
		}
		return nil, apperror.Internal("failed to load message", err)
	}
	if message.SenderID != requester {
		return nil, apperror.Forbidden("You are not the sender of this message")
	}

	views, err := s.views.Messages(ctx, []model.Message{*message})
	if err != nil {
		return nil, apperror.Internal("failed to load message", err)
	}
	view := &views[0]

	s.cascade.RemoveFiles(ctx, model.AttachmentPaths([]model.Message{*message}))
	if err := s.messages.Delete(ctx, message.ID); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Message does not exist"), "failed to delete message")
	}

	// The message is gone either way; a stale lastMessage renders as none.
	if chat.LastMessageID != nil && *chat.LastMessageID == message.ID {
		if err := s.repointLastMessage(ctx, chat.ID); err != nil {
			s.log.Warn("failed to repoint last message", "chat_id", chat.ID, "error", err)
		}
	}

	for _, id := range chat.Participants.Without(requester) {
		s.events.Deliver(id, model.EventMessageDeleted, view)
	}
	return view, nil
}

// memberChat loads a chat and checks that requester participates in it.
func (s *messageService) memberChat(ctx context.Context, requester, chatID uint) (*model.Chat, error) {
	chat, err := s.chats.FindByID(ctx, chatID)
	if err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Chat does not exist"), "failed to load chat")
	}
	if !chat.Participants.Has(requester) {
		return nil, apperror.Forbidden("You are not a part of this chat")
	}
	return chat, nil
}

func (s *messageService) repointLastMessage(ctx context.Context, chatID uint) error {
	latest, err := s.messages.Latest(ctx, chatID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return s.chats.SetLastMessage(ctx, chatID, nil)
	case err != nil:
		return err
	}
	id := latest.ID
	return s.chats.SetLastMessage(ctx, chatID, &id)
}

// rollback removes a message that could not be delivered, with its files.
// With repoint set the chat already points at it and is moved back.
func (s *messageService) rollback(ctx context.Context, message *model.Message, repoint bool) {
	s.cascade.RemoveFiles(ctx, model.AttachmentPaths([]model.Message{*message}))
	if err := s.messages.Delete(ctx, message.ID); err != nil {
		s.log.Warn("failed to roll back message", "message_id", message.ID, "error", err)
		return
	}
	if !repoint {
		return
	}
	if err := s.repointLastMessage(ctx, message.ChatID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.log.Warn("failed to repoint last message", "chat_id", message.ChatID, "error", err)
	}
}
