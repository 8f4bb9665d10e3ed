package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/pkg/apperror"
	"tush00nka/chathub/internal/repository"

	"github.com/samber/lo"
)

// chatService координирует операции над чатами и рассылает события
type chatService struct {
	chats   repository.ChatRepository
	users   repository.Directory
	views   *ViewAssembler
	cascade *CascadeDeleter
	events  EventDispatcher
	log     *slog.Logger
}

// NewChatService создает новый экземпляр ChatService
func NewChatService(
	chats repository.ChatRepository,
	users repository.Directory,
	views *ViewAssembler,
	cascade *CascadeDeleter,
	events EventDispatcher,
	log *slog.Logger,
) ChatService {
	return &chatService{
		chats:   chats,
		users:   users,
		views:   views,
		cascade: cascade,
		events:  events,
		log:     log.With("component", "chat"),
	}
}

func (s *chatService) SearchAvailableUsers(ctx context.Context, requester uint) ([]model.Profile, error) {
	profiles, err := s.users.ListExcept(ctx, requester)
	if err != nil {
		return nil, apperror.Internal("failed to list users", err)
	}
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return profiles, nil
}

func (s *chatService) ListChats(ctx context.Context, requester uint) ([]model.ChatView, error) {
	views, err := s.views.Assemble(ctx, repository.ChatFilter{Member: requester})
	if err != nil {
		return nil, apperror.Internal("failed to list chats", err)
	}
	return views, nil
}

func (s *chatService) GetOrCreateDirectChat(ctx context.Context, requester, otherUserID uint) (*model.ChatView, error) {
	if _, err := s.users.Profile(ctx, otherUserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Receiver does not exist")
		}
		return nil, apperror.Internal("failed to resolve receiver", err)
	}
	if otherUserID == requester {
		return nil, apperror.Validation("You cannot chat with yourself")
	}

	existing, err := s.chats.FindDirect(ctx, requester, otherUserID)
	switch {
	case err == nil:
		return s.reread(ctx, existing.ID)
	case !errors.Is(err, repository.ErrNotFound):
		return nil, apperror.Internal("failed to look up chat", err)
	}

	// Между FindDirect и Create возможна гонка, дубликат чата допускается
	chat := &model.Chat{
		Name:         model.DirectChatName,
		Participants: model.NewParticipantSet(requester, otherUserID),
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, apperror.Internal("failed to create chat", err)
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	s.notify(model.EventNewChat, view, otherUserID)
	return view, nil
}

func (s *chatService) CreateGroupChat(ctx context.Context, requester uint, name string, participantIDs []uint) (*model.ChatView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Group name is required")
	}
	if slices.Contains(participantIDs, requester) {
		return nil, apperror.Validation("Participants array should not contain the group creator")
	}

	members := model.NewParticipantSet(append(slices.Clone(participantIDs), requester)...)
	if members.Len() < model.MinGroupSize {
		return nil, apperror.Validation("Seems like you have passed duplicate participants")
	}

	admin := requester
	chat := &model.Chat{
		Name:         name,
		IsGroup:      true,
		AdminID:      &admin,
		Participants: members,
	}
	if err := s.chats.Create(ctx, chat); err != nil {
		return nil, apperror.Internal("failed to create group chat", err)
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	s.notify(model.EventNewChat, view, members.Without(requester)...)
	return view, nil
}

func (s *chatService) GetGroupChatDetails(ctx context.Context, requester, chatID uint) (*model.ChatView, error) {
	views, err := s.views.Assemble(ctx, repository.ChatFilter{IDs: []uint{chatID}, GroupOnly: true})
	if err != nil {
		return nil, apperror.Internal("failed to load group chat", err)
	}
	if len(views) == 0 {
		return nil, apperror.NotFound("Group chat does not exist")
	}
	if !slices.Contains(views[0].ParticipantIDs(), requester) {
		return nil, apperror.Forbidden("You are not a part of this group chat")
	}
	return &views[0], nil
}

func (s *chatService) RenameGroupChat(ctx context.Context, requester, chatID uint, name string) (*model.ChatView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.Validation("Group name is required")
	}

	chat, err := s.adminGroup(ctx, requester, chatID)
	if err != nil {
		return nil, err
	}
	if err := s.chats.Rename(ctx, chat.ID, name); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Group chat does not exist"), "failed to rename group chat")
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	// Переименование получают все участники, включая инициатора
	s.notify(model.EventGroupRenamed, view, view.ParticipantIDs()...)
	return view, nil
}

func (s *chatService) DeleteGroupChat(ctx context.Context, requester, chatID uint) error {
	chat, err := s.adminGroup(ctx, requester, chatID)
	if err != nil {
		return err
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return err
	}
	if err := s.destroy(ctx, chat.ID); err != nil {
		return err
	}

	s.notify(model.EventLeaveChat, view, chat.Participants.Without(requester)...)
	return nil
}

func (s *chatService) DeleteDirectChat(ctx context.Context, requester, chatID uint) error {
	chats, err := s.chats.Find(ctx, repository.ChatFilter{IDs: []uint{chatID}, DirectOnly: true})
	if err != nil {
		return apperror.Internal("failed to load chat", err)
	}
	if len(chats) == 0 {
		return apperror.NotFound("Chat does not exist")
	}
	chat := chats[0]
	if !chat.Participants.Has(requester) {
		return apperror.Forbidden("You are not a part of this chat")
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return err
	}
	if err := s.destroy(ctx, chat.ID); err != nil {
		return err
	}

	s.notify(model.EventLeaveChat, view, chat.Participants.Without(requester)...)
	return nil
}

func (s *chatService) LeaveGroupChat(ctx context.Context, requester, chatID uint) (*model.ChatView, error) {
	chat, err := s.group(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Participants.Has(requester) {
		return nil, apperror.Forbidden("You are not a part of this group chat")
	}
	if chat.IsAdmin(requester) {
		return nil, apperror.Validation("Admin cannot leave the group chat, delete it instead")
	}

	if err := s.chats.RemoveParticipant(ctx, chat.ID, requester); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "You are not a part of this group chat"), "failed to leave group chat")
	}
	// Оставшиеся участники не уведомляются
	return s.reread(ctx, chat.ID)
}

func (s *chatService) AddParticipant(ctx context.Context, requester, chatID, participantID uint) (*model.ChatView, error) {
	chat, err := s.adminGroup(ctx, requester, chatID)
	if err != nil {
		return nil, err
	}
	if chat.Participants.Has(participantID) {
		return nil, apperror.Conflict("Participant already in a group chat")
	}
	if _, err := s.users.Profile(ctx, participantID); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "User does not exist"), "failed to resolve participant")
	}

	if err := s.chats.AddParticipant(ctx, chat.ID, participantID); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Group chat does not exist"), "failed to add participant")
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	s.notify(model.EventNewChat, view, participantID)
	return view, nil
}

func (s *chatService) RemoveParticipant(ctx context.Context, requester, chatID, participantID uint) (*model.ChatView, error) {
	chat, err := s.adminGroup(ctx, requester, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.Participants.Has(participantID) {
		return nil, apperror.Validation("Participant does not exist in the group chat")
	}
	if participantID == requester {
		return nil, apperror.Validation("Admin cannot be removed from the group chat")
	}

	if err := s.chats.RemoveParticipant(ctx, chat.ID, participantID); err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Participant does not exist in the group chat"), "failed to remove participant")
	}

	view, err := s.reread(ctx, chat.ID)
	if err != nil {
		return nil, err
	}
	s.notify(model.EventLeaveChat, view, participantID)
	return view, nil
}

func (s *chatService) group(ctx context.Context, chatID uint) (*model.Chat, error) {
	chat, err := s.chats.FindGroup(ctx, chatID)
	if err != nil {
		return nil, apperror.Wrap(notFoundAs(err, "Group chat does not exist"), "failed to load group chat")
	}
	return chat, nil
}

// adminGroup loads a group chat and checks that requester is its admin.
func (s *chatService) adminGroup(ctx context.Context, requester, chatID uint) (*model.Chat, error) {
	chat, err := s.group(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.IsAdmin(requester) {
		return nil, apperror.Forbidden("You are not an admin")
	}
	return chat, nil
}

func (s *chatService) destroy(ctx context.Context, chatID uint) error {
	if err := s.chats.Delete(ctx, chatID); err != nil {
		return apperror.Wrap(notFoundAs(err, "Chat does not exist"), "failed to delete chat")
	}
	if err := s.cascade.DeleteChatMessages(ctx, chatID); err != nil {
		return apperror.Internal("failed to delete chat messages", err)
	}
	return nil
}

// reread assembles the view of a chat that must exist.
func (s *chatService) reread(ctx context.Context, chatID uint) (*model.ChatView, error) {
	view, err := s.views.View(ctx, chatID)
	if err != nil {
		return nil, apperror.Internal("Internal server error", err)
	}
	return view, nil
}

func (s *chatService) notify(event model.Event, view *model.ChatView, recipients ...uint) {
	for _, id := range lo.Uniq(recipients) {
		s.events.Deliver(id, event, view)
	}
}

// notFoundAs turns a repository miss into a NotFound with message.
func notFoundAs(err error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperror.NotFound(message)
	}
	return err
}
