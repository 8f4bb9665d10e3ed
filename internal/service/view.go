package service

import (
	"context"
	"fmt"

	"tush00nka/chathub/internal/model"
	"tush00nka/chathub/internal/repository"

	"github.com/samber/lo"
)

// ViewAssembler builds chat views. Every operation that hands a chat to a
// client goes through Assemble, so all views share one shape.
type ViewAssembler struct {
	chats    repository.ChatRepository
	messages repository.MessageRepository
	users    repository.Directory
}

func NewViewAssembler(chats repository.ChatRepository, messages repository.MessageRepository, users repository.Directory) *ViewAssembler {
	return &ViewAssembler{chats: chats, messages: messages, users: users}
}

// Assemble returns views of the chats matching filter, most recently updated
// first. Participants without a resolvable profile are left out.
func (a *ViewAssembler) Assemble(ctx context.Context, filter repository.ChatFilter) ([]model.ChatView, error) {
	chats, err := a.chats.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("find chats: %w", err)
	}
	if len(chats) == 0 {
		return []model.ChatView{}, nil
	}

	lastIDs := lo.FilterMap(chats, func(c model.Chat, _ int) (uint, bool) {
		if c.LastMessageID == nil {
			return 0, false
		}
		return *c.LastMessageID, true
	})
	var last []model.Message
	if len(lastIDs) > 0 {
		if last, err = a.messages.FindByIDs(ctx, lastIDs); err != nil {
			return nil, fmt.Errorf("find last messages: %w", err)
		}
	}
	lastByID := lo.KeyBy(last, func(m model.Message) uint { return m.ID })

	userIDs := lo.FlatMap(chats, func(c model.Chat, _ int) []uint { return c.Participants.IDs() })
	userIDs = append(userIDs, lo.Map(last, func(m model.Message, _ int) uint { return m.SenderID })...)
	profiles, err := a.users.Profiles(ctx, lo.Uniq(userIDs))
	if err != nil {
		return nil, fmt.Errorf("resolve profiles: %w", err)
	}

	return lo.Map(chats, func(c model.Chat, _ int) model.ChatView {
		view := model.ChatView{
			ID:           c.ID,
			Name:         c.Name,
			IsGroupChat:  c.IsGroup,
			Participants: make([]model.Profile, 0, c.Participants.Len()),
			CreatedAt:    c.CreatedAt,
			UpdatedAt:    c.UpdatedAt,
		}
		if c.IsGroup {
			view.Admin = c.AdminID
		}
		for _, id := range c.Participants.IDs() {
			if p, ok := profiles[id]; ok {
				view.Participants = append(view.Participants, p)
			}
		}
		if c.LastMessageID != nil {
			if m, ok := lastByID[*c.LastMessageID]; ok {
				mv := messageView(m, profiles)
				view.LastMessage = &mv
			}
		}
		return view
	}), nil
}

// View returns the view of a single chat, or repository.ErrNotFound.
func (a *ViewAssembler) View(ctx context.Context, chatID uint) (*model.ChatView, error) {
	views, err := a.Assemble(ctx, repository.ChatFilter{IDs: []uint{chatID}})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, repository.ErrNotFound
	}
	return &views[0], nil
}

// Messages resolves message senders to reduced profiles, keeping input order.
func (a *ViewAssembler) Messages(ctx context.Context, messages []model.Message) ([]model.MessageView, error) {
	if len(messages) == 0 {
		return []model.MessageView{}, nil
	}
	senders := lo.Uniq(lo.Map(messages, func(m model.Message, _ int) uint { return m.SenderID }))
	profiles, err := a.users.Profiles(ctx, senders)
	if err != nil {
		return nil, fmt.Errorf("resolve senders: %w", err)
	}
	return lo.Map(messages, func(m model.Message, _ int) model.MessageView {
		return messageView(m, profiles)
	}), nil
}

func messageView(m model.Message, profiles map[uint]model.Profile) model.MessageView {
	sender := model.Sender{ID: m.SenderID}
	if p, ok := profiles[m.SenderID]; ok {
		sender = p.Sender()
	}
	attachments := m.Attachments
	if attachments == nil {
		attachments = []model.Attachment{}
	}
	return model.MessageView{
		ID:          m.ID,
		Chat:        m.ChatID,
		Sender:      sender,
		Content:     m.Content,
		Attachments: attachments,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
