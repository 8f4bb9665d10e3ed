package repository

import (
	"context"
	"time"

	"tush00nka/chathub/internal/model"

	"gorm.io/gorm"
)

// ChatFilter selects chats. Zero fields do not constrain the query.
type ChatFilter struct {
	IDs        []uint
	GroupOnly  bool
	DirectOnly bool
	Member     uint
}

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	// Find returns matching chats with participants loaded, most recently
	// updated first.
	Find(ctx context.Context, filter ChatFilter) ([]model.Chat, error)
	FindByID(ctx context.Context, id uint) (*model.Chat, error)
	FindGroup(ctx context.Context, id uint) (*model.Chat, error)
	// FindDirect returns the direct chat whose participants are exactly
	// {userA, userB}.
	FindDirect(ctx context.Context, userA, userB uint) (*model.Chat, error)
	Rename(ctx context.Context, id uint, name string) error
	AddParticipant(ctx context.Context, chatID, userID uint) error
	RemoveParticipant(ctx context.Context, chatID, userID uint) error
	// SetLastMessage returns ErrNotFound if the chat no longer exists.
	SetLastMessage(ctx context.Context, chatID uint, messageID *uint) error
	Delete(ctx context.Context, id uint) error
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	chat.SyncMembers()
	if err := r.db.WithContext(ctx).Create(chat).Error; err != nil {
		return err
	}
	chat.SyncParticipants()
	return nil
}

func (r *chatRepository) Find(ctx context.Context, filter ChatFilter) ([]model.Chat, error) {
	q := r.db.WithContext(ctx).Model(&model.Chat{})
	if len(filter.IDs) > 0 {
		q = q.Where("id IN ?", filter.IDs)
	}
	if filter.GroupOnly {
		q = q.Where("is_group = ?", true)
	}
	if filter.DirectOnly {
		q = q.Where("is_group = ?", false)
	}
	if filter.Member != 0 {
		members := r.db.Model(&model.ChatMember{}).Select("chat_id").Where("user_id = ?", filter.Member)
		q = q.Where("id IN (?)", members)
	}

	var chats []model.Chat
	err := q.
		Preload("Members", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}

	for i := range chats {
		chats[i].SyncParticipants()
	}
	return chats, nil
}

func (r *chatRepository) FindByID(ctx context.Context, id uint) (*model.Chat, error) {
	return r.first(ctx, ChatFilter{IDs: []uint{id}})
}

func (r *chatRepository) FindGroup(ctx context.Context, id uint) (*model.Chat, error) {
	return r.first(ctx, ChatFilter{IDs: []uint{id}, GroupOnly: true})
}

func (r *chatRepository) FindDirect(ctx context.Context, userA, userB uint) (*model.Chat, error) {
	chats, err := r.Find(ctx, ChatFilter{DirectOnly: true, Member: userA})
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Participants.Equal(userA, userB) {
			return &chats[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *chatRepository) first(ctx context.Context, filter ChatFilter) (*model.Chat, error) {
	chats, err := r.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	if len(chats) == 0 {
		return nil, ErrNotFound
	}
	return &chats[0], nil
}

func (r *chatRepository) Rename(ctx context.Context, id uint, name string) error {
	res := r.db.WithContext(ctx).Model(&model.Chat{}).Where("id = ?", id).
		Updates(map[string]any{"name": name, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *chatRepository) AddParticipant(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		err := tx.Model(&model.ChatMember{}).
			Select("COALESCE(MAX(position), -1) + 1").
			Where("chat_id = ?", chatID).
			Scan(&next).Error
		if err != nil {
			return err
		}
		member := model.ChatMember{ChatID: chatID, UserID: userID, Position: next}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		return touch(tx, chatID)
	})
}

func (r *chatRepository) RemoveParticipant(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("chat_id = ? AND user_id = ?", chatID, userID).Delete(&model.ChatMember{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return touch(tx, chatID)
	})
}

func (r *chatRepository) SetLastMessage(ctx context.Context, chatID uint, messageID *uint) error {
	res := r.db.WithContext(ctx).Model(&model.Chat{}).Where("id = ?", chatID).
		Updates(map[string]any{"last_message_id": messageID, "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *chatRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", id).Delete(&model.ChatMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Chat{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func touch(tx *gorm.DB, chatID uint) error {
	return tx.Model(&model.Chat{}).Where("id = ?", chatID).Update("updated_at", time.Now()).Error
}
