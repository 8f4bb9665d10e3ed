package repository

import (
	"context"

	"tush00nka/chathub/internal/model"

	"gorm.io/gorm"
)

type MessageRepository interface {
	Create(ctx context.Context, message *model.Message) error
	FindByID(ctx context.Context, id uint) (*model.Message, error)
	FindByIDs(ctx context.Context, ids []uint) ([]model.Message, error)
	// FindByChat returns every message of a chat, oldest first.
	FindByChat(ctx context.Context, chatID uint) ([]model.Message, error)
	// Latest returns the newest message of a chat.
	Latest(ctx context.Context, chatID uint) (*model.Message, error)
	Delete(ctx context.Context, id uint) error
	// DeleteByChat removes every message of a chat in one operation and
	// reports how many were removed.
	DeleteByChat(ctx context.Context, chatID uint) (int64, error)
}

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &messageRepository{db: db}
}

func withAttachments(db *gorm.DB) *gorm.DB {
	return db.Preload("Attachments", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *messageRepository) Create(ctx context.Context, message *model.Message) error {
	for i := range message.Attachments {
		message.Attachments[i].Position = i
	}
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *messageRepository) FindByID(ctx context.Context, id uint) (*model.Message, error) {
	var message model.Message
	if err := withAttachments(r.db.WithContext(ctx)).First(&message, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

func (r *messageRepository) FindByIDs(ctx context.Context, ids []uint) ([]model.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var messages []model.Message
	err := withAttachments(r.db.WithContext(ctx)).Where("id IN ?", ids).Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) FindByChat(ctx context.Context, chatID uint) ([]model.Message, error) {
	var messages []model.Message
	err := withAttachments(r.db.WithContext(ctx)).
		Where("chat_id = ?", chatID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (r *messageRepository) Latest(ctx context.Context, chatID uint) (*model.Message, error) {
	var message model.Message
	err := withAttachments(r.db.WithContext(ctx)).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Order("id DESC").
		First(&message).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &message, nil
}

func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", id).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Message{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *messageRepository) DeleteByChat(ctx context.Context, chatID uint) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&model.Message{}).Select("id").Where("chat_id = ?", chatID)
		if err := tx.Where("message_id IN (?)", ids).Delete(&model.Attachment{}).Error; err != nil {
			return err
		}
		res := tx.Where("chat_id = ?", chatID).Delete(&model.Message{})
		deleted = res.RowsAffected
		return res.Error
	})
	return deleted, err
}
