package repository

import (
	"context"
	"errors"

	"chatsphere/backend/internal/model"

	"gorm.io/gorm"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *model.Chat) error
	GetByID(ctx context.Context, chatID uint) (*model.Chat, error)
	GetDirectForUsers(ctx context.Context, user1ID, user2ID uint) (*model.Chat, error)
	AddUser(ctx context.Context, chatID, userID uint) error
	RemoveUser(ctx context.Context, chatID, userID uint) error
	UpdateName(ctx context.Context, chatID uint, name string) error
	Delete(ctx context.Context, chatID uint) error
	GetChatsForUser(ctx context.Context, userID uint, offset, limit int) ([]model.Chat, error)
	MemberCount(ctx context.Context, chatID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) Create(ctx context.Context, chat *model.Chat) error {
	return r.db.WithContext(ctx).Create(chat).Error
}

// GetByID loads the chat together with its membership set.
func (r *chatRepository) GetByID(ctx context.Context, chatID uint) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).Preload("Users").First(&chat, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

// GetDirectForUsers finds the non-group chat both users belong to.
func (r *chatRepository) GetDirectForUsers(ctx context.Context, user1ID, user2ID uint) (*model.Chat, error) {
	var chat model.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_users cu1 ON cu1.chat_id = chats.id AND cu1.user_id = ?", user1ID).
		Joins("JOIN chat_users cu2 ON cu2.chat_id = chats.id AND cu2.user_id = ?", user2ID).
		Where("chats.is_group = ?", false).
		Preload("Users").
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &chat, nil
}

func (r *chatRepository) AddUser(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Exec(`
        INSERT INTO chat_users (chat_id, user_id)
        VALUES (?, ?)
        ON CONFLICT DO NOTHING
    `, chatID, userID).Error
}

func (r *chatRepository) RemoveUser(ctx context.Context, chatID, userID uint) error {
	return r.db.WithContext(ctx).Exec(`
        DELETE FROM chat_users WHERE chat_id = ? AND user_id = ?
    `, chatID, userID).Error
}

func (r *chatRepository) UpdateName(ctx context.Context, chatID uint, name string) error {
	return r.db.WithContext(ctx).Model(&model.Chat{}).Where("id = ?", chatID).
		Update("name", name).Error
}

// Delete removes the chat, its membership rows and its messages in one transaction.
func (r *chatRepository) Delete(ctx context.Context, chatID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chat_id = ?", chatID).Delete(&model.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM chat_users WHERE chat_id = ?`, chatID).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Chat{}, chatID).Error
	})
}

// GetChatsForUser returns the user's chats ordered by most recent activity,
// falling back to chat creation time for chats without messages.
func (r *chatRepository) GetChatsForUser(ctx context.Context, userID uint, offset, limit int) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_users cu ON cu.chat_id = chats.id AND cu.user_id = ?", userID).
		Order(`COALESCE(
            (SELECT MAX(m.created_at) FROM messages m WHERE m.chat_id = chats.id AND m.deleted_at IS NULL),
            chats.created_at) DESC`).
		Offset(offset).
		Limit(limit).
		Preload("Users").
		Find(&chats).Error
	if err != nil {
		return nil, err
	}
	return chats, nil
}

func (r *chatRepository) MemberCount(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("chat_users").Where("chat_id = ?", chatID).Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
