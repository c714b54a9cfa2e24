package service

import (
	"context"

	"chatsphere/backend/internal/model"
)

// GroupChatRequest carries everything needed to open a group chat.
type GroupChatRequest struct {
	Name      string `json:"name"`
	MemberIDs []uint `json:"member_ids"`
}

// SendMessageRequest carries a single outgoing message.
type SendMessageRequest struct {
	UserID  uint   `json:"user_id"`
	ChatID  uint   `json:"chat_id"`
	Content string `json:"content"`
}

type UserService interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uint) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	SearchUsers(ctx context.Context, prompt string) ([]*model.User, error)
}

type ChatService interface {
	CreateChat(ctx context.Context, requesterID, otherUserID uint) (*model.Chat, error)
	CreateGroup(ctx context.Context, req GroupChatRequest, requesterID uint) (*model.Chat, error)
	FindChatByID(ctx context.Context, chatID uint) (*model.Chat, error)
	AddUserToGroup(ctx context.Context, userID, chatID, requesterID uint) (*model.Chat, error)
	RenameGroup(ctx context.Context, chatID uint, newName string, requesterID uint) (*model.Chat, error)
	RemoveFromGroup(ctx context.Context, chatID, userID, requesterID uint) (*model.Chat, error)
	DeleteChat(ctx context.Context, chatID, targetUserID, requesterID uint) (*model.Chat, error)
	GetChatSummaries(ctx context.Context, userID uint, page, size int) ([]model.ChatSummary, error)
}

type MessageService interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*model.Message, error)
	DeleteMessage(ctx context.Context, messageID, requesterID uint) error
	GetChatsMessages(ctx context.Context, chatID, requesterID uint) ([]model.Message, error)
	FindMessageByID(ctx context.Context, messageID uint) (*model.Message, error)
	MarkMessageRead(ctx context.Context, messageID, requesterID uint) error
}
