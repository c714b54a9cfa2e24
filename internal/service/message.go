package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"chatsphere/backend/internal/domain"
	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/repository"
)

type messageService struct {
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	chatRepo    repository.ChatRepository
	cache       repository.SummaryCacheRepository
}

// NewMessageService создает новый экземпляр MessageService. Cache may be nil.
func NewMessageService(
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	chatRepo repository.ChatRepository,
	cache repository.SummaryCacheRepository,
) MessageService {
	return &messageService{
		messageRepo: messageRepo,
		userRepo:    userRepo,
		chatRepo:    chatRepo,
		cache:       cache,
	}
}

func (s *messageService) loadChat(ctx context.Context, chatID uint) (*model.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ChatNotFound(chatID)
		}
		return nil, fmt.Errorf("failed to load chat %d: %w", chatID, err)
	}
	return chat, nil
}

// SendMessage persists a message from a chat member. The message starts unread
// and carries the creation timestamp assigned by the store.
func (s *messageService) SendMessage(ctx context.Context, req SendMessageRequest) (*model.Message, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, domain.NewMessageError(domain.KindInvalid, "message content cannot be empty")
	}

	if _, err := s.userRepo.FindByID(ctx, req.UserID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUserError("user %d not found", req.UserID)
		}
		return nil, fmt.Errorf("failed to resolve sender %d: %w", req.UserID, err)
	}

	chat, err := s.loadChat(ctx, req.ChatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(req.UserID) {
		return nil, domain.NewChatError(domain.KindForbidden, "user %d is not a member of chat %d", req.UserID, req.ChatID)
	}

	message := &model.Message{
		ChatID:   req.ChatID,
		SenderID: req.UserID,
		Content:  req.Content,
		IsRead:   false,
	}

	if err := s.messageRepo.Create(ctx, message); err != nil {
		return nil, fmt.Errorf("failed to send message to chat %d: %w", req.ChatID, err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	return message, nil
}

// DeleteMessage deletes a message by id. Only the sender may delete it; a
// missing id fails before the store delete is ever issued.
func (s *messageService) DeleteMessage(ctx context.Context, messageID, requesterID uint) error {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.MessageNotFound(messageID)
		}
		return fmt.Errorf("failed to load message %d: %w", messageID, err)
	}

	if message.SenderID != requesterID {
		return domain.NewMessageError(domain.KindForbidden, "only the sender can delete a message")
	}

	if err := s.messageRepo.DeleteByID(ctx, messageID); err != nil {
		return fmt.Errorf("failed to delete message %d: %w", messageID, err)
	}

	if chat, err := s.chatRepo.GetByID(ctx, message.ChatID); err == nil {
		invalidateSummaries(ctx, s.cache, chat)
	}

	return nil
}

// GetChatsMessages returns the chat's messages in insertion order. The
// requester must be a member; the message store is not queried otherwise.
func (s *messageService) GetChatsMessages(ctx context.Context, chatID, requesterID uint) ([]model.Message, error) {
	chat, err := s.loadChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.HasMember(requesterID) {
		return nil, domain.NewChatError(domain.KindForbidden, "user %d is not a member of chat %d", requesterID, chatID)
	}

	messages, err := s.messageRepo.FindByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages of chat %d: %w", chatID, err)
	}

	return messages, nil
}

func (s *messageService) FindMessageByID(ctx context.Context, messageID uint) (*model.Message, error) {
	message, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.MessageNotFound(messageID)
		}
		return nil, fmt.Errorf("failed to load message %d: %w", messageID, err)
	}
	return message, nil
}

// MarkMessageRead flips the read flag. Any chat member except the sender may
// mark a message read.
func (s *messageService) MarkMessageRead(ctx context.Context, messageID, requesterID uint) error {
	message, err := s.FindMessageByID(ctx, messageID)
	if err != nil {
		return err
	}

	chat, err := s.loadChat(ctx, message.ChatID)
	if err != nil {
		return err
	}

	if !chat.HasMember(requesterID) {
		return domain.NewChatError(domain.KindForbidden, "user %d is not a member of chat %d", requesterID, message.ChatID)
	}

	if message.SenderID == requesterID {
		return domain.NewMessageError(domain.KindForbidden, "the sender cannot mark their own message as read")
	}

	if message.IsRead {
		return nil
	}

	message.IsRead = true
	if err := s.messageRepo.Update(ctx, message); err != nil {
		return fmt.Errorf("failed to mark message %d as read: %w", messageID, err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	return nil
}
