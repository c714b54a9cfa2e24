package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"chatsphere/backend/internal/domain"
	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/repository"
)

type chatService struct {
	chatRepo    repository.ChatRepository
	userRepo    repository.UserRepository
	messageRepo repository.MessageRepository
	cache       repository.SummaryCacheRepository
}

// NewChatService создает новый экземпляр ChatService. Cache may be nil.
func NewChatService(
	chatRepo repository.ChatRepository,
	userRepo repository.UserRepository,
	messageRepo repository.MessageRepository,
	cache repository.SummaryCacheRepository,
) ChatService {
	return &chatService{
		chatRepo:    chatRepo,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		cache:       cache,
	}
}

func (s *chatService) resolveUser(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewUserError("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to resolve user %d: %w", userID, err)
	}
	return user, nil
}

// CreateChat opens a direct chat between the requester and another user. An
// existing direct chat between the pair is reused instead of duplicated.
func (s *chatService) CreateChat(ctx context.Context, requesterID, otherUserID uint) (*model.Chat, error) {
	if requesterID == otherUserID {
		return nil, domain.NewUserError("cannot create a chat with yourself")
	}

	requester, err := s.resolveUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	other, err := s.resolveUser(ctx, otherUserID)
	if err != nil {
		return nil, err
	}

	existing, err := s.chatRepo.GetDirectForUsers(ctx, requesterID, otherUserID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing chat: %w", err)
	}

	chat := &model.Chat{
		IsGroup: false,
		Users:   []model.User{*requester, *other},
	}

	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	return chat, nil
}

// CreateGroup opens a group chat with the requester as admin.
func (s *chatService) CreateGroup(ctx context.Context, req GroupChatRequest, requesterID uint) (*model.Chat, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, domain.NewChatError(domain.KindInvalid, "group chat name cannot be empty")
	}

	requester, err := s.resolveUser(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	members := []model.User{*requester}
	seen := map[uint]bool{requesterID: true}
	for _, memberID := range req.MemberIDs {
		if seen[memberID] {
			continue
		}
		seen[memberID] = true

		member, err := s.resolveUser(ctx, memberID)
		if err != nil {
			return nil, err
		}
		members = append(members, *member)
	}

	adminID := requester.ID
	chat := &model.Chat{
		Name:    name,
		IsGroup: true,
		AdminID: &adminID,
		Users:   members,
	}

	if err := s.chatRepo.Create(ctx, chat); err != nil {
		return nil, fmt.Errorf("failed to create group chat: %w", err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	return chat, nil
}

func (s *chatService) FindChatByID(ctx context.Context, chatID uint) (*model.Chat, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, domain.ChatNotFound(chatID)
		}
		return nil, fmt.Errorf("failed to load chat %d: %w", chatID, err)
	}
	return chat, nil
}

// AddUserToGroup adds a member to a group chat. Only the admin may do this.
// Adding an existing member is a no-op.
func (s *chatService) AddUserToGroup(ctx context.Context, userID, chatID, requesterID uint) (*model.Chat, error) {
	chat, err := s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, domain.NewChatError(domain.KindForbidden, "chat %d is not a group chat", chatID)
	}

	if !chat.IsAdmin(requesterID) {
		return nil, domain.NewChatError(domain.KindForbidden, "only the group admin can add members")
	}

	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	if chat.HasMember(userID) {
		return chat, nil
	}

	if err := s.chatRepo.AddUser(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("failed to add user %d to chat %d: %w", userID, chatID, err)
	}

	chat, err = s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	invalidateSummaries(ctx, s.cache, chat)

	return chat, nil
}

// RenameGroup updates the group name. Only the admin may do this.
func (s *chatService) RenameGroup(ctx context.Context, chatID uint, newName string, requesterID uint) (*model.Chat, error) {
	chat, err := s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, domain.NewChatError(domain.KindForbidden, "chat %d is not a group chat", chatID)
	}

	if !chat.IsAdmin(requesterID) {
		return nil, domain.NewChatError(domain.KindForbidden, "only the group admin can rename the group")
	}

	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, domain.NewChatError(domain.KindInvalid, "group chat name cannot be empty")
	}

	if err := s.chatRepo.UpdateName(ctx, chatID, newName); err != nil {
		return nil, fmt.Errorf("failed to rename chat %d: %w", chatID, err)
	}

	chat.Name = newName

	invalidateSummaries(ctx, s.cache, chat)

	return chat, nil
}

// RemoveFromGroup removes a member from a group chat. The admin may remove
// anyone but themselves; a member may remove only themselves. A chat left
// without members is deleted.
func (s *chatService) RemoveFromGroup(ctx context.Context, chatID, userID, requesterID uint) (*model.Chat, error) {
	chat, err := s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if !chat.IsGroup {
		return nil, domain.NewChatError(domain.KindForbidden, "chat %d is not a group chat", chatID)
	}

	if chat.IsAdmin(userID) {
		return nil, domain.NewChatError(domain.KindForbidden, "the group admin cannot be removed")
	}

	if requesterID != userID && !chat.IsAdmin(requesterID) {
		return nil, domain.NewChatError(domain.KindForbidden, "only the group admin can remove other members")
	}

	if _, err := s.resolveUser(ctx, userID); err != nil {
		return nil, err
	}

	if !chat.HasMember(userID) {
		return chat, nil
	}

	if err := s.chatRepo.RemoveUser(ctx, chatID, userID); err != nil {
		return nil, fmt.Errorf("failed to remove user %d from chat %d: %w", userID, chatID, err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	count, err := s.chatRepo.MemberCount(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to count members of chat %d: %w", chatID, err)
	}

	if count == 0 {
		if err := s.chatRepo.Delete(ctx, chatID); err != nil {
			return nil, fmt.Errorf("failed to delete empty chat %d: %w", chatID, err)
		}
		return chat, nil
	}

	return s.FindChatByID(ctx, chatID)
}

// DeleteChat deletes a chat together with its messages. The requester must be
// a member.
func (s *chatService) DeleteChat(ctx context.Context, chatID, targetUserID, requesterID uint) (*model.Chat, error) {
	chat, err := s.FindChatByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	if _, err := s.resolveUser(ctx, targetUserID); err != nil {
		return nil, err
	}

	if !chat.HasMember(requesterID) {
		return nil, domain.NewChatError(domain.KindForbidden, "only a chat member can delete the chat")
	}

	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return nil, fmt.Errorf("failed to delete chat %d: %w", chatID, err)
	}

	invalidateSummaries(ctx, s.cache, chat)

	return chat, nil
}

// GetChatSummaries returns one page of summaries for the user's chats, newest
// activity first. Every failure on this path surfaces as a ChatError.
func (s *chatService) GetChatSummaries(ctx context.Context, userID uint, page, size int) ([]model.ChatSummary, error) {
	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}

	if s.cache != nil {
		cached, ok, err := s.cache.GetSummaries(ctx, userID, page, size)
		if err != nil {
			log.Printf("summary cache read failed for user %d: %v", userID, err)
		} else if ok {
			return cached, nil
		}
	}

	chats, err := s.chatRepo.GetChatsForUser(ctx, userID, page*size, size)
	if err != nil {
		return nil, domain.NewChatError(domain.KindInternal, "error fetching chat summaries: %v", err)
	}

	summaries := make([]model.ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summary := model.ChatSummary{
			ChatID:        chat.ID,
			Title:         summaryTitle(&chat, userID),
			IsGroup:       chat.IsGroup,
			LastMessageAt: chat.CreatedAt,
		}

		last, err := s.messageRepo.LastForChat(ctx, chat.ID)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, domain.NewChatError(domain.KindInternal, "error fetching chat summaries: %v", err)
		}
		if err == nil {
			summary.LastMessage = last.Content
			summary.LastMessageAt = last.CreatedAt
		}

		unread, err := s.messageRepo.CountUnread(ctx, chat.ID, userID)
		if err != nil {
			return nil, domain.NewChatError(domain.KindInternal, "error fetching chat summaries: %v", err)
		}
		summary.UnreadCount = unread

		summaries = append(summaries, summary)
	}

	if s.cache != nil {
		if err := s.cache.SaveSummaries(ctx, userID, page, size, summaries); err != nil {
			log.Printf("summary cache write failed for user %d: %v", userID, err)
		}
	}

	return summaries, nil
}

// summaryTitle picks the list title: the group name, or for a direct chat the
// other participant's display name.
func summaryTitle(chat *model.Chat, userID uint) string {
	if chat.IsGroup {
		return chat.Name
	}
	for i := range chat.Users {
		if chat.Users[i].ID != userID {
			chat.Users[i].EnsureDisplayName()
			return chat.Users[i].DisplayName
		}
	}
	return chat.Name
}
