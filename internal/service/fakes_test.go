package service

import (
	"context"
	"fmt"
	"time"

	"chatsphere/backend/internal/model"
	"chatsphere/backend/internal/repository"

	"gorm.io/gorm"
)

// In-memory repository fakes recording the calls the tests care about.

type fakeUserRepo struct {
	users map[uint]*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uint]*model.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == 0 {
		user.ID = uint(len(r.users) + 1)
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (*model.User, error) {
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) FindByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.FindByUsername(ctx, username)
	return err == nil, nil
}

func (r *fakeUserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	return err == nil, nil
}

func (r *fakeUserRepo) Search(_ context.Context, _ string) ([]*model.User, error) {
	return nil, nil
}

type fakeChatRepo struct {
	chats       map[uint]*model.Chat
	nextID      uint
	deleteCalls []uint
	listErr     error
}

func newFakeChatRepo(chats ...*model.Chat) *fakeChatRepo {
	r := &fakeChatRepo{chats: make(map[uint]*model.Chat), nextID: 100}
	for _, c := range chats {
		r.chats[c.ID] = c
	}
	return r
}

func (r *fakeChatRepo) Create(_ context.Context, chat *model.Chat) error {
	if chat.ID == 0 {
		r.nextID++
		chat.ID = r.nextID
	}
	chat.CreatedAt = time.Now()
	r.chats[chat.ID] = chat
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, chatID uint) (*model.Chat, error) {
	chat, ok := r.chats[chatID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return chat, nil
}

func (r *fakeChatRepo) GetDirectForUsers(_ context.Context, user1ID, user2ID uint) (*model.Chat, error) {
	for _, c := range r.chats {
		if !c.IsGroup && c.HasMember(user1ID) && c.HasMember(user2ID) {
			return c, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeChatRepo) AddUser(_ context.Context, chatID, userID uint) error {
	chat := r.chats[chatID]
	chat.Users = append(chat.Users, model.User{Model: gorm.Model{ID: userID}})
	return nil
}

func (r *fakeChatRepo) RemoveUser(_ context.Context, chatID, userID uint) error {
	chat := r.chats[chatID]
	users := chat.Users[:0]
	for _, u := range chat.Users {
		if u.ID != userID {
			users = append(users, u)
		}
	}
	chat.Users = users
	return nil
}

func (r *fakeChatRepo) UpdateName(_ context.Context, chatID uint, name string) error {
	r.chats[chatID].Name = name
	return nil
}

func (r *fakeChatRepo) Delete(_ context.Context, chatID uint) error {
	r.deleteCalls = append(r.deleteCalls, chatID)
	delete(r.chats, chatID)
	return nil
}

func (r *fakeChatRepo) GetChatsForUser(_ context.Context, userID uint, offset, limit int) ([]model.Chat, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var chats []model.Chat
	for id := uint(0); id <= r.nextID; id++ {
		c, ok := r.chats[id]
		if ok && c.HasMember(userID) {
			chats = append(chats, *c)
		}
	}
	if offset >= len(chats) {
		return nil, nil
	}
	chats = chats[offset:]
	if limit < len(chats) {
		chats = chats[:limit]
	}
	return chats, nil
}

func (r *fakeChatRepo) MemberCount(_ context.Context, chatID uint) (int64, error) {
	chat, ok := r.chats[chatID]
	if !ok {
		return 0, nil
	}
	return int64(len(chat.Users)), nil
}

type fakeMessageRepo struct {
	messages      map[uint]*model.Message
	order         []uint
	nextID        uint
	deleteCalls   []uint
	findChatCalls int
}

func newFakeMessageRepo(messages ...*model.Message) *fakeMessageRepo {
	r := &fakeMessageRepo{messages: make(map[uint]*model.Message), nextID: 1000}
	for _, m := range messages {
		r.messages[m.ID] = m
		r.order = append(r.order, m.ID)
	}
	return r
}

func (r *fakeMessageRepo) Create(_ context.Context, message *model.Message) error {
	if message.ID == 0 {
		r.nextID++
		message.ID = r.nextID
	}
	message.CreatedAt = time.Now()
	r.messages[message.ID] = message
	r.order = append(r.order, message.ID)
	return nil
}

func (r *fakeMessageRepo) FindByID(_ context.Context, id uint) (*model.Message, error) {
	message, ok := r.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return message, nil
}

func (r *fakeMessageRepo) FindByChatID(_ context.Context, chatID uint) ([]model.Message, error) {
	r.findChatCalls++
	var messages []model.Message
	for _, id := range r.order {
		if m, ok := r.messages[id]; ok && m.ChatID == chatID {
			messages = append(messages, *m)
		}
	}
	return messages, nil
}

func (r *fakeMessageRepo) DeleteByID(_ context.Context, id uint) error {
	r.deleteCalls = append(r.deleteCalls, id)
	delete(r.messages, id)
	return nil
}

func (r *fakeMessageRepo) Update(_ context.Context, message *model.Message) error {
	r.messages[message.ID] = message
	return nil
}

func (r *fakeMessageRepo) LastForChat(_ context.Context, chatID uint) (*model.Message, error) {
	for i := len(r.order) - 1; i >= 0; i-- {
		if m, ok := r.messages[r.order[i]]; ok && m.ChatID == chatID {
			return m, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeMessageRepo) CountUnread(_ context.Context, chatID, userID uint) (int64, error) {
	var count int64
	for _, m := range r.messages {
		if m.ChatID == chatID && m.SenderID != userID && !m.IsRead {
			count++
		}
	}
	return count, nil
}

type fakeSummaryCache struct {
	pages           map[string][]model.ChatSummary
	invalidateCalls int
}

func newFakeSummaryCache() *fakeSummaryCache {
	return &fakeSummaryCache{pages: make(map[string][]model.ChatSummary)}
}

func cacheKey(userID uint, page, size int) string {
	return fmt.Sprintf("%d:%d:%d", userID, page, size)
}

func (c *fakeSummaryCache) GetSummaries(_ context.Context, userID uint, page, size int) ([]model.ChatSummary, bool, error) {
	summaries, ok := c.pages[cacheKey(userID, page, size)]
	return summaries, ok, nil
}

func (c *fakeSummaryCache) SaveSummaries(_ context.Context, userID uint, page, size int, summaries []model.ChatSummary) error {
	c.pages[cacheKey(userID, page, size)] = summaries
	return nil
}

func (c *fakeSummaryCache) Invalidate(_ context.Context, _ ...uint) error {
	c.invalidateCalls++
	c.pages = make(map[string][]model.ChatSummary)
	return nil
}

// chatWith builds a chat with the given members for test setup.
func chatWith(id uint, isGroup bool, adminID *uint, memberIDs ...uint) *model.Chat {
	chat := &model.Chat{
		Model:   gorm.Model{ID: id, CreatedAt: time.Now()},
		IsGroup: isGroup,
		AdminID: adminID,
	}
	for _, memberID := range memberIDs {
		chat.Users = append(chat.Users, model.User{Model: gorm.Model{ID: memberID}})
	}
	return chat
}

func messageWith(id, chatID, senderID uint, content string) *model.Message {
	return &model.Message{
		Model:    gorm.Model{ID: id, CreatedAt: time.Now()},
		ChatID:   chatID,
		SenderID: senderID,
		Content:  content,
	}
}

func userWith(id uint, username string) *model.User {
	return &model.User{
		Model:    gorm.Model{ID: id},
		Username: username,
		Email:    username + "@example.com",
	}
}
