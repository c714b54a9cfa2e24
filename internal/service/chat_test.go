package service

import (
	"context"
	"errors"
	"testing"

	"chatsphere/backend/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_Create_Direct_Chat(t *testing.T) {
	req := require.New(t)

	alice := userWith(1, "alice")
	bob := userWith(2, "bob")
	chatRepo := newFakeChatRepo()
	svc := NewChatService(chatRepo, newFakeUserRepo(alice, bob), newFakeMessageRepo(), nil)

	chat, err := svc.CreateChat(context.Background(), 1, 2)
	req.NoError(err)
	req.False(chat.IsGroup)
	req.Nil(chat.AdminID)
	req.True(chat.HasMember(1))
	req.True(chat.HasMember(2))
}

func Test_Create_Direct_Chat_Reuses_Existing_Pair(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	alice := userWith(1, "alice")
	bob := userWith(2, "bob")
	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(alice, bob), newFakeMessageRepo(), nil)

	first, err := svc.CreateChat(ctx, 1, 2)
	req.NoError(err)

	second, err := svc.CreateChat(ctx, 2, 1)
	req.NoError(err)
	req.Equal(first.ID, second.ID)
}

func Test_Create_Chat_With_Self_Is_Rejected(t *testing.T) {
	req := require.New(t)

	alice := userWith(1, "alice")
	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(alice), newFakeMessageRepo(), nil)

	_, err := svc.CreateChat(context.Background(), 1, 1)
	var userErr *domain.UserError
	req.True(errors.As(err, &userErr))
}

func Test_Create_Chat_With_Unknown_User_Fails(t *testing.T) {
	req := require.New(t)

	alice := userWith(1, "alice")
	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(alice), newFakeMessageRepo(), nil)

	_, err := svc.CreateChat(context.Background(), 1, 99)
	var userErr *domain.UserError
	req.True(errors.As(err, &userErr))
}

func Test_Create_Group_Makes_Requester_Admin_And_Member(t *testing.T) {
	req := require.New(t)

	alice := userWith(1, "alice")
	bob := userWith(2, "bob")
	carol := userWith(3, "carol")
	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(alice, bob, carol), newFakeMessageRepo(), nil)

	chat, err := svc.CreateGroup(context.Background(), GroupChatRequest{
		Name:      "book club",
		MemberIDs: []uint{2, 3, 2, 1},
	}, 1)
	req.NoError(err)
	req.True(chat.IsGroup)
	req.Equal("book club", chat.Name)
	req.NotNil(chat.AdminID)
	req.Equal(uint(1), *chat.AdminID)
	req.Len(chat.Users, 3)
}

func Test_Create_Group_Empty_Name_Is_Rejected(t *testing.T) {
	req := require.New(t)

	alice := userWith(1, "alice")
	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(alice), newFakeMessageRepo(), nil)

	_, err := svc.CreateGroup(context.Background(), GroupChatRequest{Name: "  "}, 1)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindInvalid, chatErr.Kind)
}

func Test_Add_User_To_Group_Requires_Admin(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	carol := userWith(3, "carol")
	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2)
	chatRepo := newFakeChatRepo(chat)
	svc := NewChatService(chatRepo, newFakeUserRepo(carol), newFakeMessageRepo(), nil)

	_, err := svc.AddUserToGroup(ctx, 3, 10, 2)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)

	updated, err := svc.AddUserToGroup(ctx, 3, 10, 1)
	req.NoError(err)
	req.True(updated.HasMember(3))
}

func Test_Add_Existing_Member_Is_A_Noop(t *testing.T) {
	req := require.New(t)

	bob := userWith(2, "bob")
	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(bob), newFakeMessageRepo(), nil)

	updated, err := svc.AddUserToGroup(context.Background(), 2, 10, 1)
	req.NoError(err)
	req.Len(updated.Users, 2)
}

func Test_Add_User_To_Direct_Chat_Is_Forbidden(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, false, nil, 1, 2)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(), newFakeMessageRepo(), nil)

	_, err := svc.AddUserToGroup(context.Background(), 3, 10, 1)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)
}

func Test_Rename_Group(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2)
	chat.Name = "old name"
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(), newFakeMessageRepo(), nil)

	_, err := svc.RenameGroup(ctx, 10, "new name", 2)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)

	renamed, err := svc.RenameGroup(ctx, 10, "new name", 1)
	req.NoError(err)
	req.Equal("new name", renamed.Name)
}

func Test_Remove_Admin_From_Group_Is_Forbidden(t *testing.T) {
	req := require.New(t)

	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(), newFakeMessageRepo(), nil)

	// Даже сам админ не может удалить себя из группы
	_, err := svc.RemoveFromGroup(context.Background(), 10, 1, 1)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)
}

func Test_Member_May_Only_Remove_Themselves(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	bob := userWith(2, "bob")
	carol := userWith(3, "carol")
	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2, 3)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(bob, carol), newFakeMessageRepo(), nil)

	_, err := svc.RemoveFromGroup(ctx, 10, 3, 2)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)

	updated, err := svc.RemoveFromGroup(ctx, 10, 2, 2)
	req.NoError(err)
	req.False(updated.HasMember(2))
	req.True(updated.HasMember(3))
}

func Test_Admin_Removes_Member(t *testing.T) {
	req := require.New(t)

	bob := userWith(2, "bob")
	adminID := uint(1)
	chat := chatWith(10, true, &adminID, 1, 2)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(bob), newFakeMessageRepo(), nil)

	updated, err := svc.RemoveFromGroup(context.Background(), 10, 2, 1)
	req.NoError(err)
	req.False(updated.HasMember(2))
}

func Test_Group_Left_Empty_Is_Deleted(t *testing.T) {
	req := require.New(t)

	bob := userWith(2, "bob")
	chat := chatWith(10, true, nil, 2)
	chatRepo := newFakeChatRepo(chat)
	svc := NewChatService(chatRepo, newFakeUserRepo(bob), newFakeMessageRepo(), nil)

	_, err := svc.RemoveFromGroup(context.Background(), 10, 2, 2)
	req.NoError(err)
	req.Equal([]uint{10}, chatRepo.deleteCalls)
}

func Test_Delete_Chat_Requires_Membership(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	bob := userWith(2, "bob")
	eve := userWith(3, "eve")
	chat := chatWith(10, false, nil, 1, 2)
	chatRepo := newFakeChatRepo(chat)
	svc := NewChatService(chatRepo, newFakeUserRepo(bob, eve), newFakeMessageRepo(), nil)

	_, err := svc.DeleteChat(ctx, 10, 2, 3)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)
	req.Empty(chatRepo.deleteCalls)

	_, err = svc.DeleteChat(ctx, 10, 2, 2)
	req.NoError(err)
	req.Equal([]uint{10}, chatRepo.deleteCalls)
}

func Test_Delete_Missing_Chat_Fails_With_Not_Found(t *testing.T) {
	req := require.New(t)

	svc := NewChatService(newFakeChatRepo(), newFakeUserRepo(), newFakeMessageRepo(), nil)

	_, err := svc.DeleteChat(context.Background(), 10, 1, 1)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindNotFound, chatErr.Kind)
}

func Test_Chat_Summaries_Report_Last_Message_And_Unread(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, true, nil, 1, 2)
	chat.Name = "book club"
	messageRepo := newFakeMessageRepo(
		messageWith(41, 10, 2, "first"),
		messageWith(42, 10, 2, "latest"),
	)
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(), messageRepo, nil)

	summaries, err := svc.GetChatSummaries(context.Background(), 1, 0, 10)
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal(uint(10), summaries[0].ChatID)
	req.Equal("book club", summaries[0].Title)
	req.Equal("latest", summaries[0].LastMessage)
	req.Equal(int64(2), summaries[0].UnreadCount)
}

func Test_Direct_Chat_Summary_Titled_After_Other_Participant(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, false, nil, 1, 2)
	chat.Users[1].Username = "bob"
	svc := NewChatService(newFakeChatRepo(chat), newFakeUserRepo(), newFakeMessageRepo(), nil)

	summaries, err := svc.GetChatSummaries(context.Background(), 1, 0, 10)
	req.NoError(err)
	req.Len(summaries, 1)
	req.Equal("bob", summaries[0].Title)
}

func Test_Chat_Summaries_Store_Failure_Is_Internal(t *testing.T) {
	req := require.New(t)

	chatRepo := newFakeChatRepo()
	chatRepo.listErr = errors.New("connection refused")
	svc := NewChatService(chatRepo, newFakeUserRepo(), newFakeMessageRepo(), nil)

	_, err := svc.GetChatSummaries(context.Background(), 1, 0, 10)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindInternal, chatErr.Kind)
	req.Contains(chatErr.Error(), "error fetching chat summaries")
}

func Test_Chat_Summaries_Served_From_Cache(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chat := chatWith(10, true, nil, 1, 2)
	chat.Name = "book club"
	chatRepo := newFakeChatRepo(chat)
	cache := newFakeSummaryCache()
	svc := NewChatService(chatRepo, newFakeUserRepo(), newFakeMessageRepo(), cache)

	first, err := svc.GetChatSummaries(ctx, 1, 0, 10)
	req.NoError(err)
	req.Len(first, 1)

	// Повторный запрос идет из кэша и не трогает хранилище
	chatRepo.listErr = errors.New("store must not be hit")
	second, err := svc.GetChatSummaries(ctx, 1, 0, 10)
	req.NoError(err)
	req.Equal(first, second)
}

func Test_Sending_A_Message_Invalidates_Cached_Summaries(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	alice := userWith(1, "alice")
	chat := chatWith(10, false, nil, 1, 2)
	cache := newFakeSummaryCache()
	chatRepo := newFakeChatRepo(chat)
	chatSvc := NewChatService(chatRepo, newFakeUserRepo(alice), newFakeMessageRepo(), cache)
	messageSvc := NewMessageService(newFakeMessageRepo(), newFakeUserRepo(alice), chatRepo, cache)

	_, err := chatSvc.GetChatSummaries(ctx, 1, 0, 10)
	req.NoError(err)
	req.Len(cache.pages, 1)

	_, err = messageSvc.SendMessage(ctx, SendMessageRequest{UserID: 1, ChatID: 10, Content: "hi"})
	req.NoError(err)
	req.Equal(1, cache.invalidateCalls)
	req.Empty(cache.pages)
}
