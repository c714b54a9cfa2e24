package service

import (
	"context"
	"errors"
	"testing"

	"chatsphere/backend/internal/domain"

	"github.com/stretchr/testify/require"
)

func Test_Send_Message_Persists_Content_Sender_And_Chat(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	sender := userWith(1, "alice")
	other := userWith(2, "bob")
	chat := chatWith(10, false, nil, 1, 2)

	userRepo := newFakeUserRepo(sender, other)
	chatRepo := newFakeChatRepo(chat)
	messageRepo := newFakeMessageRepo()

	svc := NewMessageService(messageRepo, userRepo, chatRepo, nil)

	message, err := svc.SendMessage(ctx, SendMessageRequest{
		UserID:  1,
		ChatID:  10,
		Content: "Hello World",
	})
	req.NoError(err)
	req.NotNil(message)
	req.Equal("Hello World", message.Content)
	req.Equal(uint(10), message.ChatID)
	req.Equal(uint(1), message.SenderID)
	req.False(message.IsRead)

	// Сообщение действительно сохранено
	stored, err := svc.FindMessageByID(ctx, message.ID)
	req.NoError(err)
	req.Equal("Hello World", stored.Content)
}

func Test_Send_Empty_Message_Is_Rejected(t *testing.T) {
	req := require.New(t)

	svc := NewMessageService(newFakeMessageRepo(), newFakeUserRepo(), newFakeChatRepo(), nil)

	_, err := svc.SendMessage(context.Background(), SendMessageRequest{UserID: 1, ChatID: 10, Content: "   "})
	var msgErr *domain.MessageError
	req.True(errors.As(err, &msgErr))
	req.Equal(domain.KindInvalid, msgErr.Kind)
}

func Test_Send_Message_Unknown_Sender_Fails_With_User_Error(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, false, nil, 1, 2)
	svc := NewMessageService(newFakeMessageRepo(), newFakeUserRepo(), newFakeChatRepo(chat), nil)

	_, err := svc.SendMessage(context.Background(), SendMessageRequest{UserID: 1, ChatID: 10, Content: "hi"})
	var userErr *domain.UserError
	req.True(errors.As(err, &userErr))
}

func Test_Send_Message_Unknown_Chat_Fails_With_Not_Found(t *testing.T) {
	req := require.New(t)

	sender := userWith(1, "alice")
	svc := NewMessageService(newFakeMessageRepo(), newFakeUserRepo(sender), newFakeChatRepo(), nil)

	_, err := svc.SendMessage(context.Background(), SendMessageRequest{UserID: 1, ChatID: 10, Content: "hi"})
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindNotFound, chatErr.Kind)
}

func Test_Send_Message_Non_Member_Is_Forbidden(t *testing.T) {
	req := require.New(t)

	outsider := userWith(3, "eve")
	chat := chatWith(10, false, nil, 1, 2)
	messageRepo := newFakeMessageRepo()
	svc := NewMessageService(messageRepo, newFakeUserRepo(outsider), newFakeChatRepo(chat), nil)

	_, err := svc.SendMessage(context.Background(), SendMessageRequest{UserID: 3, ChatID: 10, Content: "hi"})
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)
	req.Empty(messageRepo.order)
}

func Test_Delete_Existing_Message_Calls_Store_Delete_Once(t *testing.T) {
	req := require.New(t)

	sender := userWith(1, "alice")
	chat := chatWith(10, false, nil, 1, 2)
	message := messageWith(42, 10, 1, "Hello World")

	messageRepo := newFakeMessageRepo(message)
	svc := NewMessageService(messageRepo, newFakeUserRepo(sender), newFakeChatRepo(chat), nil)

	err := svc.DeleteMessage(context.Background(), 42, 1)
	req.NoError(err)
	req.Equal([]uint{42}, messageRepo.deleteCalls)
}

func Test_Delete_Missing_Message_Never_Calls_Store_Delete(t *testing.T) {
	req := require.New(t)

	messageRepo := newFakeMessageRepo()
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(), nil)

	err := svc.DeleteMessage(context.Background(), 42, 1)
	var msgErr *domain.MessageError
	req.True(errors.As(err, &msgErr))
	req.Equal(domain.KindNotFound, msgErr.Kind)
	req.Empty(messageRepo.deleteCalls)
}

func Test_Delete_Message_By_Non_Sender_Is_Forbidden(t *testing.T) {
	req := require.New(t)

	message := messageWith(42, 10, 1, "Hello World")
	messageRepo := newFakeMessageRepo(message)
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(), nil)

	err := svc.DeleteMessage(context.Background(), 42, 2)
	var msgErr *domain.MessageError
	req.True(errors.As(err, &msgErr))
	req.Equal(domain.KindForbidden, msgErr.Kind)
	req.Empty(messageRepo.deleteCalls)
}

func Test_Get_Messages_Of_Missing_Chat_Never_Queries_Store(t *testing.T) {
	req := require.New(t)

	messageRepo := newFakeMessageRepo()
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(), nil)

	_, err := svc.GetChatsMessages(context.Background(), 10, 1)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindNotFound, chatErr.Kind)
	req.Zero(messageRepo.findChatCalls)
}

func Test_Get_Messages_Returns_Store_Order(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, false, nil, 1, 2)
	first := messageWith(41, 10, 1, "first")
	second := messageWith(42, 10, 2, "second")
	stray := messageWith(43, 11, 1, "other chat")

	messageRepo := newFakeMessageRepo(first, second, stray)
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(chat), nil)

	messages, err := svc.GetChatsMessages(context.Background(), 10, 1)
	req.NoError(err)
	req.Len(messages, 2)
	req.Equal("first", messages[0].Content)
	req.Equal("second", messages[1].Content)
}

func Test_Get_Messages_Non_Member_Is_Forbidden(t *testing.T) {
	req := require.New(t)

	chat := chatWith(10, false, nil, 1, 2)
	messageRepo := newFakeMessageRepo()
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(chat), nil)

	_, err := svc.GetChatsMessages(context.Background(), 10, 3)
	var chatErr *domain.ChatError
	req.True(errors.As(err, &chatErr))
	req.Equal(domain.KindForbidden, chatErr.Kind)
	req.Zero(messageRepo.findChatCalls)
}

func Test_Find_Message_By_ID(t *testing.T) {
	req := require.New(t)

	message := messageWith(42, 10, 1, "Hello World")
	svc := NewMessageService(newFakeMessageRepo(message), newFakeUserRepo(), newFakeChatRepo(), nil)

	found, err := svc.FindMessageByID(context.Background(), 42)
	req.NoError(err)
	req.Equal("Hello World", found.Content)

	_, err = svc.FindMessageByID(context.Background(), 99)
	var msgErr *domain.MessageError
	req.True(errors.As(err, &msgErr))
	req.Equal(domain.KindNotFound, msgErr.Kind)
}

func Test_Mark_Message_Read(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	chat := chatWith(10, false, nil, 1, 2)
	message := messageWith(42, 10, 1, "Hello World")
	messageRepo := newFakeMessageRepo(message)
	svc := NewMessageService(messageRepo, newFakeUserRepo(), newFakeChatRepo(chat), nil)

	// Отправитель не может отметить свое сообщение прочитанным
	err := svc.MarkMessageRead(ctx, 42, 1)
	var msgErr *domain.MessageError
	req.True(errors.As(err, &msgErr))
	req.Equal(domain.KindForbidden, msgErr.Kind)

	err = svc.MarkMessageRead(ctx, 42, 2)
	req.NoError(err)

	stored, err := svc.FindMessageByID(ctx, 42)
	req.NoError(err)
	req.True(stored.IsRead)
}
