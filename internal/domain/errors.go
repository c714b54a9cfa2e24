package domain

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error so the transport layer can pick a status code
// without inspecting messages.
type Kind int

const (
	KindInvalid Kind = iota
	KindNotFound
	KindForbidden
	KindInternal
)

// UserError signals an unresolved or invalid user reference.
type UserError struct {
	Message string
}

func (e *UserError) Error() string { return e.Message }

func NewUserError(format string, args ...any) *UserError {
	return &UserError{Message: fmt.Sprintf(format, args...)}
}

// ChatError covers chat lookups and membership authorization failures.
type ChatError struct {
	Kind    Kind
	Message string
}

func (e *ChatError) Error() string { return e.Message }

func NewChatError(kind Kind, format string, args ...any) *ChatError {
	return &ChatError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func ChatNotFound(chatID uint) *ChatError {
	return NewChatError(KindNotFound, "chat %d not found", chatID)
}

// MessageError covers message lookups and delete authorization failures.
type MessageError struct {
	Kind    Kind
	Message string
}

func (e *MessageError) Error() string { return e.Message }

func NewMessageError(kind Kind, format string, args ...any) *MessageError {
	return &MessageError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func MessageNotFound(messageID uint) *MessageError {
	return NewMessageError(KindNotFound, "message %d not found", messageID)
}

// KindOf extracts the Kind from any domain error. User errors are always
// treated as invalid references.
func KindOf(err error) (Kind, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return KindInvalid, true
	}
	var ce *ChatError
	if errors.As(err, &ce) {
		return ce.Kind, true
	}
	var me *MessageError
	if errors.As(err, &me) {
		return me.Kind, true
	}
	return 0, false
}
