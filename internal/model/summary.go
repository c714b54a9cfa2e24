package model

import "time"

// ChatSummary is the lightweight chat projection used by list views.
type ChatSummary struct {
	ChatID        uint      `json:"chat_id"`
	Title         string    `json:"title"`
	IsGroup       bool      `json:"is_group"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	UnreadCount   int64     `json:"unread_count"`
}
