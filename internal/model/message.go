package model

import "gorm.io/gorm"

type Message struct {
	gorm.Model
	ChatID   uint   `json:"chat_id"`
	SenderID uint   `json:"sender_id"`
	Content  string `json:"content"`
	IsRead   bool   `json:"is_read"`
}
