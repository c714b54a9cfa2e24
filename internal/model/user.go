package model

import "gorm.io/gorm"

type User struct {
	gorm.Model
	Chats             []Chat `json:"-" gorm:"many2many:chat_users;"`
	Username          string `json:"username" gorm:"uniqueIndex"`
	Email             string `json:"email" gorm:"uniqueIndex"`
	Password          string `json:"password,omitempty"`
	DisplayName       string `json:"display_name"`
	ProfilePictureKey string `json:"profile_picture_key"`
}

func (u *User) SanitizePassword() {
	u.Password = ""
}

func (u *User) EnsureDisplayName() {
	if u.DisplayName == "" {
		u.DisplayName = u.Username
	}
}
