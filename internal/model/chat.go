package model

import "gorm.io/gorm"

type Chat struct {
	gorm.Model
	Name    string `json:"name"`
	IsGroup bool   `json:"is_group"`
	AdminID *uint  `json:"admin_id,omitempty"`
	Users   []User `json:"users" gorm:"many2many:chat_users;"`
}

// HasMember reports whether the user is in the loaded membership set.
func (c *Chat) HasMember(userID uint) bool {
	for _, u := range c.Users {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the user is the group admin. Direct chats have no admin.
func (c *Chat) IsAdmin(userID uint) bool {
	return c.AdminID != nil && *c.AdminID == userID
}
