package model

import (
	"cmp"
	"slices"
	"time"
)

// DirectChatName is the label given to every direct chat.
const DirectChatName = "One on one chat"

// MinGroupSize is the smallest membership a group chat may be created with.
const MinGroupSize = 3

type Chat struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	Name          string         `json:"name"`
	IsGroup       bool           `gorm:"index" json:"isGroupChat"`
	AdminID       *uint          `json:"admin,omitempty"`
	LastMessageID *uint          `json:"lastMessage,omitempty"`
	Members       []ChatMember   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Participants  ParticipantSet `gorm:"-" json:"participants"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `gorm:"index" json:"updatedAt"`
}

// ChatMember is one row of the chat membership join table. The composite
// primary key makes a user a member of a chat at most once.
type ChatMember struct {
	ChatID   uint `gorm:"primaryKey;autoIncrement:false"`
	UserID   uint `gorm:"primaryKey;autoIncrement:false;index"`
	Position int  // display order within the chat
}

// IsAdmin reports whether userID administers this (group) chat.
func (c *Chat) IsAdmin(userID uint) bool {
	return c.IsGroup && c.AdminID != nil && *c.AdminID == userID
}

// SyncMembers rebuilds the join rows from Participants, keeping display order.
func (c *Chat) SyncMembers() {
	ids := c.Participants.IDs()
	c.Members = make([]ChatMember, len(ids))
	for i, id := range ids {
		c.Members[i] = ChatMember{ChatID: c.ID, UserID: id, Position: i}
	}
}

// SyncParticipants rebuilds Participants from loaded join rows.
func (c *Chat) SyncParticipants() {
	members := slices.Clone(c.Members)
	slices.SortStableFunc(members, func(a, b ChatMember) int {
		return cmp.Compare(a.Position, b.Position)
	})
	ids := make([]uint, len(members))
	for i, m := range members {
		ids[i] = m.UserID
	}
	c.Participants = NewParticipantSet(ids...)
}
