package model

import "time"

// Profile is the public projection of a user. It has no credential fields,
// so nothing serialised from it can leak them.
type Profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar,omitempty"`
}

// Sender is the reduced profile attached to messages.
type Sender struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (p Profile) Sender() Sender {
	return Sender{ID: p.ID, Username: p.Username, Email: p.Email}
}

type MessageView struct {
	ID          uint         `json:"id"`
	Chat        uint         `json:"chat"`
	Sender      Sender       `json:"sender"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ChatView is the denormalised chat handed to clients. It is assembled at
// read time and never persisted.
type ChatView struct {
	ID           uint         `json:"id"`
	Name         string       `json:"name"`
	IsGroupChat  bool         `json:"isGroupChat"`
	Admin        *uint        `json:"admin,omitempty"`
	Participants []Profile    `json:"participants"`
	LastMessage  *MessageView `json:"lastMessage,omitempty"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// ParticipantIDs lists the ids of the resolved participants.
func (v ChatView) ParticipantIDs() []uint {
	ids := make([]uint, len(v.Participants))
	for i, p := range v.Participants {
		ids[i] = p.ID
	}
	return ids
}
