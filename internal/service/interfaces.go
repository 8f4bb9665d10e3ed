package service

import (
	"context"
	"io"

	"tush00nka/chathub/internal/model"
)

// EventDispatcher pushes an event to every live connection of a user. It
// never blocks on the recipient and drops the event if the user is offline.
type EventDispatcher interface {
	Deliver(userID uint, event model.Event, payload any)
}

// FileRemover deletes a stored attachment by its storage path.
type FileRemover interface {
	Remove(ctx context.Context, path string) error
}

type ChatService interface {
	SearchAvailableUsers(ctx context.Context, requester uint) ([]model.Profile, error)
	ListChats(ctx context.Context, requester uint) ([]model.ChatView, error)
	GetOrCreateDirectChat(ctx context.Context, requester, otherUserID uint) (*model.ChatView, error)
	CreateGroupChat(ctx context.Context, requester uint, name string, participantIDs []uint) (*model.ChatView, error)
	GetGroupChatDetails(ctx context.Context, requester, chatID uint) (*model.ChatView, error)
	RenameGroupChat(ctx context.Context, requester, chatID uint, name string) (*model.ChatView, error)
	DeleteGroupChat(ctx context.Context, requester, chatID uint) error
	DeleteDirectChat(ctx context.Context, requester, chatID uint) error
	LeaveGroupChat(ctx context.Context, requester, chatID uint) (*model.ChatView, error)
	AddParticipant(ctx context.Context, requester, chatID, participantID uint) (*model.ChatView, error)
	RemoveParticipant(ctx context.Context, requester, chatID, participantID uint) (*model.ChatView, error)
}

// Upload is a file received with a message, not yet stored.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type MessageService interface {
	GetAllMessages(ctx context.Context, requester, chatID uint) ([]model.MessageView, error)
	SendMessage(ctx context.Context, requester, chatID uint, content string, files []Upload) (*model.MessageView, error)
	DeleteMessage(ctx context.Context, requester, chatID, messageID uint) (*model.MessageView, error)
}

// AuthResult is returned by register and login.
type AuthResult struct {
	User        model.Profile `json:"user"`
	AccessToken string        `json:"accessToken"`
}

type UserService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, username, password string) (*AuthResult, error)
}
