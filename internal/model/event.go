package model

// Event is the name of a real-time event on the wire.
type Event string

const (
	EventConnected       Event = "connected"
	EventDisconnect      Event = "disconnect"
	EventJoinChat        Event = "joinChat"
	EventLeaveChat       Event = "leaveChat"
	EventGroupRenamed    Event = "groupRenamed"
	EventNewChat         Event = "newChat"
	EventMessageReceived Event = "messageReceived"
	EventMessageDeleted  Event = "messageDeleted"
	EventSocketError     Event = "socketError"
	EventTyping          Event = "typing"
	EventStopTyping      Event = "stopTyping"
)

// TypingPayload is broadcast to a chat-scoped channel for typing indicators.
type TypingPayload struct {
	ChatID uint `json:"chatId"`
	UserID uint `json:"userId"`
}
