// Package model holds the domain types for clients, messages and
// conversations, plus the defensive decoding of the loosely-shaped
// remote JSON into them.
package model

import "time"

// ContentType discriminates message content payloads.
type ContentType string

const (
	ContentText     ContentType = "text"
	ContentImage    ContentType = "image"
	ContentDocument ContentType = "document"
	ContentVideo    ContentType = "video"
)

// SenderKind identifies who authored a message.
type SenderKind string

const (
	SenderClient     SenderKind = "Client"
	SenderUser       SenderKind = "User"
	SenderUserSystem SenderKind = "UserSystem"
)

// TypeMessage is the fixed envelope type of every Message.
const TypeMessage = "Message"

// Client is one entry of the remote client directory. Immutable for
// the life of a session except for the unread count.
type Client struct {
	ID              string    `json:"_id"`
	Name            string    `json:"name"`
	Email           string    `json:"email,omitempty"`
	Avatar          string    `json:"avatar,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	LastMessage     string    `json:"lastMessage,omitempty"`
	LastMessageDate time.Time `json:"lastMessageDate,omitempty"`
	UnreadCount     int       `json:"unreadCount,omitempty"`
}

// Multimedia describes an attached file.
type Multimedia struct {
	Filename  string `json:"filename,omitempty"`
	Size      string `json:"size,omitempty"`
	Ext       string `json:"ext,omitempty"`
	Mimetype  string `json:"mimetype,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	File      string `json:"file"`
}

// MessageContent is the inner payload of a Message.
type MessageContent struct {
	ID         string      `json:"_id"`
	Type       ContentType `json:"type"`
	Text       string      `json:"text,omitempty"`
	Multimedia *Multimedia `json:"multimedia,omitempty"`
	TypeUser   SenderKind  `json:"typeUser"`
	User       string      `json:"user"`
	ErrorCode  string      `json:"errorCode,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	UpdatedAt  time.Time   `json:"updatedAt"`
	ReadAt     time.Time   `json:"readAt,omitempty"`
}

// Message is the envelope stored in a client's thread.
type Message struct {
	ID        string         `json:"_id"`
	Type      string         `json:"type"`
	Client    string         `json:"client"`
	Content   MessageContent `json:"message"`
	CreatedAt time.Time      `json:"createdAt"`
}

// Conversation aggregates one client's thread. LastMessage is always
// set once the conversation exists: synthesized from the client record
// until the real thread is loaded, then the thread's final message.
type Conversation struct {
	ClientID    string    `json:"clientId"`
	Messages    []Message `json:"messages"`
	LastMessage Message   `json:"lastMessage"`
	UnreadCount int       `json:"unreadCount"`
	Client      *Client   `json:"client,omitempty"`
}
