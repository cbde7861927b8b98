package model

import (
	"encoding/json"
	"time"
)

// rawEnvelope mirrors one raw thread entry. Timestamps stay strings so
// a missing or malformed value can default instead of failing the
// whole decode.
type rawEnvelope struct {
	ID        string     `json:"_id"`
	Type      string     `json:"type"`
	Client    string     `json:"client"`
	Message   rawContent `json:"message"`
	CreatedAt string     `json:"createdAt"`
}

type rawContent struct {
	ID         string      `json:"_id"`
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	Multimedia *Multimedia `json:"multimedia"`
	TypeUser   string      `json:"typeUser"`
	User       string      `json:"user"`
	ErrorCode  string      `json:"errorCode"`
	CreatedAt  string      `json:"createdAt"`
	UpdatedAt  string      `json:"updatedAt"`
	ReadAt     string      `json:"readAt"`
}

// DecodeClients decodes directory entries, skipping malformed items
// instead of failing the whole list.
func DecodeClients(items []json.RawMessage) []Client {
	clients := make([]Client, 0, len(items))
	for _, item := range items {
		var c Client
		if err := json.Unmarshal(item, &c); err != nil {
			continue
		}
		clients = append(clients, c)
	}
	return clients
}

// MapThread decodes a raw message thread for the given client. Missing
// nested fields default: empty text, "text" content type, "Client"
// sender, now for timestamps. Entries that are not objects at all are
// skipped.
func MapThread(items []json.RawMessage, clientID string, now time.Time) []Message {
	msgs := make([]Message, 0, len(items))
	for _, item := range items {
		var raw rawEnvelope
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		msgs = append(msgs, mapMessage(raw, clientID, now))
	}
	return msgs
}

func mapMessage(raw rawEnvelope, clientID string, now time.Time) Message {
	contentType := ContentType(raw.Message.Type)
	if contentType == "" {
		contentType = ContentText
	}
	sender := SenderKind(raw.Message.TypeUser)
	if sender == "" {
		sender = SenderClient
	}
	envelopeType := raw.Type
	if envelopeType == "" {
		envelopeType = TypeMessage
	}

	return Message{
		ID:     raw.ID,
		Type:   envelopeType,
		Client: clientID,
		Content: MessageContent{
			ID:         raw.Message.ID,
			Type:       contentType,
			Text:       raw.Message.Text,
			Multimedia: raw.Message.Multimedia,
			TypeUser:   sender,
			User:       raw.Message.User,
			ErrorCode:  raw.Message.ErrorCode,
			CreatedAt:  parseTime(raw.Message.CreatedAt, now),
			UpdatedAt:  parseTime(raw.Message.UpdatedAt, now),
			ReadAt:     parseTime(raw.Message.ReadAt, time.Time{}),
		},
		CreatedAt: parseTime(raw.CreatedAt, now),
	}
}

func parseTime(s string, fallback time.Time) time.Time {
	if s == "" {
		return fallback
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fallback
	}
	return t
}
