package bus

import "time"

// Event kinds published by the conversation core.
const (
	KindConversationsLoaded    = "conversation.loaded"
	KindConversationMessages   = "conversation.messages_loaded"
	KindConversationLoadFailed = "conversation.load_failed"
	KindConversationAppended   = "conversation.message_appended"
	KindConnectivityChanged    = "connectivity.changed"
	KindNotifyPrefix           = "notify."
)

// Event is a domain event published on the bus. ID is assigned on
// publish when empty.
type Event struct {
	ID        string
	Kind      string
	Timestamp time.Time
	Payload   any
}
