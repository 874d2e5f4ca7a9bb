package events

const (
	// KindConversationCreated identifies the initial control frame that opens
	// the configuration handshake.
	KindConversationCreated Kind = "session.conversation_created"
	// KindSessionUpdated identifies the configuration acknowledgement.
	KindSessionUpdated Kind = "session.updated"
)

// ConversationCreated is the remote signal that the conversation exists and
// configuration may be sent.
type ConversationCreated struct{ Base }

func NewConversationCreated() ConversationCreated {
	return ConversationCreated{Base: NewBase(KindConversationCreated)}
}

// SessionUpdated acknowledges a configuration update. The first one completes
// the handshake; later ones confirm mid-session voice changes.
type SessionUpdated struct{ Base }

func NewSessionUpdated() SessionUpdated {
	return SessionUpdated{Base: NewBase(KindSessionUpdated)}
}
