package voiceclient

// Role attributes a conversation turn to a single speaker.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolTurnKind distinguishes a tool call announcement from its output.
type ToolTurnKind string

const (
	ToolTurnCall   ToolTurnKind = "call"
	ToolTurnOutput ToolTurnKind = "output"
)

// Turn is one contiguous utterance or response. Streaming assistant turns
// accumulate text incrementally until finalized; there is at most one open
// turn per role at the tail of the log.
type Turn struct {
	ID   string
	Role Role
	Text string

	// Tool turn fields.
	Name   string
	Args   string
	CallID string
	Kind   ToolTurnKind

	Final bool
}

// AgentState is the remote agent's activity as derived from protocol events.
type AgentState string

const (
	AgentStateIdle      AgentState = ""
	AgentStateListening AgentState = "listening"
	AgentStateThinking  AgentState = "thinking"
	AgentStateTalking   AgentState = "talking"
)

// Voice selects the agent's voice identity.
type Voice string

const (
	VoiceAra Voice = "Ara"
	VoiceRex Voice = "Rex"
	VoiceSal Voice = "Sal"
	VoiceEve Voice = "Eve"
	VoiceLeo Voice = "Leo"
)

// Stats are last-observed-value snapshots, recomputed per turn. Nil means the
// value has not been observed yet (or was unavailable, e.g. a zero-duration
// utterance).
type Stats struct {
	LastLatencyMs     *float64
	LastAssistantWpm  *float64
	LastUserWpm       *float64
	LastToolLatencyMs *float64
}
