package voiceclient

import (
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// conversationLog owns the ordered turn list and all idempotent mutation
// rules: tail-turn streaming, terminal finalization, and tool call/output
// de-duplication. External consumers only ever see snapshots.
type conversationLog struct {
	mu sync.RWMutex

	turns      []Turn
	transcript string

	assistantBuffer string

	seenToolCalls   map[string]struct{}
	seenToolOutputs map[string]struct{}
	toolNameByID    map[string]string
}

func newConversationLog() *conversationLog {
	return &conversationLog{
		seenToolCalls:   map[string]struct{}{},
		seenToolOutputs: map[string]struct{}{},
		toolNameByID:    map[string]string{},
	}
}

func (c *conversationLog) AppendUser(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, Turn{ID: uuid.NewString(), Role: RoleUser, Text: text, Final: true})
}

// StreamAssistantDelta appends a streamed transcript piece to the tail
// assistant turn, opening a new turn when the tail belongs to another role.
func (c *conversationLog) StreamAssistantDelta(delta string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.transcript += delta
	c.assistantBuffer += delta

	if tail := c.tailLocked(); tail != nil && tail.Role == RoleAssistant && !tail.Final {
		tail.Text = c.assistantBuffer
		return
	}
	c.turns = append(c.turns, Turn{ID: uuid.NewString(), Role: RoleAssistant, Text: c.assistantBuffer})
}

// FinalizeAssistant closes the streaming turn with its accumulated text.
// Idempotent: the text was already streamed in, so finalizing re-assigns the
// same content rather than duplicating it, and a repeated terminal event is a
// no-op because the buffer is already empty.
func (c *conversationLog) FinalizeAssistant() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	text := strings.TrimSpace(c.assistantBuffer)
	if text == "" {
		return "", false
	}
	c.assistantBuffer = ""

	if tail := c.tailLocked(); tail != nil && tail.Role == RoleAssistant && !tail.Final {
		tail.Text = text
		tail.Final = true
		return text, true
	}
	c.turns = append(c.turns, Turn{ID: uuid.NewString(), Role: RoleAssistant, Text: text, Final: true})
	return text, true
}

// AddToolCall records a tool call sighting. First arrival wins; repeated
// announcements of the same call identifier are discarded.
func (c *conversationLog) AddToolCall(callID, name, args string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if name == "" {
		name = "tool"
	}

	if callID != "" {
		if _, seen := c.seenToolCalls[callID]; seen {
			return false
		}
		c.seenToolCalls[callID] = struct{}{}
		c.toolNameByID[callID] = name
	}

	c.turns = append(c.turns, Turn{
		ID:     uuid.NewString(),
		Role:   RoleTool,
		Kind:   ToolTurnCall,
		Name:   name,
		Args:   args,
		CallID: callID,
		Final:  true,
	})
	return true
}

// AddToolOutput records a tool output sighting, de-duplicated independently
// of the call announcement and keyed the same way.
func (c *conversationLog) AddToolOutput(callID, name, output string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if callID != "" {
		if _, seen := c.seenToolOutputs[callID]; seen {
			return false
		}
		c.seenToolOutputs[callID] = struct{}{}

		if name == "" {
			name = c.toolNameByID[callID]
		}
	}
	if name == "" {
		name = "tool"
	}

	c.turns = append(c.turns, Turn{
		ID:     uuid.NewString(),
		Role:   RoleTool,
		Kind:   ToolTurnOutput,
		Name:   name,
		Text:   output,
		CallID: callID,
		Final:  true,
	})
	return true
}

func (c *conversationLog) tailLocked() *Turn {
	if len(c.turns) == 0 {
		return nil
	}
	return &c.turns[len(c.turns)-1]
}

// Snapshot returns a point-in-time copy of the turn list.
func (c *conversationLog) Snapshot() []Turn {
	c.mu.RLock()
	defer c.mu.RUnlock()

	turns := make([]Turn, 0, len(c.turns))
	_ = copier.Copy(&turns, c.turns)
	return turns
}

// Transcript is the raw streamed assistant transcript, kept alongside the
// structured log for auxiliary displays.
func (c *conversationLog) Transcript() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.transcript
}

func (c *conversationLog) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.turns = nil
	c.transcript = ""
	c.assistantBuffer = ""
	c.seenToolCalls = map[string]struct{}{}
	c.seenToolOutputs = map[string]struct{}{}
	c.toolNameByID = map[string]string{}
}
