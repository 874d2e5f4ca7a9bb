package voiceclient

import (
	"github.com/voxa-labs/voxcore/core/events"
)

// handleEvent applies one canonical inbound event to session state. Events
// arrive in remote-send order on a single goroutine, so no ordering work is
// needed here.
func (c *Client) handleEvent(event events.Event) {
	switch ev := event.(type) {
	case events.ConversationCreated:
		c.sendSessionConfiguration()

	case events.SessionUpdated:
		c.mu.Lock()
		if !c.configured {
			c.configured = true
			c.state = StateActive
			c.agentState = AgentStateListening
		}
		c.mu.Unlock()

	case events.SpeechStarted:
		c.setAgentState(AgentStateListening)
		c.stats.SpeechStarted()

	case events.SpeechStopped:
		c.setAgentState(AgentStateThinking)
		c.stats.SpeechStopped()

	case events.ResponseCreated:
		c.setAgentState(AgentStateThinking)
		c.stats.ResponseCreated()
		// Barge-in: a new assistant turn must not play over a previous one.
		c.scheduler.Stop()

	case events.MessageStarted:
		c.setAgentState(AgentStateTalking)

	case events.AudioDelta:
		if err := c.scheduler.Enqueue(ev.Audio); err != nil {
			logger.Warn("dropping undecodable audio frame", "error", err)
		}

	case events.TranscriptDelta:
		c.conversation.StreamAssistantDelta(ev.Delta)
		c.stats.TranscriptToken()

	case events.TranscriptDone:
		if text, ok := c.conversation.FinalizeAssistant(); ok {
			c.stats.AssistantTranscriptDone(text)
		}

	case events.ResponseDone:
		c.setAgentState(AgentStateListening)
		c.scheduler.ResetMeter()

	case events.ToolCallSighted:
		if c.conversation.AddToolCall(ev.CallID, ev.Name, ev.Arguments) {
			c.stats.ToolCallSighted(ev.CallID)
		}

	case events.ToolOutputSighted:
		if c.conversation.AddToolOutput(ev.CallID, ev.Name, ev.Output) {
			c.stats.ToolOutputSighted(ev.CallID)
		}

	case events.UserTranscript:
		c.conversation.AppendUser(ev.Transcript)
		c.stats.UserUtterance(ev.Transcript)

	case events.RemoteError:
		c.setError(ev.Message)

	case events.Unknown:
		logger.Debug("ignoring unknown frame type", "type", ev.Type)
	}
}

func (c *Client) setAgentState(state AgentState) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.agentState = state
}
