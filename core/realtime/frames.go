package realtime

import (
	"github.com/google/uuid"
	"github.com/invopop/jsonschema"
	"github.com/voxa-labs/voxcore/core/audio"
)

// AudioFormat describes one direction of the negotiated audio stream.
type AudioFormat struct {
	Type string `json:"type"`
	Rate int    `json:"rate"`
}

func PCMFormat(rate int) AudioFormat {
	return AudioFormat{Type: "audio/pcm", Rate: rate}
}

type audioDirection struct {
	Format AudioFormat `json:"format"`
}

type SessionAudio struct {
	Input  audioDirection `json:"input"`
	Output audioDirection `json:"output"`
}

// NewSessionAudio declares both stream directions at the negotiated encoding,
// falling back to the default encoding when none was negotiated.
func NewSessionAudio(encoding audio.EncodingInfo) *SessionAudio {
	if encoding.IsZero() {
		encoding = audio.GetDefaultEncodingInfo()
	}
	return &SessionAudio{
		Input:  audioDirection{Format: PCMFormat(encoding.SampleRate)},
		Output: audioDirection{Format: PCMFormat(encoding.SampleRate)},
	}
}

type TurnDetection struct {
	Type string `json:"type"`
}

// ServerVAD asks the remote service to detect speech boundaries itself, so
// the client never signals turn ends explicitly.
func ServerVAD() *TurnDetection {
	return &TurnDetection{Type: "server_vad"}
}

// Tool declares a capability the agent may call. Builtin tools carry only a
// type; function tools additionally carry a name and a parameter schema.
type Tool struct {
	Type        string             `json:"type"`
	Name        string             `json:"name,omitempty"`
	Description string             `json:"description,omitempty"`
	Parameters  *jsonschema.Schema `json:"parameters,omitempty"`
}

func BuiltinTool(toolType string) Tool {
	return Tool{Type: toolType}
}

// FunctionTool reflects a parameter schema from the example params value.
func FunctionTool(name, description string, params any) Tool {
	tool := Tool{Type: "function", Name: name, Description: description}
	if params != nil {
		reflector := jsonschema.Reflector{DoNotReference: true}
		tool.Parameters = reflector.Reflect(params)
	}
	return tool
}

// SessionConfig is the payload of a session.update frame. Zero-valued fields
// are omitted so incremental updates (a mid-session voice change) only carry
// what changed.
type SessionConfig struct {
	Instructions  string         `json:"instructions,omitempty"`
	Voice         string         `json:"voice,omitempty"`
	Audio         *SessionAudio  `json:"audio,omitempty"`
	TurnDetection *TurnDetection `json:"turn_detection,omitempty"`
	Tools         []Tool         `json:"tools,omitempty"`
}

type sessionUpdateMsg struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

func SessionUpdateMsg(config SessionConfig) any {
	return sessionUpdateMsg{Type: "session.update", Session: config}
}

type audioAppendMsg struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

func AudioAppendMsg(audio string) any {
	return audioAppendMsg{Type: "input_audio_buffer.append", Audio: audio}
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type conversationItem struct {
	ID      string        `json:"id,omitempty"`
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type itemCreateMsg struct {
	Type string           `json:"type"`
	Item conversationItem `json:"item"`
}

// UserTextMsg wraps a typed user turn in a conversation.item.create frame.
func UserTextMsg(text string) any {
	return itemCreateMsg{
		Type: "conversation.item.create",
		Item: conversationItem{
			ID:      "item_" + uuid.NewString(),
			Type:    "message",
			Role:    "user",
			Content: []contentPart{{Type: "input_text", Text: text}},
		},
	}
}

type responseCreateMsg struct {
	Type string `json:"type"`
}

// ResponseCreateMsg explicitly requests a reply. Voice turns are triggered by
// server-side voice-activity detection; programmatic text turns need this.
func ResponseCreateMsg() any {
	return responseCreateMsg{Type: "response.create"}
}
