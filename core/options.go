package voiceclient

import (
	"github.com/voxa-labs/voxcore/core/realtime"
)

type ClientOption func(*Client)

// WithVoice overrides the token endpoint's default voice.
func WithVoice(voice Voice) ClientOption {
	return func(c *Client) { c.voice = voice }
}

// WithInstructions overrides the token endpoint's default instruction text.
func WithInstructions(instructions string) ClientOption {
	return func(c *Client) { c.instructions = instructions }
}

// WithInitialMuted starts the session muted. The input meter still reports
// live microphone energy; only frame emission is gated.
func WithInitialMuted(muted bool) ClientOption {
	return func(c *Client) { c.muted = muted }
}

// WithBackendURL points the client at a different token-issuing endpoint.
// Defaults to VOICE_BACKEND_URL or http://localhost:8000.
func WithBackendURL(baseURL string) ClientOption {
	return func(c *Client) { c.backendURL = baseURL }
}

// WithEndpoint overrides the remote realtime socket endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithTokenSource replaces the default HTTP token client.
func WithTokenSource(source TokenSource) ClientOption {
	return func(c *Client) { c.tokens = source }
}

// WithAudioCapture injects a capture backend; without it the client owns a
// miniaudio capture device for the session's lifetime.
func WithAudioCapture(capture AudioCapture) ClientOption {
	return func(c *Client) { c.capture = capture }
}

// WithPlaybackSink injects a playback backend.
func WithPlaybackSink(sink PlaybackSink) ClientOption {
	return func(c *Client) { c.sink = sink }
}

// WithTool adds a tool the agent may call, on top of the builtin search
// tools.
func WithTool(tool realtime.Tool) ClientOption {
	return func(c *Client) { c.tools = append(c.tools, tool) }
}

// WithFunctionTool declares a function tool whose parameter schema is
// reflected from the example params value.
func WithFunctionTool(name, description string, params any) ClientOption {
	return WithTool(realtime.FunctionTool(name, description, params))
}
