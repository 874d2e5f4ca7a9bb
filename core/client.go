package voiceclient

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/codes"

	"github.com/voxa-labs/voxcore/core/audio"
	"github.com/voxa-labs/voxcore/core/audio/miniaudio"
	"github.com/voxa-labs/voxcore/core/events"
	"github.com/voxa-labs/voxcore/core/realtime"
)

// SessionState is the connection lifecycle of one session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateAwaitingHandshake
	StateActive
	StateError
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateAwaitingHandshake:
		return "awaiting-handshake"
	case StateActive:
		return "active"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	}
	return "unknown"
}

var (
	ErrAlreadyConnected = errors.New("session already connected")
	ErrNotConnected     = errors.New("not connected, start a voice session first")
	ErrSessionNotReady  = errors.New("session not ready, wait for the handshake to complete")
)

// AudioCapture is the input side of the audio subsystem. StartCapture must
// report the negotiated sample rate; its frame callback delivers fixed
// 100ms sample blocks, already gated by mute.
type AudioCapture interface {
	StartCapture(ctx context.Context, onFrame func(samples []float32)) (sampleRate int, err error)
	StopCapture() error
	SetMuted(muted bool)
	InputLevel() float64
}

// transport is the outbound half of the socket; the inbound half arrives as
// normalized events through the connectTransport callback wiring.
type transport interface {
	Send(msg any) error
	Close() error
}

// TokenSource issues the short-lived authorization token that rides in the
// transport's subprotocol negotiation.
type TokenSource interface {
	Fetch(ctx context.Context) (realtime.SessionGrant, error)
}

type connectTransportFunc func(ctx context.Context, token string, onEvent func(events.Event), onClose func(error)) (transport, error)

// Client is the session coordinator: it owns the connection lifecycle, the
// handshake state machine, and mediates every outbound protocol message. One
// Client drives at most one session at a time; after a disconnect the same
// Client may connect again.
type Client struct {
	mu sync.Mutex

	state        SessionState
	agentState   AgentState
	errMsg       string
	voice        Voice
	instructions string
	sampleRate   int
	muted        bool

	handshakeSent bool
	configured    bool

	conversation *conversationLog
	stats        *statsCollector
	scheduler    *playbackScheduler

	capture    AudioCapture
	sink       PlaybackSink
	ownedAudio *miniaudio.Client
	transport  transport

	tools []realtime.Tool

	backendURL       string
	endpoint         string
	tokens           TokenSource
	connectTransport connectTransportFunc
}

func NewClient(opts ...ClientOption) *Client {
	backendURL := "http://localhost:8000"
	if fromEnv, ok := os.LookupEnv("VOICE_BACKEND_URL"); ok {
		backendURL = fromEnv
	}

	c := &Client{
		state:        StateIdle,
		conversation: newConversationLog(),
		stats:        newStatsCollector(),
		scheduler:    newPlaybackScheduler(),
		backendURL:   backendURL,
		endpoint:     realtime.DefaultEndpoint,
		tools: []realtime.Tool{
			realtime.BuiltinTool("web_search"),
			realtime.BuiltinTool("x_search"),
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.tokens == nil {
		c.tokens = realtime.NewTokenClient(c.backendURL)
	}
	if c.connectTransport == nil {
		c.connectTransport = c.dialRealtime
	}
	return c
}

// Connect runs the session bring-up sequence: acquire the microphone, fetch
// an authorization token, open the transport, then wait for the configuration
// handshake driven by inbound events. Capture is acquired before any network
// call so hosts that tie the permission prompt to a user gesture do not
// silently deny it.
func (c *Client) Connect(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "connect voice session")
	defer span.End()

	c.mu.Lock()
	switch c.state {
	case StateConnecting, StateAwaitingHandshake, StateActive:
		c.mu.Unlock()
		return ErrAlreadyConnected
	}
	c.state = StateConnecting
	c.agentState = AgentStateThinking
	c.errMsg = ""
	muted := c.muted
	c.mu.Unlock()

	fail := func(err error) error {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.mu.Lock()
		c.errMsg = err.Error()
		c.state = StateError
		c.agentState = AgentStateIdle
		c.mu.Unlock()
		c.teardown()
		return err
	}

	if err := c.ensureAudio(); err != nil {
		return fail(err)
	}
	c.capture.SetMuted(muted)

	sampleRate, err := c.capture.StartCapture(ctx, c.onCaptureFrame)
	if err != nil {
		return fail(err)
	}

	grant, err := c.tokens.Fetch(ctx)
	if err != nil {
		return fail(fmt.Errorf("failed to obtain session token: %w", err))
	}

	c.mu.Lock()
	c.sampleRate = sampleRate
	if c.voice == "" {
		c.voice = Voice(grant.Voice)
		if c.voice == "" {
			c.voice = VoiceAra
		}
	}
	if c.instructions == "" {
		c.instructions = grant.Instructions
	}
	c.mu.Unlock()

	tr, err := c.connectTransport(ctx, grant.Token, c.handleEvent, c.onTransportClosed)
	if err != nil {
		return fail(fmt.Errorf("failed to open transport: %w", err))
	}

	c.mu.Lock()
	c.transport = tr
	c.handshakeSent = false
	c.configured = false
	c.state = StateAwaitingHandshake
	c.mu.Unlock()
	return nil
}

func (c *Client) dialRealtime(ctx context.Context, token string, onEvent func(events.Event), onClose func(error)) (transport, error) {
	conn, err := realtime.Dial(ctx, c.endpoint, token)
	if err != nil {
		return nil, err
	}

	go conn.ReadLoop(context.WithoutCancel(ctx), onEvent, onClose)
	return conn, nil
}

func (c *Client) ensureAudio() error {
	c.mu.Lock()
	needOwned := c.capture == nil || c.sink == nil
	c.mu.Unlock()
	if !needOwned {
		c.scheduler.setSink(c.sink)
		return nil
	}

	owned, err := miniaudio.NewClient()
	if err != nil {
		return err
	}

	c.mu.Lock()
	c.ownedAudio = owned
	if c.capture == nil {
		c.capture = owned
	}
	if c.sink == nil {
		c.sink = owned
	}
	sink := c.sink
	c.mu.Unlock()

	c.scheduler.setSink(sink)
	return nil
}

// onCaptureFrame forwards one captured frame to the transport. Frames that
// arrive before the configuration acknowledgement are dropped; the remote
// half of the protocol is not ready to receive audio yet.
func (c *Client) onCaptureFrame(samples []float32) {
	c.mu.Lock()
	tr := c.transport
	ready := c.configured
	c.mu.Unlock()
	if tr == nil || !ready {
		return
	}

	if err := tr.Send(realtime.AudioAppendMsg(audio.EncodeFrame(samples))); err != nil {
		logger.Warn("failed to forward captured frame", "error", err)
	}
}

// sendSessionConfiguration emits the single handshake configuration frame:
// voice, instructions, the negotiated audio format for both directions,
// server-side voice-activity turn detection, and the agent's tool set.
func (c *Client) sendSessionConfiguration() {
	c.mu.Lock()
	if c.handshakeSent || c.transport == nil {
		c.mu.Unlock()
		return
	}
	c.handshakeSent = true
	tr := c.transport
	config := realtime.SessionConfig{
		Instructions:  c.instructions,
		Voice:         string(c.voice),
		Audio:         realtime.NewSessionAudio(audio.EncodingInfo{SampleRate: c.sampleRate, Format: audio.EncodingLinear16}),
		TurnDetection: realtime.ServerVAD(),
		Tools:         c.tools,
	}
	c.mu.Unlock()

	if err := tr.Send(realtime.SessionUpdateMsg(config)); err != nil {
		// A dead handshake cannot recover; treat it like a transport failure
		// rather than leaving the session waiting forever.
		c.setError(fmt.Sprintf("failed to send session configuration: %v", err))
		c.teardown()
	}
}

// SendText submits a typed user turn. Only valid while the session is active:
// the turn is appended locally first (optimistic, never retracted), then the
// item-create/response-request frame pair triggers the reply, which voice
// turns get from server-side voice-activity detection instead.
func (c *Client) SendText(text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	c.mu.Lock()
	tr := c.transport
	ready := c.configured
	c.mu.Unlock()

	if tr == nil {
		c.setError(ErrNotConnected.Error())
		return ErrNotConnected
	}
	if !ready {
		c.setError(ErrSessionNotReady.Error())
		return ErrSessionNotReady
	}

	c.mu.Lock()
	c.errMsg = ""
	c.agentState = AgentStateThinking
	c.mu.Unlock()
	c.conversation.AppendUser(text)

	if err := tr.Send(realtime.UserTextMsg(text)); err != nil {
		return fmt.Errorf("failed to send text turn: %w", err)
	}
	if err := tr.Send(realtime.ResponseCreateMsg()); err != nil {
		return fmt.Errorf("failed to request response: %w", err)
	}
	return nil
}

// SetVoice switches the agent voice. Mid-session changes go out as an
// incremental configuration update without re-running the handshake.
func (c *Client) SetVoice(voice Voice) {
	c.mu.Lock()
	c.voice = voice
	tr := c.transport
	c.mu.Unlock()

	if tr == nil {
		return
	}
	if err := tr.Send(realtime.SessionUpdateMsg(realtime.SessionConfig{Voice: string(voice)})); err != nil {
		logger.Warn("failed to send voice change", "error", err)
	}
}

// SetMuted gates frame emission at the capture boundary. The device stays
// warm and the input meter keeps reporting live energy while muted.
func (c *Client) SetMuted(muted bool) {
	c.mu.Lock()
	c.muted = muted
	capture := c.capture
	c.mu.Unlock()

	if capture != nil {
		capture.SetMuted(muted)
	}
}

// Disconnect tears the session down and clears the visible conversation
// state. Safe to call from any state, returns once teardown is issued, and a
// second call is a no-op.
func (c *Client) Disconnect() {
	c.conversation.Reset()
	c.stats.Reset()
	c.teardown()
}

// onTransportClosed runs when the socket ends, from either side. A transport
// error surfaces as the session error string; teardown is unconditional and
// there is no automatic reconnect.
func (c *Client) onTransportClosed(err error) {
	if err != nil {
		c.setError(err.Error())
	}
	c.teardown()
}

// teardown is the single cleanup path: stop capture, stop playback, close
// the transport, close the owned audio subsystem, reset handshake flags. It
// is idempotent so an error arriving mid-teardown cannot leave dangling
// device handles or sockets.
func (c *Client) teardown() {
	c.mu.Lock()
	tr := c.transport
	c.transport = nil
	capture := c.capture
	owned := c.ownedAudio
	c.ownedAudio = nil
	if owned != nil {
		if c.capture == AudioCapture(owned) {
			c.capture = nil
		}
		if c.sink == PlaybackSink(owned) {
			c.sink = nil
		}
	}
	c.handshakeSent = false
	c.configured = false
	if c.state != StateError {
		c.state = StateClosed
	}
	c.agentState = AgentStateIdle
	c.mu.Unlock()

	if capture != nil {
		if err := capture.StopCapture(); err != nil {
			logger.Warn("failed to stop capture", "error", err)
		}
	}
	c.scheduler.Stop()
	if owned != nil {
		c.scheduler.setSink(nil)
	}
	if tr != nil {
		_ = tr.Close()
	}
	if owned != nil {
		owned.Close()
	}
}

func (c *Client) setError(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errMsg = message
}

// --- read-only surface for UI consumers ---

func (c *Client) State() SessionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) AgentState() AgentState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.agentState
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

func (c *Client) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

func (c *Client) Voice() Voice {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.voice
}

func (c *Client) IsMuted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.muted
}

func (c *Client) Conversation() []Turn { return c.conversation.Snapshot() }
func (c *Client) Transcript() string   { return c.conversation.Transcript() }
func (c *Client) Stats() Stats         { return c.stats.Snapshot() }

func (c *Client) InputLevel() float64 {
	c.mu.Lock()
	capture := c.capture
	c.mu.Unlock()
	if capture == nil {
		return 0
	}
	return capture.InputLevel()
}

func (c *Client) OutputLevel() float64 { return c.scheduler.OutputLevel() }
