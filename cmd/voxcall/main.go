// Command voxcall is a terminal console for live voice conversations. It
// drives one voice session: microphone in, agent audio out, with the running
// transcript, agent activity, and turn metrics rendered in place.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	voiceclient "github.com/voxa-labs/voxcore/core"
	"github.com/voxa-labs/voxcore/core/audio/portaudio"
)

var voices = []voiceclient.Voice{
	voiceclient.VoiceAra,
	voiceclient.VoiceRex,
	voiceclient.VoiceSal,
	voiceclient.VoiceEve,
	voiceclient.VoiceLeo,
}

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("75")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	toolStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
	meterOnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	meterOffStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	helpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type tickMsg time.Time

type connectedMsg struct{ err error }

func tick() tea.Cmd {
	return tea.Tick(100*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

type model struct {
	client *voiceclient.Client
	input  textinput.Model

	width      int
	height     int
	voiceIndex int
	connecting bool
	sendErr    string
}

func newModel() (model, error) {
	input := textinput.New()
	input.Placeholder = "type to the agent, enter to send"
	input.Prompt = "> "
	input.CharLimit = 500
	input.Focus()

	opts := []voiceclient.ClientOption{voiceclient.WithVoice(voices[0])}
	// The default backend is miniaudio; portaudio covers hosts where that
	// backend cannot open the device.
	if os.Getenv("VOICE_AUDIO_BACKEND") == "portaudio" {
		backend, err := portaudio.NewClient()
		if err != nil {
			return model{}, err
		}
		opts = append(opts,
			voiceclient.WithAudioCapture(backend),
			voiceclient.WithPlaybackSink(backend),
		)
	}

	return model{
		client: voiceclient.NewClient(opts...),
		input:  input,
		width:  80,
		height: 24,
	}, nil
}

func (m model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, tick())
}

func (m model) connect() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return connectedMsg{err: m.client.Connect(ctx)}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(20, m.width-4)
		return m, nil

	case tickMsg:
		return m, tick()

	case connectedMsg:
		m.connecting = false
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.client.Disconnect()
			return m, tea.Quit

		case "ctrl+o":
			if m.client.IsConnected() {
				m.client.Disconnect()
				return m, nil
			}
			if m.connecting {
				return m, nil
			}
			m.connecting = true
			m.sendErr = ""
			return m, m.connect()

		case "ctrl+t":
			m.client.SetMuted(!m.client.IsMuted())
			return m, nil

		case "ctrl+v":
			m.voiceIndex = (m.voiceIndex + 1) % len(voices)
			m.client.SetVoice(voices[m.voiceIndex])
			return m, nil

		case "enter":
			text := m.input.Value()
			m.input.Reset()
			m.sendErr = ""
			if err := m.client.SendText(text); err != nil {
				m.sendErr = err.Error()
			}
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("voxcall"))
	b.WriteString("  ")
	b.WriteString(statusStyle.Render(m.statusLine()))
	b.WriteString("\n")
	b.WriteString(m.meterLine())
	b.WriteString("\n\n")

	b.WriteString(m.conversationView())
	b.WriteString("\n")

	if stats := m.statsLine(); stats != "" {
		b.WriteString(statusStyle.Render(stats))
		b.WriteString("\n")
	}
	if errMsg := m.errorLine(); errMsg != "" {
		b.WriteString(errorStyle.Render(wordwrap.String(errMsg, m.width)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("ctrl+o connect/disconnect · ctrl+t mute · ctrl+v voice · ctrl+c quit"))
	return b.String()
}

func (m model) statusLine() string {
	state := m.client.State().String()
	if m.connecting {
		state = "connecting"
	}

	parts := []string{state, "voice " + string(m.client.Voice())}
	if agent := m.client.AgentState(); agent != voiceclient.AgentStateIdle {
		parts = append(parts, "agent "+string(agent))
	}
	if m.client.IsMuted() {
		parts = append(parts, "muted")
	}
	return strings.Join(parts, " · ")
}

func (m model) meterLine() string {
	return fmt.Sprintf("%s %s   %s %s",
		statusStyle.Render("mic"), renderMeter(m.client.InputLevel()),
		statusStyle.Render("out"), renderMeter(m.client.OutputLevel()))
}

// renderMeter maps an RMS level onto a fixed-width bar. Levels above ~0.35
// already read as loud speech, so the scale saturates early.
func renderMeter(level float64) string {
	const width = 16
	lit := int(level / 0.35 * width)
	if lit > width {
		lit = width
	}
	return meterOnStyle.Render(strings.Repeat("█", lit)) +
		meterOffStyle.Render(strings.Repeat("░", width-lit))
}

func (m model) conversationView() string {
	turns := m.client.Conversation()
	if len(turns) == 0 {
		return statusStyle.Render("no conversation yet, press ctrl+o to start a call")
	}

	// Keep only as many turns as the viewport can plausibly show.
	maxTurns := max(4, m.height-10)
	if len(turns) > maxTurns {
		turns = turns[len(turns)-maxTurns:]
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		lines = append(lines, renderTurn(turn, m.width))
	}
	return strings.Join(lines, "\n")
}

func renderTurn(turn voiceclient.Turn, width int) string {
	var label, body string
	switch turn.Role {
	case voiceclient.RoleUser:
		label = userStyle.Render("you")
		body = turn.Text
	case voiceclient.RoleAssistant:
		label = assistantStyle.Render("agent")
		body = turn.Text
		if !turn.Final {
			body += " …"
		}
	case voiceclient.RoleTool:
		label = toolStyle.Render(turn.Name)
		if turn.Kind == voiceclient.ToolTurnCall {
			body = "called " + turn.Args
		} else {
			body = turn.Text
		}
	}
	return label + " " + wordwrap.String(body, max(20, width-8))
}

func (m model) statsLine() string {
	stats := m.client.Stats()

	parts := []string{}
	if stats.LastLatencyMs != nil {
		parts = append(parts, fmt.Sprintf("latency %.0fms", *stats.LastLatencyMs))
	}
	if stats.LastAssistantWpm != nil {
		parts = append(parts, fmt.Sprintf("agent %.0f wpm", *stats.LastAssistantWpm))
	}
	if stats.LastUserWpm != nil {
		parts = append(parts, fmt.Sprintf("you %.0f wpm", *stats.LastUserWpm))
	}
	if stats.LastToolLatencyMs != nil {
		parts = append(parts, fmt.Sprintf("tool %.0fms", *stats.LastToolLatencyMs))
	}
	return strings.Join(parts, " · ")
}

func (m model) errorLine() string {
	if m.sendErr != "" {
		return m.sendErr
	}
	return m.client.Err()
}

func main() {
	m, err := newModel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "voxcall:", err)
		os.Exit(1)
	}
	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintln(os.Stderr, "voxcall:", err)
		os.Exit(1)
	}
}
