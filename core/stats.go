package voiceclient

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/voxa-labs/voxcore/internal/utils"
)

// statsCollector derives round-trip latency, words-per-minute, and tool
// latency from timestamps recorded by the other components. All values are
// last-observed snapshots; no history is kept because consumers only display
// the most recent turn's numbers.
type statsCollector struct {
	mu  sync.Mutex
	now func() time.Time

	lastSpeechStart     time.Time
	lastSpeechStop      time.Time
	lastResponseCreated time.Time

	assistantTranscriptStart time.Time

	toolCallStart map[string]time.Time

	stats Stats
}

func newStatsCollector() *statsCollector {
	return &statsCollector{
		now:           time.Now,
		toolCallStart: map[string]time.Time{},
	}
}

func (s *statsCollector) SpeechStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSpeechStart = s.now()
	s.lastSpeechStop = time.Time{}
}

func (s *statsCollector) SpeechStopped() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSpeechStop = s.now()
}

func (s *statsCollector) ResponseCreated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastResponseCreated = s.now()
	s.assistantTranscriptStart = time.Time{}
}

// TranscriptToken records one streamed assistant token. Only the first token
// of a turn starts the latency measurement, from the earlier of the last
// speech stop and the response creation; later tokens do not reset it.
func (s *statsCollector) TranscriptToken() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.assistantTranscriptStart.IsZero() {
		return
	}
	now := s.now()
	s.assistantTranscriptStart = now

	var since time.Time
	switch {
	case !s.lastSpeechStop.IsZero():
		since = s.lastSpeechStop
	case !s.lastResponseCreated.IsZero():
		since = s.lastResponseCreated
	default:
		return
	}

	latency := math.Max(0, float64(now.Sub(since))/float64(time.Millisecond))
	s.stats.LastLatencyMs = utils.Ptr(latency)
}

func (s *statsCollector) AssistantTranscriptDone(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.assistantTranscriptStart.IsZero() {
		return
	}
	if wpm := calcWpm(countWords(text), s.now().Sub(s.assistantTranscriptStart)); wpm != nil {
		s.stats.LastAssistantWpm = wpm
	}
}

// UserUtterance computes the user's speaking pace when both boundaries of the
// utterance were observed.
func (s *statsCollector) UserUtterance(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lastSpeechStart.IsZero() || s.lastSpeechStop.IsZero() || !s.lastSpeechStop.After(s.lastSpeechStart) {
		return
	}
	if wpm := calcWpm(countWords(text), s.lastSpeechStop.Sub(s.lastSpeechStart)); wpm != nil {
		s.stats.LastUserWpm = wpm
	}
}

func (s *statsCollector) ToolCallSighted(callID string) {
	if callID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.toolCallStart[callID]; !ok {
		s.toolCallStart[callID] = s.now()
	}
}

func (s *statsCollector) ToolOutputSighted(callID string) {
	if callID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	start, ok := s.toolCallStart[callID]
	if !ok {
		return
	}

	latency := math.Max(0, float64(s.now().Sub(start))/float64(time.Millisecond))
	s.stats.LastToolLatencyMs = utils.Ptr(latency)
}

func (s *statsCollector) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := Stats{}
	if s.stats.LastLatencyMs != nil {
		snapshot.LastLatencyMs = utils.Ptr(*s.stats.LastLatencyMs)
	}
	if s.stats.LastAssistantWpm != nil {
		snapshot.LastAssistantWpm = utils.Ptr(*s.stats.LastAssistantWpm)
	}
	if s.stats.LastUserWpm != nil {
		snapshot.LastUserWpm = utils.Ptr(*s.stats.LastUserWpm)
	}
	if s.stats.LastToolLatencyMs != nil {
		snapshot.LastToolLatencyMs = utils.Ptr(*s.stats.LastToolLatencyMs)
	}
	return snapshot
}

func (s *statsCollector) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastSpeechStart = time.Time{}
	s.lastSpeechStop = time.Time{}
	s.lastResponseCreated = time.Time{}
	s.assistantTranscriptStart = time.Time{}
	s.toolCallStart = map[string]time.Time{}
	s.stats = Stats{}
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

// calcWpm guards against zero, negative, and non-finite durations; nil means
// unavailable rather than Inf or NaN.
func calcWpm(words int, elapsed time.Duration) *float64 {
	if words <= 0 || elapsed <= 0 {
		return nil
	}

	minutes := elapsed.Minutes()
	wpm := float64(words) / minutes
	if math.IsInf(wpm, 0) || math.IsNaN(wpm) {
		return nil
	}
	return utils.Ptr(math.Round(wpm))
}
