package voiceclient

import (
	"testing"
	"time"
)

// testClock advances a fake wall clock by fixed steps so latency math is exact.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func newTestStats(clock *testClock) *statsCollector {
	stats := newStatsCollector()
	stats.now = clock.now
	return stats
}

func TestStatsLatencyFromSpeechStop(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.SpeechStarted()
	clock.advance(2 * time.Second)
	stats.SpeechStopped()
	clock.advance(100 * time.Millisecond)
	stats.ResponseCreated()
	clock.advance(300 * time.Millisecond)
	stats.TranscriptToken()

	snapshot := stats.Snapshot()
	if snapshot.LastLatencyMs == nil {
		t.Fatal("expected a latency measurement")
	}
	if got := *snapshot.LastLatencyMs; got != 400 {
		t.Fatalf("expected latency from speech stop (400ms), got %f", got)
	}
}

func TestStatsLatencyOnlyFirstTokenCounts(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.SpeechStopped()
	clock.advance(250 * time.Millisecond)
	stats.TranscriptToken()
	clock.advance(5 * time.Second)
	stats.TranscriptToken()

	if got := *stats.Snapshot().LastLatencyMs; got != 250 {
		t.Fatalf("expected later tokens to leave latency untouched, got %f", got)
	}
}

func TestStatsLatencyFallsBackToResponseCreated(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	// A typed turn has no speech boundary; latency runs from response start.
	stats.ResponseCreated()
	clock.advance(150 * time.Millisecond)
	stats.TranscriptToken()

	if got := *stats.Snapshot().LastLatencyMs; got != 150 {
		t.Fatalf("expected latency from response creation (150ms), got %f", got)
	}
}

func TestStatsSpeechStartClearsStaleStop(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.SpeechStopped()
	clock.advance(time.Minute)
	stats.SpeechStarted()
	stats.ResponseCreated()
	clock.advance(200 * time.Millisecond)
	stats.TranscriptToken()

	if got := *stats.Snapshot().LastLatencyMs; got != 200 {
		t.Fatalf("expected a fresh speech start to invalidate the old stop, got %f", got)
	}
}

func TestStatsAssistantWpm(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.ResponseCreated()
	stats.TranscriptToken()
	clock.advance(6 * time.Second)
	stats.AssistantTranscriptDone("one two three four five six seven eight nine ten")

	snapshot := stats.Snapshot()
	if snapshot.LastAssistantWpm == nil {
		t.Fatal("expected an assistant pace measurement")
	}
	if got := *snapshot.LastAssistantWpm; got != 100 {
		t.Fatalf("expected 10 words in 6s to be 100 wpm, got %f", got)
	}
}

func TestStatsUserWpmRequiresBothBoundaries(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.UserUtterance("hello there")
	if stats.Snapshot().LastUserWpm != nil {
		t.Fatal("expected no pace without speech boundaries")
	}

	stats.SpeechStarted()
	clock.advance(3 * time.Second)
	stats.SpeechStopped()
	stats.UserUtterance("one two three four five six")

	snapshot := stats.Snapshot()
	if snapshot.LastUserWpm == nil {
		t.Fatal("expected a user pace measurement")
	}
	if got := *snapshot.LastUserWpm; got != 120 {
		t.Fatalf("expected 6 words in 3s to be 120 wpm, got %f", got)
	}
}

func TestStatsToolLatency(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.ToolCallSighted("call_1")
	clock.advance(750 * time.Millisecond)
	stats.ToolOutputSighted("call_1")

	snapshot := stats.Snapshot()
	if snapshot.LastToolLatencyMs == nil {
		t.Fatal("expected a tool latency measurement")
	}
	if got := *snapshot.LastToolLatencyMs; got != 750 {
		t.Fatalf("expected 750ms tool latency, got %f", got)
	}

	// An output with no matching call cannot be timed.
	stats.ToolOutputSighted("call_unknown")
	if got := *stats.Snapshot().LastToolLatencyMs; got != 750 {
		t.Fatalf("expected an unmatched output to leave latency untouched, got %f", got)
	}
}

func TestCalcWpmGuards(t *testing.T) {
	if calcWpm(0, time.Second) != nil {
		t.Fatal("expected nil pace for zero words")
	}
	if calcWpm(5, 0) != nil {
		t.Fatal("expected nil pace for zero elapsed time")
	}
	if calcWpm(5, -time.Second) != nil {
		t.Fatal("expected nil pace for negative elapsed time")
	}
	if got := *calcWpm(10, 6*time.Second); got != 100 {
		t.Fatalf("expected rounded 100 wpm, got %f", got)
	}
}

func TestStatsReset(t *testing.T) {
	clock := newTestClock()
	stats := newTestStats(clock)

	stats.SpeechStopped()
	clock.advance(100 * time.Millisecond)
	stats.TranscriptToken()
	stats.Reset()

	snapshot := stats.Snapshot()
	if snapshot.LastLatencyMs != nil || snapshot.LastAssistantWpm != nil ||
		snapshot.LastUserWpm != nil || snapshot.LastToolLatencyMs != nil {
		t.Fatalf("expected an empty snapshot after reset, got %+v", snapshot)
	}
}
