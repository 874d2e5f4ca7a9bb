package portaudio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/voxa-labs/voxcore/core/audio"
)

func newTestClient(frameSamples int) *Client {
	encoding := audio.EncodingInfo{SampleRate: frameSamples * 10, Format: audio.EncodingLinear16}
	return &Client{
		encoding: encoding,
		in:       make([]float32, frameSamples),
		out:      make([]float32, frameSamples),
	}
}

// stepRead returns a read function that delivers one input buffer per signal
// and fails once the step channel closes, like a stopped stream.
func stepRead(c *Client, step chan struct{}) func() error {
	return func() error {
		if _, ok := <-step; !ok {
			return errors.New("stream stopped")
		}
		for i := range c.in {
			c.in[i] = 0.5
		}
		return nil
	}
}

func waitFrame(t *testing.T, frames chan []float32) {
	t.Helper()
	select {
	case <-frames:
	case <-time.After(2 * time.Second):
		t.Fatal("expected a captured frame")
	}
}

func TestCaptureRunsAgainAfterStop(t *testing.T) {
	c := newTestClient(4)
	frames := make(chan []float32, 8)
	onFrame := func(samples []float32) { frames <- samples }

	step := make(chan struct{})
	c.startCaptureLoop(context.Background(), stepRead(c, step), onFrame)
	step <- struct{}{}
	waitFrame(t, frames)

	if err := c.StopCapture(); err != nil {
		t.Fatalf("expected stop to succeed, got %v", err)
	}
	close(step)

	// A reused client must capture again on its next session; the previous
	// stop must not kill the fresh loop.
	step = make(chan struct{})
	c.startCaptureLoop(context.Background(), stepRead(c, step), onFrame)
	step <- struct{}{}
	waitFrame(t, frames)

	if err := c.StopCapture(); err != nil {
		t.Fatalf("expected second stop to succeed, got %v", err)
	}
	close(step)
}

func TestCaptureLoopChunksAndMeters(t *testing.T) {
	c := newTestClient(4)
	frames := make(chan []float32, 8)

	step := make(chan struct{})
	c.startCaptureLoop(context.Background(), stepRead(c, step), func(samples []float32) {
		frames <- samples
	})
	step <- struct{}{}

	select {
	case frame := <-frames:
		if len(frame) != 4 {
			t.Fatalf("expected frame of 4 samples, got %d", len(frame))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a captured frame")
	}
	if got := c.InputLevel(); got <= 0 {
		t.Fatalf("expected a live input meter, got %f", got)
	}

	if err := c.StopCapture(); err != nil {
		t.Fatalf("expected stop to succeed, got %v", err)
	}
	close(step)
	if got := c.InputLevel(); got != 0 {
		t.Fatalf("expected the meter to reset on stop, got %f", got)
	}
}

func TestCaptureWhileMutedMetersButDoesNotEmit(t *testing.T) {
	c := newTestClient(4)
	c.SetMuted(true)

	emitted := make(chan []float32, 8)
	step := make(chan struct{})
	c.startCaptureLoop(context.Background(), stepRead(c, step), func(samples []float32) {
		emitted <- samples
	})
	step <- struct{}{}

	deadline := time.Now().Add(2 * time.Second)
	for c.InputLevel() <= 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected the meter to keep reporting live energy while muted")
		}
		time.Sleep(time.Millisecond)
	}
	select {
	case <-emitted:
		t.Fatal("expected no frame while muted")
	default:
	}

	_ = c.StopCapture()
	close(step)
}

func TestPlayReturnsWhileWriteIsInFlight(t *testing.T) {
	c := newTestClient(4)

	writeStarted := make(chan struct{}, 2)
	release := make(chan struct{})
	c.playMu.Lock()
	c.startPlaybackLoopLocked(func(samples []float32) error {
		writeStarted <- struct{}{}
		<-release
		return nil
	})
	c.playMu.Unlock()

	doneFired := make(chan struct{}, 1)
	if err := c.Play([]float32{0.1, 0.2}, func() { doneFired <- struct{}{} }); err != nil {
		t.Fatalf("expected play to succeed, got %v", err)
	}

	// Play already returned; the write must still be pending.
	select {
	case <-writeStarted:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the playback goroutine to pick up the frame")
	}
	select {
	case <-doneFired:
		t.Fatal("expected done to fire only after the write completes")
	default:
	}

	close(release)
	select {
	case <-doneFired:
	case <-time.After(2 * time.Second):
		t.Fatal("expected done to fire once the write completed")
	}
}

func TestClearDropsQueuedFrame(t *testing.T) {
	c := newTestClient(4)

	writeStarted := make(chan struct{}, 2)
	release := make(chan struct{})
	writes := 0
	c.playMu.Lock()
	c.startPlaybackLoopLocked(func(samples []float32) error {
		writes++
		writeStarted <- struct{}{}
		<-release
		return nil
	})
	c.playMu.Unlock()

	firstDone := make(chan struct{}, 1)
	queuedDone := make(chan struct{}, 1)
	if err := c.Play([]float32{0.1}, func() { firstDone <- struct{}{} }); err != nil {
		t.Fatalf("expected play to succeed, got %v", err)
	}
	<-writeStarted
	if err := c.Play([]float32{0.2}, func() { queuedDone <- struct{}{} }); err != nil {
		t.Fatalf("expected play to succeed, got %v", err)
	}

	c.Clear()
	close(release)

	select {
	case <-firstDone:
	case <-time.After(2 * time.Second):
		t.Fatal("expected the in-flight frame to complete")
	}
	select {
	case <-queuedDone:
		t.Fatal("expected the queued frame's done to be cancelled")
	case <-time.After(100 * time.Millisecond):
	}
	if writes != 1 {
		t.Fatalf("expected the cleared frame never to be written, got %d writes", writes)
	}
}

func TestClearWithoutPlaybackIsNoOp(t *testing.T) {
	c := newTestClient(4)
	c.Clear()
}
