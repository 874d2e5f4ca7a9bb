package miniaudio

import (
	"encoding/binary"
	"math"
	"testing"
	"time"

	"github.com/voxa-labs/voxcore/core/audio"
)

func newTestCapture(sampleRate int) *captureClient {
	return &captureClient{
		encoding: audio.EncodingInfo{SampleRate: sampleRate, Format: audio.EncodingLinear16},
		frames:   make(chan []float32, frameBacklog),
	}
}

func rawSamples(samples ...float32) []byte {
	raw := make([]byte, len(samples)*4)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(s))
	}
	return raw
}

func TestProcessInputEmitsFullFramesInOrder(t *testing.T) {
	c := newTestCapture(40) // 4 samples per frame

	c.processInput(rawSamples(0.1, 0.2))
	select {
	case <-c.frames:
		t.Fatal("expected no frame before the buffer fills")
	default:
	}

	c.processInput(rawSamples(0.3, 0.4, 0.5))

	select {
	case frame := <-c.frames:
		if len(frame) != 4 {
			t.Fatalf("expected frame of 4 samples, got %d", len(frame))
		}
		if frame[0] != 0.1 || frame[3] != 0.4 {
			t.Fatalf("expected frame samples in capture order, got %v", frame)
		}
	default:
		t.Fatal("expected a full frame to be emitted")
	}

	if len(c.pending) != 1 {
		t.Fatalf("expected 1 leftover sample, got %d", len(c.pending))
	}
}

func TestProcessInputWhileMutedMetersButDoesNotEmit(t *testing.T) {
	c := newTestCapture(40)
	c.SetMuted(true)

	c.processInput(rawSamples(0.5, -0.5, 0.5, -0.5))

	select {
	case <-c.frames:
		t.Fatal("expected no frame while muted")
	default:
	}

	if got := c.InputLevel(); math.Abs(got-0.5) > 1e-6 {
		t.Fatalf("expected meter to keep reporting live energy while muted, got %v", got)
	}
}

func TestProcessInputDropsFramesOnOverrunWithoutBlocking(t *testing.T) {
	c := newTestCapture(40)

	for range frameBacklog + 8 {
		c.processInput(rawSamples(0.1, 0.1, 0.1, 0.1))
	}

	if got := len(c.frames); got != frameBacklog {
		t.Fatalf("expected the backlog to cap at %d frames, got %d", frameBacklog, got)
	}
}

func TestRepeatedStartReusesRunningForwarder(t *testing.T) {
	c := newTestCapture(40)

	delivered := make(chan []float32, 4)
	onFrame := func(samples []float32) { delivered <- samples }

	c.mu.Lock()
	first := c.startForwarderLocked(onFrame)
	second := c.startForwarderLocked(onFrame)
	c.mu.Unlock()

	if !first {
		t.Fatal("expected the first start to begin forwarding")
	}
	if second {
		t.Fatal("expected a repeated start to reuse the running forwarder")
	}

	c.frames <- []float32{0.1}
	c.frames <- []float32{0.2}
	for _, expected := range []float32{0.1, 0.2} {
		select {
		case frame := <-delivered:
			if frame[0] != expected {
				t.Fatalf("expected frames in capture order, got %v", frame[0])
			}
		case <-time.After(2 * time.Second):
			t.Fatal("expected the forwarder to deliver the frame")
		}
	}

	// Closing the channel retires the forwarder so a later Init can start a
	// fresh one.
	c.mu.Lock()
	close(c.frames)
	c.frames = nil
	c.mu.Unlock()

	deadline := time.Now().Add(2 * time.Second)
	for {
		c.mu.Lock()
		forwarding := c.forwarding
		c.mu.Unlock()
		if !forwarding {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("expected the forwarder to retire once the channel closed")
		}
		time.Sleep(time.Millisecond)
	}
}

func TestMapCaptureErrorClassifiesBackendMessages(t *testing.T) {
	testCases := []struct {
		message  string
		expected audio.CaptureFailure
	}{
		{message: "Access denied. (-5)", expected: audio.CaptureFailurePermissionDenied},
		{message: "No device. (-4)", expected: audio.CaptureFailureNoDevice},
		{message: "Device unavailable. (-19)", expected: audio.CaptureFailureDeviceBusy},
		{message: "Format not supported. (-200)", expected: audio.CaptureFailureUnsatisfiable},
		{message: "something else entirely", expected: audio.CaptureFailureUnknown},
	}

	for _, testCase := range testCases {
		err := mapCaptureError(errString(testCase.message))
		if err.Reason != testCase.expected {
			t.Fatalf("message %q: expected reason %d, got %d", testCase.message, testCase.expected, err.Reason)
		}
	}
}

type errString string

func (e errString) Error() string { return string(e) }
