// Package portaudio is an alternate audio backend for hosts where miniaudio
// is unavailable. It trades the pull-based device callbacks for PortAudio's
// blocking stream API; the capture loop and the playback writes each run on
// their own goroutine so callers never block on device I/O.
package portaudio

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/voxa-labs/voxcore/core/audio"
)

type playbackJob struct {
	samples []float32
	done    func()
}

type Client struct {
	encoding audio.EncodingInfo

	captureStream  *portaudio.Stream
	playbackStream *portaudio.Stream

	in  []float32
	out []float32

	muted   atomic.Bool
	meter   audio.Meter
	pending []float32

	playMu   sync.Mutex
	playJobs chan playbackJob

	stopped atomic.Bool

	closeOnce sync.Once
}

func NewClient() (*Client, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, audio.NewCaptureError(audio.CaptureFailureBackendUnavailable,
			fmt.Errorf("failed to initialize portaudio: %w", err))
	}

	encoding := audio.GetDefaultEncodingInfo()
	return &Client{
		encoding: encoding,
		in:       make([]float32, encoding.FrameSamples()/4),
		out:      make([]float32, encoding.FrameSamples()),
	}, nil
}

// StartCapture opens the default input stream at the preferred rate, falling
// back to the device default rate when the host rejects it. Safe to call
// again after StopCapture; a client is reused across sessions.
func (c *Client) StartCapture(ctx context.Context, onFrame func(samples []float32)) (int, error) {
	stream, err := portaudio.OpenDefaultStream(1, 0, float64(c.encoding.SampleRate), len(c.in), c.in)
	if err != nil {
		device, deviceErr := portaudio.DefaultInputDevice()
		if deviceErr != nil {
			return 0, audio.NewCaptureError(audio.CaptureFailureNoDevice, deviceErr)
		}

		c.encoding.SampleRate = int(device.DefaultSampleRate)
		stream, err = portaudio.OpenDefaultStream(1, 0, float64(c.encoding.SampleRate), len(c.in), c.in)
		if err != nil {
			return 0, audio.NewCaptureError(audio.CaptureFailureUnsatisfiable, err)
		}
	}
	c.captureStream = stream

	if err := stream.Start(); err != nil {
		return 0, audio.NewCaptureError(audio.CaptureFailureDeviceBusy, err)
	}

	c.startCaptureLoop(ctx, stream.Read, onFrame)
	return c.encoding.SampleRate, nil
}

// startCaptureLoop re-arms the stop flag before spawning the loop, so a
// stop from a previous session cannot kill the new one.
func (c *Client) startCaptureLoop(ctx context.Context, read func() error, onFrame func(samples []float32)) {
	c.stopped.Store(false)
	c.pending = nil
	go c.captureLoop(ctx, read, onFrame)
}

func (c *Client) captureLoop(ctx context.Context, read func() error, onFrame func(samples []float32)) {
	frameSamples := c.encoding.FrameSamples()
	for {
		if c.stopped.Load() || ctx.Err() != nil {
			return
		}

		if err := read(); err != nil {
			if !c.stopped.Load() {
				logger.WarnContext(ctx, "capture read failed", "error", err)
			}
			return
		}

		c.pending = append(c.pending, c.in...)
		for len(c.pending) >= frameSamples {
			frame := make([]float32, frameSamples)
			copy(frame, c.pending[:frameSamples])
			c.pending = c.pending[frameSamples:]

			c.meter.Set(audio.RMS(frame))
			if !c.muted.Load() {
				onFrame(frame)
			}
		}
	}
}

func (c *Client) StopCapture() error {
	if !c.stopped.CompareAndSwap(false, true) {
		return nil
	}

	if c.captureStream != nil {
		if err := c.captureStream.Stop(); err != nil {
			return fmt.Errorf("failed to stop capture stream: %w", err)
		}
		c.captureStream.Close()
		c.captureStream = nil
	}
	c.meter.Reset()
	return nil
}

func (c *Client) SetMuted(muted bool) { c.muted.Store(muted) }
func (c *Client) InputLevel() float64 { return c.meter.Level() }

// Play hands one frame to the playback goroutine and returns immediately;
// done fires after the blocking writes for that frame complete. The caller's
// goroutine handles inbound events, so it must never wait on device I/O.
func (c *Client) Play(samples []float32, done func()) error {
	c.playMu.Lock()
	if c.playJobs == nil {
		if err := c.openPlaybackLocked(); err != nil {
			c.playMu.Unlock()
			return err
		}
		c.startPlaybackLoopLocked(c.writeBlocking)
	}
	jobs := c.playJobs
	c.playMu.Unlock()

	// At most one frame is submitted ahead of completion, so this never
	// blocks in practice.
	jobs <- playbackJob{samples: samples, done: done}
	return nil
}

func (c *Client) openPlaybackLocked() error {
	stream, err := portaudio.OpenDefaultStream(0, 1, float64(c.encoding.SampleRate), len(c.out), c.out)
	if err != nil {
		return fmt.Errorf("failed to open playback stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start playback stream: %w", err)
	}
	c.playbackStream = stream
	return nil
}

func (c *Client) startPlaybackLoopLocked(write func(samples []float32) error) {
	jobs := make(chan playbackJob, 1)
	c.playJobs = jobs
	go func() {
		for job := range jobs {
			if err := write(job.samples); err != nil {
				logger.Warn("failed to write playback frame", "error", err)
			}
			if job.done != nil {
				job.done()
			}
		}
	}()
}

// writeBlocking pushes one frame through the output stream in device-buffer
// sized chunks, zero-padding the tail chunk.
func (c *Client) writeBlocking(samples []float32) error {
	for offset := 0; offset < len(samples); offset += len(c.out) {
		chunk := samples[offset:min(offset+len(c.out), len(samples))]
		n := copy(c.out, chunk)
		for i := n; i < len(c.out); i++ {
			c.out[i] = 0
		}
		if err := c.playbackStream.Write(); err != nil {
			return fmt.Errorf("failed to write to playback stream: %w", err)
		}
	}
	return nil
}

// Clear drops any queued frame; its done callback never fires. A frame
// already being written finishes within one device period, and its done is
// ignored upstream once playback has been cancelled.
func (c *Client) Clear() {
	c.playMu.Lock()
	jobs := c.playJobs
	c.playMu.Unlock()
	if jobs == nil {
		return
	}

	for {
		select {
		case <-jobs:
		default:
			return
		}
	}
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.StopCapture()

		c.playMu.Lock()
		if c.playJobs != nil {
			close(c.playJobs)
			c.playJobs = nil
		}
		if c.playbackStream != nil {
			c.playbackStream.Close()
			c.playbackStream = nil
		}
		c.playMu.Unlock()

		portaudio.Terminate()
	})
}
