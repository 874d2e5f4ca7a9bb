package miniaudio

import (
	"encoding/binary"
	"math"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gen2brain/malgo"
	"github.com/voxa-labs/voxcore/core/audio"
)

// frameBacklog bounds the channel between the device callback and the
// forwarder goroutine. The callback never blocks; overrun frames are dropped.
const frameBacklog = 32

type captureClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig
	encoding     audio.EncodingInfo

	muted atomic.Bool
	meter audio.Meter

	// pending is owned exclusively by the device data callback.
	pending []float32
	frames  chan []float32

	mu         sync.Mutex
	forwarding bool
}

func (c *captureClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device != nil {
		return nil
	}

	c.audioContext = audioContext
	c.frames = make(chan []float32, frameBacklog)

	if err := c.initDeviceLocked(audio.PreferredSampleRate); err != nil {
		// Not every host honors the preferred rate; fall back to the device
		// default and report whatever was actually negotiated.
		if fallbackErr := c.initDeviceLocked(0); fallbackErr != nil {
			return mapCaptureError(fallbackErr)
		}
	}

	rate := int(c.device.SampleRate())
	if rate == 0 {
		rate = audio.PreferredSampleRate
	}
	c.encoding = audio.EncodingInfo{SampleRate: rate, Format: audio.EncodingLinear16}
	return nil
}

func (c *captureClient) initDeviceLocked(sampleRate uint32) error {
	format := malgo.FormatF32
	channels := 1
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Capture)
	c.config.SampleRate = sampleRate
	c.config.Capture.Format = format
	c.config.Capture.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PerformanceProfile = malgo.LowLatency

	var err error
	c.device, err = malgo.InitDevice(c.audioContext.Context, c.config, malgo.DeviceCallbacks{
		Data: func(_, pInput []byte, frameCount uint32) {
			n := int(frameCount) * bytesPerFrame
			if len(pInput) < n || n == 0 {
				return
			}
			c.processInput(pInput[:n])
		},
	})
	return err
}

// processInput runs on the real-time audio thread. It buffers samples into
// fixed-duration frames, keeps the loudness meter live, and posts full frames
// unless muted. Muting gates emission only, so metering works while muted but
// no audio reaches the network.
func (c *captureClient) processInput(raw []byte) {
	for i := 0; i+4 <= len(raw); i += 4 {
		c.pending = append(c.pending, math.Float32frombits(binary.LittleEndian.Uint32(raw[i:])))
	}

	frameSamples := c.encoding.FrameSamples()
	if frameSamples == 0 {
		return
	}

	for len(c.pending) >= frameSamples {
		frame := make([]float32, frameSamples)
		copy(frame, c.pending[:frameSamples])
		c.pending = c.pending[frameSamples:]

		c.meter.Set(audio.RMS(frame))
		if c.muted.Load() {
			continue
		}

		select {
		case c.frames <- frame:
		default:
			// overrun, drop rather than stall the audio thread
		}
	}
}

func (c *captureClient) Start(onFrame func(samples []float32)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return audio.NewCaptureError(audio.CaptureFailureNoDevice, nil)
	} else if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return mapCaptureError(err)
	}

	c.startForwarderLocked(onFrame)
	return nil
}

// startForwarderLocked spawns the frame consumer at most once per channel
// lifetime. A stop/start cycle reuses the running forwarder; a second
// consumer on the same channel would split and reorder frames.
func (c *captureClient) startForwarderLocked(onFrame func(samples []float32)) bool {
	if c.forwarding || c.frames == nil {
		return false
	}
	c.forwarding = true

	frames := c.frames
	go func() {
		for frame := range frames {
			onFrame(frame)
		}
		c.mu.Lock()
		c.forwarding = false
		c.mu.Unlock()
	}()
	return true
}

func (c *captureClient) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil || !c.device.IsStarted() {
		return nil
	}

	if err := c.device.Stop(); err != nil {
		return mapCaptureError(err)
	}

	c.meter.Reset()
	return nil
}

func (c *captureClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device != nil {
		c.device.Uninit()
		c.device = nil
	}
	if c.frames != nil {
		close(c.frames)
		c.frames = nil
	}
	c.pending = nil
	c.meter.Reset()
	return nil
}

func (c *captureClient) SampleRate() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.encoding.SampleRate
}

func (c *captureClient) SetMuted(muted bool) { c.muted.Store(muted) }
func (c *captureClient) InputLevel() float64 { return c.meter.Level() }

// mapCaptureError classifies backend errors into the typed capture failure
// taxonomy. The miniaudio error strings are stable enough to match on.
func mapCaptureError(err error) *audio.CaptureError {
	if err == nil {
		return nil
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "access denied"):
		return audio.NewCaptureError(audio.CaptureFailurePermissionDenied, err)
	case strings.Contains(message, "no device"), strings.Contains(message, "does not exist"):
		return audio.NewCaptureError(audio.CaptureFailureNoDevice, err)
	case strings.Contains(message, "busy"), strings.Contains(message, "in use"), strings.Contains(message, "unavailable"):
		return audio.NewCaptureError(audio.CaptureFailureDeviceBusy, err)
	case strings.Contains(message, "format"), strings.Contains(message, "invalid"):
		return audio.NewCaptureError(audio.CaptureFailureUnsatisfiable, err)
	}
	return audio.NewCaptureError(audio.CaptureFailureUnknown, err)
}
