package miniaudio

import (
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxa-labs/voxcore/core/audio"
)

type playbackClient struct {
	audioContext *malgo.AllocatedContext
	device       *malgo.Device
	config       malgo.DeviceConfig

	leftoverAudio []byte
	marks         []playbackMark

	mu      sync.Mutex
	audioMu sync.Mutex
	marksMu sync.Mutex
}

// playbackMark fires its callback once the device has consumed every byte
// queued before it. The playback scheduler uses one mark per frame to learn
// when a frame finished playing.
type playbackMark struct {
	position int
	callback func()
}

func (c *playbackClient) Init(audioContext *malgo.AllocatedContext) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	encoding := audio.GetDefaultEncodingInfo()
	channels := 1
	format := malgo.FormatS16
	bytesPerFrame := malgo.SampleSizeInBytes(format) * channels

	c.config = malgo.DefaultDeviceConfig(malgo.Playback)
	c.config.SampleRate = uint32(encoding.SampleRate)
	c.config.Playback.Format = format
	c.config.Playback.Channels = uint32(channels)
	c.config.Alsa.NoMMap = 1
	c.config.PeriodSizeInFrames = uint32(encoding.FrameSamples()) // one frame of audio
	c.config.Periods = 4

	c.audioContext = audioContext

	var err error
	if c.device, err = malgo.InitDevice(
		c.audioContext.Context,
		c.config,
		malgo.DeviceCallbacks{Data: c.processAudio(bytesPerFrame)},
	); err != nil {
		return err
	}

	return nil
}

func (c *playbackClient) ensureStarted() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return fmt.Errorf("device not initialized")
	}
	if c.device.IsStarted() {
		return nil
	}

	if err := c.device.Start(); err != nil {
		return fmt.Errorf("failed to start playback device: %w", err)
	}
	return nil
}

// Play queues one decoded frame and registers done to fire when the device
// has played past it. Frames queue strictly in call order.
func (c *playbackClient) Play(samples []float32, done func()) error {
	if err := c.ensureStarted(); err != nil {
		return err
	}

	pcm := audio.FloatToPCM16(samples)

	c.audioMu.Lock()
	c.marksMu.Lock()
	defer c.audioMu.Unlock()
	defer c.marksMu.Unlock()
	c.leftoverAudio = append(c.leftoverAudio, pcm...)
	if done != nil {
		c.marks = append(c.marks, playbackMark{position: len(c.leftoverAudio), callback: done})
	}
	return nil
}

// Clear drops everything queued, including pending completion marks. Used for
// barge-in and teardown; cancelled marks never fire.
func (c *playbackClient) Clear() {
	c.audioMu.Lock()
	c.marksMu.Lock()
	defer c.audioMu.Unlock()
	defer c.marksMu.Unlock()
	c.leftoverAudio = nil
	c.marks = nil
}

func (c *playbackClient) Uninit() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.device == nil {
		return nil
	}

	c.device.Uninit()
	c.device = nil
	c.Clear()
	return nil
}

func (c *playbackClient) processAudio(bytesPerFrame int) malgo.DataProc {
	return func(pOutput, _ []byte, frameCount uint32) {
		need := int(frameCount) * bytesPerFrame
		if need < len(pOutput) {
			pOutput = pOutput[:need]
		}

		c.audioMu.Lock()
		n := copy(pOutput, c.leftoverAudio)
		if n >= len(c.leftoverAudio) {
			c.leftoverAudio = nil
		} else {
			c.leftoverAudio = c.leftoverAudio[n:]
		}
		c.audioMu.Unlock()

		if n > 0 {
			c.processMarks(n)
		}
	}
}

func (c *playbackClient) processMarks(consumed int) {
	c.marksMu.Lock()
	passedMarks := 0
	for i := range c.marks {
		if c.marks[i].position > consumed {
			c.marks[i].position -= consumed
		} else {
			passedMarks++
		}
	}
	var toCall []playbackMark
	if passedMarks > 0 {
		toCall = append(toCall, c.marks[:passedMarks]...)
		c.marks = c.marks[passedMarks:]
	}
	c.marksMu.Unlock()

	if len(toCall) > 0 {
		go func() {
			for _, mark := range toCall {
				mark.callback()
			}
		}()
	}
}
