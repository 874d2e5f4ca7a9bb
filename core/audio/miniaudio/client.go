package miniaudio

import (
	"context"
	"fmt"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/voxa-labs/voxcore/core/audio"
)

// Client owns one miniaudio context with a capture and a playback device.
// Capture is initialized lazily on StartCapture so device acquisition errors
// surface as typed capture failures at connect time, not at construction.
type Client struct {
	// audioContext is only saved to be able to uninitialize it, it is an
	// ownership thing
	audioContext *malgo.AllocatedContext
	playbackClient
	captureClient

	closeOnce sync.Once
}

func NewClient() (*Client, error) {
	audioCtx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(message string) {})
	if err != nil {
		return nil, audio.NewCaptureError(audio.CaptureFailureBackendUnavailable,
			fmt.Errorf("failed to initialize audio context: %w", err))
	}

	client := Client{audioContext: audioCtx}

	if err := client.playbackClient.Init(audioCtx); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to initialize playback client: %w", err)
	}

	return &client, nil
}

// StartCapture acquires the input device and returns the negotiated sample
// rate, which may differ from the preferred rate when the host does not honor
// it.
func (c *Client) StartCapture(ctx context.Context, onFrame func(samples []float32)) (int, error) {
	if err := c.captureClient.Init(c.audioContext); err != nil {
		return 0, err
	}
	if err := c.captureClient.Start(onFrame); err != nil {
		return 0, err
	}
	return c.captureClient.SampleRate(), nil
}

func (c *Client) StopCapture() error {
	return c.captureClient.Stop()
}

func (c *Client) Close() {
	c.closeOnce.Do(func() {
		_ = c.captureClient.Uninit()
		_ = c.playbackClient.Uninit()
		_ = c.audioContext.Uninit()
		c.audioContext.Free()
	})
}
