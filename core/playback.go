package voiceclient

import (
	"sync"

	"github.com/voxa-labs/voxcore/core/audio"
)

// PlaybackSink is where decoded frames go. Play must queue the frame after
// anything already submitted and invoke done exactly once on its natural
// completion; Clear drops everything queued, cancelling pending done
// callbacks.
type PlaybackSink interface {
	Play(samples []float32, done func()) error
	Clear()
}

// playbackScheduler decodes inbound frames and plays them strictly in arrival
// order: at most one frame is in flight at any instant, and the next one is
// submitted only when the sink reports natural completion. This is what keeps
// bursts of short frames from glitching or overlapping.
type playbackScheduler struct {
	mu         sync.Mutex
	sink       PlaybackSink
	queue      [][]float32
	playing    bool
	generation int

	meter audio.Meter
}

func newPlaybackScheduler() *playbackScheduler {
	return &playbackScheduler{}
}

func (s *playbackScheduler) setSink(sink PlaybackSink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sink = sink
}

// Enqueue decodes one frame and appends it to the queue, starting the
// self-perpetuating playback chain if none is active.
func (s *playbackScheduler) Enqueue(frameText string) error {
	samples, err := audio.DecodeFrame(frameText)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.queue = append(s.queue, samples)
	if s.playing || s.sink == nil {
		s.mu.Unlock()
		return nil
	}
	s.playing = true
	s.mu.Unlock()

	s.advance()
	return nil
}

// advance plays the head of the queue. It is re-entered from the sink's done
// callback until the queue drains, at which point the meter resets to silence
// and the chain idles until the next Enqueue.
func (s *playbackScheduler) advance() {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 || s.sink == nil {
			s.playing = false
			s.mu.Unlock()
			s.meter.Reset()
			return
		}

		frame := s.queue[0]
		s.queue = s.queue[1:]
		sink := s.sink
		generation := s.generation
		s.mu.Unlock()

		s.meter.Set(audio.RMS(frame))

		err := sink.Play(frame, func() {
			s.mu.Lock()
			stale := generation != s.generation
			s.mu.Unlock()
			if !stale {
				s.advance()
			}
		})
		if err == nil {
			return
		}

		logger.Warn("failed to play frame, skipping", "error", err)
	}
}

// Stop cancels any in-flight playback, clears the queue, and resets the
// meter. Used on disconnect and on barge-in; a later Enqueue restarts
// playback cleanly.
func (s *playbackScheduler) Stop() {
	s.mu.Lock()
	s.generation++
	s.queue = nil
	s.playing = false
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		sink.Clear()
	}
	s.meter.Reset()
}

// ResetMeter zeroes the output meter without touching the queue. A completed
// response must not leave a stale non-zero loudness value.
func (s *playbackScheduler) ResetMeter() {
	s.meter.Reset()
}

func (s *playbackScheduler) OutputLevel() float64 {
	return s.meter.Level()
}
