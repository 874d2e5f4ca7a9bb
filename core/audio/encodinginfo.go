package audio

import "time"

const (
	// PreferredSampleRate is the rate requested from the host audio system.
	// Not every host honors it; the negotiated rate is reported upward so the
	// session configuration matches what the device actually produces.
	PreferredSampleRate = 48000

	// FrameDuration is the fixed length of one capture/playback frame.
	FrameDuration = 100 * time.Millisecond
)

func GetDefaultEncodingInfo() EncodingInfo {
	return EncodingInfo{SampleRate: PreferredSampleRate, Format: EncodingLinear16}
}

type EncodingInfo struct {
	SampleRate int
	Format     encodingFormat
}

func (e EncodingInfo) IsZero() bool {
	return e.SampleRate == 0 || e.Format.Name() == ""
}

// FrameSamples is the number of samples in one fixed-duration frame at this
// rate, e.g. 4800 at 48kHz.
func (e EncodingInfo) FrameSamples() int {
	return e.SampleRate / int(time.Second/FrameDuration)
}

type encodingFormat string

func (e encodingFormat) Name() string {
	return string(e)
}

func (e encodingFormat) ByteSize() int {
	switch e {
	case EncodingLinear16:
		return 2
	}
	return -1
}

const EncodingLinear16 encodingFormat = "linear16"
