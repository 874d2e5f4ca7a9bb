package audio

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
)

// EncodeFrame converts float samples to little-endian PCM16 and wraps the
// result in the text-safe transport encoding used on the wire.
func EncodeFrame(samples []float32) string {
	return base64.StdEncoding.EncodeToString(FloatToPCM16(samples))
}

// DecodeFrame reverses [EncodeFrame]. Only the text layer can fail; the
// sample conversion itself has no error states.
func DecodeFrame(text string) ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("failed to decode audio frame: %w", err)
	}
	return PCM16ToFloat(raw), nil
}

// FloatToPCM16 quantizes samples into the signed 16-bit range. Samples are
// clamped to [-1, 1] first so out-of-range input cannot wrap around.
func FloatToPCM16(samples []float32) []byte {
	step := EncodingLinear16.ByteSize()
	out := make([]byte, len(samples)*step)
	for i, s := range samples {
		if s < -1 {
			s = -1
		} else if s > 1 {
			s = 1
		}

		var v int16
		if s < 0 {
			v = int16(s * 0x8000)
		} else {
			v = int16(s * 0x7fff)
		}
		binary.LittleEndian.PutUint16(out[i*step:], uint16(v))
	}
	return out
}

// PCM16ToFloat converts little-endian PCM16 bytes back to float samples,
// undoing the asymmetric scaling of [FloatToPCM16].
func PCM16ToFloat(raw []byte) []float32 {
	step := EncodingLinear16.ByteSize()
	out := make([]float32, len(raw)/step)
	for i := range out {
		v := int16(binary.LittleEndian.Uint16(raw[i*step:]))
		if v < 0 {
			out[i] = float32(v) / 0x8000
		} else {
			out[i] = float32(v) / 0x7fff
		}
	}
	return out
}

// RMS returns the root-mean-square loudness of a frame, used for the
// input/output meters.
func RMS(samples []float32) float64 {
	if len(samples) == 0 {
		return 0
	}

	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return math.Sqrt(sum / float64(len(samples)))
}
