// Package pcm converts between the wire audio format of the live service
// (base64-encoded 16-bit signed little-endian PCM) and the float sample
// buffers used by the capture and playback pipeline.
package pcm

import (
	"encoding/base64"
	"fmt"
	"time"
)

const (
	// InputSampleRate is the capture sample rate expected by the service.
	InputSampleRate = 16000
	// OutputSampleRate is the sample rate of audio returned by the service.
	OutputSampleRate = 24000
	// InputMIMEType declares the outbound frame format.
	InputMIMEType = "audio/pcm;rate=16000"

	bytesPerSample = 2
)

// Payload is one encoded audio frame ready for transmission.
type Payload struct {
	Data     string `json:"data"`
	MIMEType string `json:"mimeType"`
}

// EncodeBase64 encodes raw bytes using the standard base64 alphabet.
func EncodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// DecodeBase64 decodes a standard-alphabet base64 string.
func DecodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}

// FramePayload converts one mono float frame into an encoded 16 kHz PCM
// payload. Samples are clamped to [-1, 1] before scaling so out-of-range
// input saturates instead of wrapping.
func FramePayload(samples []float32) Payload {
	return Payload{
		Data:     EncodeBase64(FrameBytes(samples)),
		MIMEType: InputMIMEType,
	}
}

// FrameBytes converts float samples to 16-bit signed little-endian PCM.
func FrameBytes(samples []float32) []byte {
	out := make([]byte, len(samples)*bytesPerSample)
	for i, v := range samples {
		s := int32(v * 32768)
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		out[i*2] = byte(s)
		out[i*2+1] = byte(s >> 8)
	}
	return out
}

// Buffer holds decoded multi-channel float audio at a known sample rate.
type Buffer struct {
	Channels   [][]float32
	SampleRate int
}

// DecodeChunk interprets pcm16 as interleaved 16-bit signed little-endian
// samples and de-interleaves them into per-channel float arrays normalized
// to [-1, 1]. The byte length must divide evenly into whole frames; a
// remainder means upstream corruption and fails loudly rather than being
// silently truncated.
func DecodeChunk(pcm16 []byte, sampleRate, channels int) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("pcm: sample rate must be positive, got %d", sampleRate)
	}
	if channels <= 0 {
		return nil, fmt.Errorf("pcm: channel count must be positive, got %d", channels)
	}
	frameBytes := bytesPerSample * channels
	if len(pcm16)%frameBytes != 0 {
		return nil, fmt.Errorf("pcm: %d bytes is not a whole number of %d-channel frames", len(pcm16), channels)
	}

	frames := len(pcm16) / frameBytes
	buf := &Buffer{
		Channels:   make([][]float32, channels),
		SampleRate: sampleRate,
	}
	for ch := range buf.Channels {
		buf.Channels[ch] = make([]float32, frames)
	}
	for f := 0; f < frames; f++ {
		for ch := 0; ch < channels; ch++ {
			off := f*frameBytes + ch*bytesPerSample
			s := int16(pcm16[off]) | int16(pcm16[off+1])<<8
			buf.Channels[ch][f] = float32(s) / 32768
		}
	}
	return buf, nil
}

// Frames returns the per-channel sample count.
func (b *Buffer) Frames() int {
	if b == nil || len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Duration returns the playback duration of the buffer.
func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Mono returns channel 0, the only channel for the live stream.
func (b *Buffer) Mono() []float32 {
	if b == nil || len(b.Channels) == 0 {
		return nil
	}
	return b.Channels[0]
}
