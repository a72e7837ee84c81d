package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// CaptureFrameSize is the number of mono samples delivered per frame
// callback. At 16kHz this is 256ms of audio.
const CaptureFrameSize = 4096

// FrameFunc receives one full capture frame. The slice is owned by the
// callee; the capture device never reuses it.
type FrameFunc func(samples []float32)

// Capture pulls float32 mono audio from the default microphone at the
// input sample rate and delivers it in fixed-size frames.
type Capture struct {
	log     zerolog.Logger
	onFrame FrameFunc

	mu      sync.Mutex
	device  *malgo.Device
	pending []float32
	started bool
}

// NewCapture opens the default capture device on the given backend
// context. The device is initialized but not started; no audio flows
// until Start.
func NewCapture(ctx malgo.Context, onFrame FrameFunc, log zerolog.Logger) (*Capture, error) {
	c := &Capture{
		log:     log.With().Str("component", "capture").Logger(),
		onFrame: onFrame,
		pending: make([]float32, 0, CaptureFrameSize*2),
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = pcm.InputSampleRate
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, frameCount uint32) {
			c.push(input, frameCount)
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		return nil, core.NewPermissionError("microphone device unavailable", err)
	}
	c.device = device
	return c, nil
}

// push decodes one period of f32le bytes and emits any full frames.
func (c *Capture) push(input []byte, frameCount uint32) {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	for i := uint32(0); i < frameCount; i++ {
		bits := binary.LittleEndian.Uint32(input[i*4:])
		c.pending = append(c.pending, math.Float32frombits(bits))
	}

	var frames [][]float32
	for len(c.pending) >= CaptureFrameSize {
		frame := make([]float32, CaptureFrameSize)
		copy(frame, c.pending[:CaptureFrameSize])
		c.pending = c.pending[CaptureFrameSize:]
		frames = append(frames, frame)
	}
	onFrame := c.onFrame
	c.mu.Unlock()

	// Deliver outside the lock; the frame callback may block on I/O.
	if onFrame != nil {
		for _, f := range frames {
			onFrame(f)
		}
	}
}

// Start begins pulling audio from the device. Calling Start on a
// running capture is a no-op.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	if c.device == nil {
		return core.NewCapabilityError("capture device released")
	}
	if err := c.device.Start(); err != nil {
		return core.NewPermissionError("failed to start microphone", err)
	}
	c.started = true
	c.pending = c.pending[:0]
	c.log.Debug().Int("frame_size", CaptureFrameSize).Msg("capture started")
	return nil
}

// Stop halts the device and discards any partial frame. Safe to call
// when already stopped.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	c.started = false
	c.pending = c.pending[:0]
	device := c.device
	c.mu.Unlock()

	// Stop outside the lock; the device waits for any in-flight data
	// callback, and that callback takes c.mu.
	if device != nil {
		if err := device.Stop(); err != nil {
			c.log.Warn().Err(err).Msg("capture stop")
		}
	}
	c.log.Debug().Msg("capture stopped")
}

// Release stops the device and frees it. The capture cannot be started
// again afterwards.
func (c *Capture) Release() {
	c.mu.Lock()
	c.started = false
	device := c.device
	c.device = nil
	c.mu.Unlock()

	if device != nil {
		device.Uninit()
	}
}
