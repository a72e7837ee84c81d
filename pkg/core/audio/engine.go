package audio

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"

	"github.com/GRodHealth/lokono/pkg/core"
	"github.com/GRodHealth/lokono/pkg/core/pcm"
)

// Engine owns the audio backend for the lifetime of the process: the
// capture backend context, the output device, and the playback
// scheduler built on top of them. Constructing an Engine doubles as
// the capability probe; if either backend cannot initialize, the host
// has no usable audio and the caller should surface a capability
// error rather than attempt a session.
type Engine struct {
	log zerolog.Logger

	malgoCtx  *malgo.AllocatedContext
	otoCtx    *oto.Context
	speaker   *Speaker
	scheduler *Scheduler

	mu      sync.Mutex
	capture *Capture

	closeOnce sync.Once
	closed    atomic.Bool
}

// NewEngine initializes both audio backends and wires the scheduler to
// the output device.
func NewEngine(log zerolog.Logger) (*Engine, error) {
	malgoConfig := malgo.ContextConfig{}
	malgoConfig.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, malgoConfig, nil)
	if err != nil {
		return nil, core.NewCapabilityError("audio capture backend unavailable")
	}

	// ~100ms of 24kHz mono s16le keeps playback latency low without
	// risking underruns on chunked network audio.
	otoOpts := &oto.NewContextOptions{
		SampleRate:   pcm.OutputSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   4800,
	}
	otoCtx, ready, err := oto.NewContext(otoOpts)
	if err != nil {
		_ = malgoCtx.Uninit()
		malgoCtx.Free()
		return nil, core.NewCapabilityError("audio output backend unavailable")
	}
	<-ready

	e := &Engine{
		log:      log.With().Str("component", "audio").Logger(),
		malgoCtx: malgoCtx,
		otoCtx:   otoCtx,
	}
	e.speaker = NewSpeaker(otoCtx)
	e.scheduler = NewScheduler(NewClock(), e.speaker, e.log)
	e.log.Debug().Msg("audio engine ready")
	return e, nil
}

// Scheduler returns the playback scheduler bound to the output device.
func (e *Engine) Scheduler() *Scheduler {
	return e.scheduler
}

// OpenCapture opens the microphone and registers the frame callback.
// At most one capture is open at a time; opening while one exists
// releases the previous one first.
func (e *Engine) OpenCapture(onFrame FrameFunc) (*Capture, error) {
	if e.closed.Load() {
		return nil, core.NewCapabilityError("audio engine torn down")
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		e.capture.Release()
		e.capture = nil
	}

	c, err := NewCapture(e.malgoCtx.Context, onFrame, e.log)
	if err != nil {
		return nil, err
	}
	e.capture = c
	return c, nil
}

// CloseCapture releases the open capture device, if any.
func (e *Engine) CloseCapture() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.capture != nil {
		e.capture.Release()
		e.capture = nil
	}
}

// Teardown releases every audio resource. It is safe to call from any
// goroutine and any number of times; only the first call does work.
func (e *Engine) Teardown() {
	e.closeOnce.Do(func() {
		e.closed.Store(true)

		e.mu.Lock()
		capture := e.capture
		e.capture = nil
		e.mu.Unlock()

		if capture != nil {
			capture.Release()
		}
		e.scheduler.StopAll()
		e.speaker.Close()

		if err := e.malgoCtx.Uninit(); err != nil {
			e.log.Warn().Err(err).Msg("capture backend uninit")
		}
		e.malgoCtx.Free()
		e.log.Debug().Msg("audio engine torn down")
	})
}
