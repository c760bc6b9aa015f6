// Package voice implements the push-to-talk pipeline: record a short
// window of audio, transcribe it, get a spoken reply, and play it back.
package voice

import (
	"context"
	"strings"
	"sync"
	"time"

	"pookal/internal/logging"
)

// Phase is where the pipeline currently is.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseListening  Phase = "listening"
	PhaseProcessing Phase = "processing"
	PhaseSpeaking   Phase = "speaking"
)

// Status is a snapshot of the pipeline, safe to serialize.
type Status struct {
	Phase       Phase  `json:"phase"`
	Transcript  string `json:"transcript,omitempty"`
	Reply       string `json:"reply,omitempty"`
	FailedStage string `json:"failed_stage,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Recorder captures microphone audio between Start and Stop.
type Recorder interface {
	Start() error
	// Stop ends the capture and returns the recorded WAV bytes. It must
	// release the capture device even when it returns an error.
	Stop() ([]byte, error)
}

// Transcriber turns recorded audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, wav []byte) (string, error)
}

// Synthesizer turns reply text into playable audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Player plays synthesized audio out loud.
type Player interface {
	Play(ctx context.Context, audio []byte) error
}

// Responder produces the spoken reply for a transcript.
type Responder func(ctx context.Context, text string) string

// Pipeline drives one microphone through the listen/process/speak cycle.
type Pipeline struct {
	rec     Recorder
	stt     Transcriber
	tts     Synthesizer
	play    Player
	respond Responder

	listenWindow time.Duration
	// Notify, when set, is called after every status change.
	Notify func(Status)

	mu     sync.Mutex
	status Status
	// gen increments on every start so a stale auto-stop timer from a
	// superseded listen cannot fire into the new one.
	gen int
}

// NewPipeline wires the stages together. listenWindow bounds how long a
// single listen can run before it auto-stops.
func NewPipeline(rec Recorder, stt Transcriber, tts Synthesizer, play Player, respond Responder, listenWindow time.Duration) *Pipeline {
	if listenWindow <= 0 {
		listenWindow = 4 * time.Second
	}
	return &Pipeline{
		rec:          rec,
		stt:          stt,
		tts:          tts,
		play:         play,
		respond:      respond,
		listenWindow: listenWindow,
		status:       Status{Phase: PhaseIdle},
	}
}

// Status returns the current pipeline snapshot.
func (p *Pipeline) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Start begins listening. Starting while a previous listen is still open
// supersedes it: the old recording is discarded, not processed.
func (p *Pipeline) Start(ctx context.Context) (Status, error) {
	p.mu.Lock()
	if p.status.Phase == PhaseListening {
		// Discard the superseded capture.
		if _, err := p.rec.Stop(); err != nil {
			logging.Warnf("voice: discarding superseded recording: %v", err)
		}
	}
	p.gen++
	gen := p.gen
	p.mu.Unlock()

	if err := p.rec.Start(); err != nil {
		s := p.setStatus(Status{Phase: PhaseIdle, FailedStage: "record", Error: err.Error()})
		return s, err
	}
	s := p.setStatus(Status{Phase: PhaseListening})

	// The auto-stop fires after the Start caller is long gone, so it must
	// not inherit a request-scoped context.
	time.AfterFunc(p.listenWindow, func() {
		p.autoStop(context.WithoutCancel(ctx), gen)
	})
	return s, nil
}

// Stop ends the current listen and runs the rest of the pipeline. It is a
// no-op when nothing is listening.
func (p *Pipeline) Stop(ctx context.Context) Status {
	p.mu.Lock()
	if p.status.Phase != PhaseListening {
		s := p.status
		p.mu.Unlock()
		return s
	}
	p.gen++ // invalidate the pending auto-stop timer
	p.mu.Unlock()

	return p.process(ctx)
}

func (p *Pipeline) autoStop(ctx context.Context, gen int) {
	p.mu.Lock()
	if p.gen != gen || p.status.Phase != PhaseListening {
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	logging.Debugf("voice: listen window elapsed, auto-stopping")
	p.process(ctx)
}

// process runs stop-recording through playback. Every exit path lands the
// pipeline back in idle. The listening-to-processing transition is atomic,
// so a manual stop racing the auto-stop timer processes the capture once.
func (p *Pipeline) process(ctx context.Context) Status {
	p.mu.Lock()
	if p.status.Phase != PhaseListening {
		s := p.status
		p.mu.Unlock()
		return s
	}
	p.status = Status{Phase: PhaseProcessing}
	notify := p.Notify
	p.mu.Unlock()
	if notify != nil {
		notify(Status{Phase: PhaseProcessing})
	}

	audio, err := p.rec.Stop()
	if err != nil {
		return p.fail("record", err)
	}
	if len(audio) == 0 {
		// Nothing was captured; there is nothing to transcribe or say, but
		// the caller still gets told why the cycle produced no reply.
		return p.setStatus(Status{Phase: PhaseIdle, Error: "no audio captured"})
	}

	transcript, err := p.stt.Transcribe(ctx, audio)
	if err != nil {
		return p.fail("transcribe", err)
	}
	transcript = strings.TrimSpace(transcript)
	if transcript == "" {
		return p.setStatus(Status{Phase: PhaseIdle, Error: "no speech detected"})
	}

	reply := p.respond(ctx, transcript)

	speech, err := p.tts.Synthesize(ctx, reply)
	if err != nil {
		return p.fail("synthesize", err)
	}

	p.setStatus(Status{Phase: PhaseSpeaking, Transcript: transcript, Reply: reply})
	if err := p.play.Play(ctx, speech); err != nil {
		return p.fail("play", err)
	}

	return p.setStatus(Status{Phase: PhaseIdle, Transcript: transcript, Reply: reply})
}

func (p *Pipeline) fail(stage string, err error) Status {
	logging.Errorf("voice: %s stage failed: %v", stage, err)
	return p.setStatus(Status{Phase: PhaseIdle, FailedStage: stage, Error: err.Error()})
}

func (p *Pipeline) setStatus(s Status) Status {
	p.mu.Lock()
	p.status = s
	notify := p.Notify
	p.mu.Unlock()
	if notify != nil {
		notify(s)
	}
	return s
}
