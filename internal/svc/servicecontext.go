// Package svc wires the application together: one ServiceContext carries
// every long-lived dependency the handlers need.
package svc

import (
	"time"

	"pookal/agent/ai"
	"pookal/agent/capability"
	"pookal/agent/proposal"
	"pookal/agent/runner"
	"pookal/agent/session"
	"pookal/agent/voice"
	"pookal/internal/config"
	"pookal/internal/logging"
	"pookal/internal/realtime"
)

// ServiceContext holds shared dependencies for handlers and commands.
type ServiceContext struct {
	Config    config.Config
	Provider  ai.Provider // nil when no backend is reachable
	Registry  *capability.Registry
	Proposals *proposal.Store
	Sessions  *session.Manager
	Runner    *runner.Runner
	Voice     *voice.Pipeline
	Hub       *realtime.Hub
}

// NewServiceContext builds the full dependency graph from config.
func NewServiceContext(c config.Config) *ServiceContext {
	provider, err := ai.Select(c.Provider)
	if err != nil {
		logging.Warnf("no inference provider available, replies degrade to canned lines: %v", err)
	} else {
		logging.Infof("using inference provider %s", provider.ID())
	}

	registry := capability.NewRegistry()
	registry.Register(capability.NewRouteService(c.Route).Capability())
	twilio := capability.NewTwilioService(c.Twilio)
	registry.Register(twilio.SMSCapability())
	registry.Register(twilio.CallCapability())

	proposals := proposal.NewStore()
	sessions := session.NewManager()

	run := &runner.Runner{
		Sessions:  sessions,
		Proposals: proposals,
		Registry:  registry,
		Provider:  provider,
		PersonaID: c.Persona,
	}

	hub := realtime.NewHub()

	pipe := voice.NewPipeline(
		voice.NewMicRecorder(),
		voice.NewWhisperTranscriber(c.Voice),
		voice.NewElevenLabsSynthesizer(c.Voice),
		voice.SpeakerPlayer{},
		run.Respond,
		time.Duration(c.Voice.ListenSeconds)*time.Second,
	)
	pipe.Notify = func(s voice.Status) {
		hub.Broadcast(realtime.Event{Type: realtime.EventVoiceStatus, Payload: s})
	}

	return &ServiceContext{
		Config:    c,
		Provider:  provider,
		Registry:  registry,
		Proposals: proposals,
		Sessions:  sessions,
		Runner:    run,
		Voice:     pipe,
		Hub:       hub,
	}
}
