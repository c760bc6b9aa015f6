package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"pookal/agent/voice"
	"pookal/internal/logging"
	"pookal/internal/svc"
)

func voiceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "voice",
		Short: "One spoken exchange: listen, reply out loud",
		Run: func(cmd *cobra.Command, args []string) {
			runVoice()
		},
	}
}

func runVoice() {
	logging.Disable()
	svcCtx := svc.NewServiceContext(*ServerConfig)
	ctx := context.Background()

	done := make(chan voice.Status, 1)
	svcCtx.Voice.Notify = func(s voice.Status) {
		switch s.Phase {
		case voice.PhaseListening:
			fmt.Println("listening...")
		case voice.PhaseProcessing:
			fmt.Println("thinking...")
		case voice.PhaseSpeaking:
			fmt.Printf("you said: %s\n", s.Transcript)
		case voice.PhaseIdle:
			done <- s
		}
	}

	if _, err := svcCtx.Voice.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	s := <-done
	if s.Error != "" {
		fmt.Fprintf(os.Stderr, "error: %s\n", s.Error)
		os.Exit(1)
	}
	if s.Reply != "" {
		fmt.Println(s.Reply)
	}
}
