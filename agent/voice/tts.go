package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"time"

	"pookal/internal/config"
)

// elevenVoices maps friendly voice names to ElevenLabs voice IDs.
var elevenVoices = map[string]string{
	"rachel": "21m00Tcm4TlvDq8ikWAM",
	"bella":  "EXAVITQu4vr4xnSDxMaL",
	"adam":   "pNInz6obpgDQGcFmaJgB",
	"elli":   "MF3mGyEYCl7XYWbV9V6O",
}

// ElevenLabsSynthesizer turns reply text into MP3 speech.
type ElevenLabsSynthesizer struct {
	apiKey  string
	baseURL string
	voiceID string
	client  *http.Client
}

// NewElevenLabsSynthesizer creates a synthesizer from voice config. Unknown
// voice names fall back to rachel.
func NewElevenLabsSynthesizer(cfg config.VoiceConfig) *ElevenLabsSynthesizer {
	voiceID, ok := elevenVoices[cfg.VoiceName]
	if !ok {
		voiceID = elevenVoices["rachel"]
	}
	return &ElevenLabsSynthesizer{
		apiKey:  cfg.ElevenLabsAPIKey,
		baseURL: cfg.ElevenLabsBaseURL,
		voiceID: voiceID,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Synthesize returns MP3 audio for the given text.
func (s *ElevenLabsSynthesizer) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if s.apiKey == "" {
		return nil, errors.New("speech synthesis is not configured (missing API key)")
	}

	body, _ := json.Marshal(map[string]any{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	})

	u := fmt.Sprintf("%s/v1/text-to-speech/%s", s.baseURL, s.voiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("synthesis error (%d): %s", resp.StatusCode, string(msg))
	}
	return io.ReadAll(resp.Body)
}

// SpeakerPlayer plays MP3 audio through a platform playback tool.
type SpeakerPlayer struct{}

// Play writes the audio to a temp file and blocks until playback finishes.
func (SpeakerPlayer) Play(ctx context.Context, audio []byte) error {
	f, err := os.CreateTemp("", "pookal-say-*.mp3")
	if err != nil {
		return err
	}
	path := f.Name()
	defer os.Remove(path)

	if _, err := f.Write(audio); err != nil {
		f.Close()
		return err
	}
	f.Close()

	cmd, err := playbackCommand(ctx, path)
	if err != nil {
		return err
	}
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("playback failed: %w", err)
	}
	return nil
}

func playbackCommand(ctx context.Context, path string) (*exec.Cmd, error) {
	if runtime.GOOS == "darwin" {
		return exec.CommandContext(ctx, "afplay", path), nil
	}
	for _, tool := range []string{"mpg123", "ffplay"} {
		if _, err := exec.LookPath(tool); err == nil {
			if tool == "ffplay" {
				return exec.CommandContext(ctx, "ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", path), nil
			}
			return exec.CommandContext(ctx, tool, "-q", path), nil
		}
	}
	return nil, errors.New("no audio playback tool found (need afplay, mpg123 or ffplay)")
}
