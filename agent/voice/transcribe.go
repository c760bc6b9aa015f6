package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"pookal/internal/config"
)

// WhisperTranscriber sends recorded audio to the OpenAI transcription API.
type WhisperTranscriber struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewWhisperTranscriber creates a transcriber from voice config.
func NewWhisperTranscriber(cfg config.VoiceConfig) *WhisperTranscriber {
	return &WhisperTranscriber{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: cfg.WhisperBaseURL,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Transcribe uploads the WAV and returns the recognized text.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, wav []byte) (string, error) {
	if t.apiKey == "" {
		return "", fmt.Errorf("transcription is not configured (missing API key)")
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "audio.wav")
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(wav); err != nil {
		return "", err
	}
	if err := mw.WriteField("model", "whisper-1"); err != nil {
		return "", err
	}
	mw.Close()

	req, err := http.NewRequestWithContext(ctx, "POST", t.baseURL+"/v1/audio/transcriptions", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+t.apiKey)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("transcription error (%d): %s", resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode transcription: %w", err)
	}
	return out.Text, nil
}
