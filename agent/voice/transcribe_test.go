package voice

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pookal/internal/config"
)

func TestWhisperTranscribe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/transcriptions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		if got := r.FormValue("model"); got != "whisper-1" {
			t.Errorf("model = %q", got)
		}
		f, _, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("FormFile: %v", err)
		}
		data, _ := io.ReadAll(f)
		if string(data) != "RIFF-wav" {
			t.Errorf("file = %q", data)
		}
		w.Write([]byte(`{"text":"walk me home please"}`))
	}))
	defer srv.Close()

	tr := NewWhisperTranscriber(config.VoiceConfig{OpenAIAPIKey: "sk-test", WhisperBaseURL: srv.URL})
	text, err := tr.Transcribe(context.Background(), []byte("RIFF-wav"))
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if text != "walk me home please" {
		t.Errorf("text = %q", text)
	}
}

func TestWhisperTranscribeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad key"}`))
	}))
	defer srv.Close()

	tr := NewWhisperTranscriber(config.VoiceConfig{OpenAIAPIKey: "sk-bad", WhisperBaseURL: srv.URL})
	if _, err := tr.Transcribe(context.Background(), []byte("x")); err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v", err)
	}
}

func TestWhisperTranscribeUnconfigured(t *testing.T) {
	tr := NewWhisperTranscriber(config.VoiceConfig{})
	if _, err := tr.Transcribe(context.Background(), []byte("x")); err == nil {
		t.Fatal("expected error without API key")
	}
}

func TestElevenLabsSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/v1/text-to-speech/") {
			t.Errorf("path = %q", r.URL.Path)
		}
		if key := r.Header.Get("xi-api-key"); key != "el-test" {
			t.Errorf("xi-api-key = %q", key)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"text":"stay with me"`) {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	s := NewElevenLabsSynthesizer(config.VoiceConfig{
		ElevenLabsAPIKey:  "el-test",
		ElevenLabsBaseURL: srv.URL,
		VoiceName:         "rachel",
	})
	audio, err := s.Synthesize(context.Background(), "stay with me")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(audio) != "mp3-bytes" {
		t.Errorf("audio = %q", audio)
	}
}

func TestElevenLabsUnknownVoiceFallsBack(t *testing.T) {
	s := NewElevenLabsSynthesizer(config.VoiceConfig{VoiceName: "nobody"})
	if s.voiceID != elevenVoices["rachel"] {
		t.Errorf("voiceID = %q", s.voiceID)
	}
}
