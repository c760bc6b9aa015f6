package voice

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"pookal/internal/logging"
)

// MicRecorder captures microphone audio by running a platform capture tool
// (sox on macOS, arecord on Linux, ffmpeg elsewhere) into a temp WAV file.
type MicRecorder struct {
	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

// NewMicRecorder creates an idle microphone recorder.
func NewMicRecorder() *MicRecorder {
	return &MicRecorder{}
}

// captureCommand picks the capture tool for this platform.
func captureCommand(path string) (*exec.Cmd, error) {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("sox"); err == nil {
			return exec.Command("sox", "-d", "-r", "16000", "-c", "1", "-b", "16", path), nil
		}
	case "linux":
		if _, err := exec.LookPath("arecord"); err == nil {
			return exec.Command("arecord", "-f", "S16_LE", "-r", "16000", "-c", "1", path), nil
		}
	}
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		input := "default"
		format := "pulse"
		if runtime.GOOS == "darwin" {
			input, format = ":0", "avfoundation"
		}
		return exec.Command("ffmpeg", "-y", "-f", format, "-i", input,
			"-ar", "16000", "-ac", "1", path), nil
	}
	return nil, errors.New("no audio capture tool found (need sox, arecord or ffmpeg)")
}

// Start begins recording into a fresh temp file.
func (r *MicRecorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("recording already in progress")
	}

	f, err := os.CreateTemp("", "pookal-rec-*.wav")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	f.Close()

	cmd, err := captureCommand(path)
	if err != nil {
		os.Remove(path)
		return err
	}
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to start capture: %w", err)
	}

	r.cmd = cmd
	r.path = path
	return nil
}

// Stop ends the capture and returns the recorded bytes. The capture
// process and temp file are always cleaned up.
func (r *MicRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil, nil
	}
	cmd, path := r.cmd, r.path
	r.cmd, r.path = nil, ""
	defer os.Remove(path)

	// Interrupt lets the tool finalize the WAV header; kill if it lingers.
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		cmd.Process.Kill()
	}
	done := make(chan struct{})
	go func() {
		cmd.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(3 * time.Second):
		logging.Warnf("voice: capture process did not exit, killing")
		cmd.Process.Kill()
		<-done
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read recording: %w", err)
	}
	return audio, nil
}
