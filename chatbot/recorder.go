package chatbot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

// ErrMicAccess is returned when the capture device cannot be opened
var ErrMicAccess = errors.New("microphone access denied")

// Recorder captures microphone input. Start begins capture; Stop flushes and
// returns the finished recording as an opaque container blob. Both are
// suspension points the controller awaits.
type Recorder interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) ([]byte, error)
}

// ExecRecorder shells out to the system audio recorder and collects the
// finished WAV container from a temp file once the process exits.
type ExecRecorder struct {
	// Command overrides the recorder invocation; the output path is appended.
	Command []string

	mu   sync.Mutex
	cmd  *exec.Cmd
	path string
}

func defaultRecordCommand() []string {
	if runtime.GOOS == "darwin" {
		// sox ships the rec frontend on macOS installs
		return []string{"rec", "-q", "-r", "16000", "-c", "1", "-b", "16"}
	}
	return []string{"arecord", "-q", "-t", "wav", "-f", "S16_LE", "-r", "16000", "-c", "1"}
}

// Start launches the capture process. A failed launch is treated as a
// permission failure: no transcript state has been touched yet.
func (r *ExecRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return errors.New("recording already in progress")
	}

	argv := r.Command
	if len(argv) == 0 {
		argv = defaultRecordCommand()
	}

	f, err := os.CreateTemp("", "hotel-admin-rec-*.wav")
	if err != nil {
		return fmt.Errorf("could not create capture file: %w", err)
	}
	path := f.Name()
	f.Close()

	cmd := exec.Command(argv[0], append(argv[1:], path)...)
	if err := cmd.Start(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%w: %v", ErrMicAccess, err)
	}

	r.cmd = cmd
	r.path = path
	return nil
}

// Stop interrupts the capture process, waits for it to flush the container,
// and returns the recorded bytes.
func (r *ExecRecorder) Stop(ctx context.Context) ([]byte, error) {
	r.mu.Lock()
	cmd, path := r.cmd, r.path
	r.cmd = nil
	r.path = ""
	r.mu.Unlock()

	if cmd == nil {
		return nil, errors.New("no recording in progress")
	}
	defer os.Remove(path)

	// SIGINT lets the recorder finalize the WAV header before exiting
	_ = cmd.Process.Signal(os.Interrupt)

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case <-done:
	case <-ctx.Done():
		_ = cmd.Process.Kill()
		<-done
		return nil, ctx.Err()
	case <-time.After(5 * time.Second):
		_ = cmd.Process.Kill()
		<-done
	}

	blob, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("could not read capture file: %w", err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("stop recording: %w", ErrBadContainer)
	}
	return blob, nil
}
