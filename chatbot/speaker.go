package chatbot

import (
	"os/exec"
	"runtime"
)

// ExecSpeaker voices bot text through the system speech synthesizer. Each
// utterance runs in its own goroutine and failures are ignored; playback must
// never block or reorder the conversation.
type ExecSpeaker struct {
	// Command overrides the synthesizer invocation; the text is appended.
	Command []string
}

func defaultSpeakCommand() []string {
	if runtime.GOOS == "darwin" {
		return []string{"say"}
	}
	return []string{"espeak"}
}

// Speak implements Speaker.
func (s *ExecSpeaker) Speak(text string) {
	if text == "" {
		return
	}

	argv := s.Command
	if len(argv) == 0 {
		argv = defaultSpeakCommand()
	}

	go func() {
		_ = exec.Command(argv[0], append(argv[1:], text)...).Run()
	}()
}
