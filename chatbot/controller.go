package chatbot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrRecordingState is returned when start/stop is called out of order
var ErrRecordingState = errors.New("invalid recording state")

// Speaker voices bot replies. Implementations must not block the caller.
type Speaker interface {
	Speak(text string)
}

// Controller is the stateful orchestrator of a conversation. It is the only
// component that mutates the message list or the session identity; every
// mutation persists the transcript and fires OnUpdate. OnUpdate runs outside
// the controller's lock, so callbacks may call back into the controller.
//
// User actions may overlap: a second send can start while the first is in
// flight, and replies land in completion order, not submission order. The
// placeholder slot for a voice turn is fixed by capturing its index at
// creation time. Each in-flight send is stamped with the session id active at
// launch; a reply whose stamp no longer matches the current session (the user
// cleared the chat meanwhile) is discarded instead of landing in the fresh
// transcript.
type Controller struct {
	// Speaker, if set, voices bot text fire-and-forget.
	Speaker Speaker
	// OnUpdate, if set, is called after every transcript change.
	OnUpdate func()

	store     SessionStore
	transport Transport
	recorder  Recorder

	mu             sync.Mutex
	sessionID      string
	messages       []Message
	recording      bool
	placeholderIdx int
}

// NewController restores the cached conversation and returns a ready
// controller. recorder may be nil if voice input is disabled.
func NewController(store SessionStore, transport Transport, recorder Recorder) (*Controller, error) {
	sessionID, err := store.GetOrCreateSessionID()
	if err != nil {
		return nil, fmt.Errorf("could not load session: %w", err)
	}
	messages, err := store.LoadTranscript()
	if err != nil {
		return nil, fmt.Errorf("could not load transcript: %w", err)
	}

	return &Controller{
		store:     store,
		transport: transport,
		recorder:  recorder,
		sessionID: sessionID,
		messages:  messages,
	}, nil
}

// SessionID returns the current conversation identifier.
func (c *Controller) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessionID
}

// Recording reports whether a capture is in progress.
func (c *Controller) Recording() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.recording
}

// Messages returns a snapshot of the transcript.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return msgs
}

// SendText submits one text turn. Transport failures become a generic bot
// failure message in the transcript; the returned error covers only input
// problems.
func (c *Controller) SendText(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return errors.New("empty message")
	}

	c.mu.Lock()
	stamp := c.sessionID
	c.appendLocked(Message{Sender: SenderUser, Text: text})
	c.mu.Unlock()
	c.notify()

	reply, err := c.transport.Send(ctx, Turn{Text: text}, stamp)

	c.mu.Lock()
	if c.sessionID != stamp {
		c.mu.Unlock()
		return nil // session was cleared mid-flight; drop the reply
	}
	if err != nil {
		c.appendLocked(Message{Sender: SenderBot, Text: TextFailureText})
	} else {
		c.appendReplyLocked(reply)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

// StartRecording begins a voice turn: the capture starts and a placeholder
// user message is appended at a remembered index. A capture failure (e.g.
// microphone permission) is returned directly with no transcript mutation.
func (c *Controller) StartRecording(ctx context.Context) error {
	if c.recorder == nil {
		return errors.New("voice input is not available")
	}

	// claim the recording state before starting the capture so two
	// overlapping starts cannot both launch a recorder
	c.mu.Lock()
	if c.recording {
		c.mu.Unlock()
		return ErrRecordingState
	}
	c.recording = true
	c.mu.Unlock()

	if err := c.recorder.Start(ctx); err != nil {
		c.mu.Lock()
		c.recording = false
		c.mu.Unlock()
		return err
	}

	c.mu.Lock()
	if !c.recording {
		// the chat was cleared while the capture was starting
		c.mu.Unlock()
		go func() {
			_, _ = c.recorder.Stop(context.Background())
		}()
		return ErrRecordingState
	}
	c.placeholderIdx = len(c.messages)
	c.appendLocked(Message{Sender: SenderUser, Text: RecordingPlaceholder})
	c.mu.Unlock()
	c.notify()
	return nil
}

// StopRecording finishes the voice turn: flush the capture, transcode it to
// the wire container, send it, and resolve the placeholder in place. Every
// failure along the path resolves the placeholder to a failure text and
// appends one generic bot failure message.
func (c *Controller) StopRecording(ctx context.Context) error {
	c.mu.Lock()
	if !c.recording {
		c.mu.Unlock()
		return ErrRecordingState
	}
	c.recording = false
	idx := c.placeholderIdx
	stamp := c.sessionID
	c.mu.Unlock()

	reply, err := c.voiceTurn(ctx, stamp)

	c.mu.Lock()
	if c.sessionID != stamp {
		c.mu.Unlock()
		return nil // session was cleared mid-flight; drop the result
	}
	if err != nil {
		c.replaceLocked(idx, Message{Sender: SenderUser, Text: RecordingFailedText})
		c.appendLocked(Message{Sender: SenderBot, Text: AudioFailureText})
	} else {
		transcription := reply.Transcription
		if transcription == "" {
			transcription = VoiceFallbackText
		}
		c.replaceLocked(idx, Message{Sender: SenderUser, Text: transcription})
		c.appendReplyLocked(reply)
	}
	c.mu.Unlock()
	c.notify()
	return nil
}

func (c *Controller) voiceTurn(ctx context.Context, stamp string) (*Reply, error) {
	blob, err := c.recorder.Stop(ctx)
	if err != nil {
		return nil, err
	}

	rec, err := DecodeWAV(blob)
	if err != nil {
		return nil, err
	}
	wav, err := EncodeWAV(rec)
	if err != nil {
		return nil, err
	}

	return c.transport.Send(ctx, Turn{Audio: wav}, stamp)
}

// SelectSuggestion activates a suggestion chip. A navigable link is returned
// for the caller to open; otherwise the suggestion behaves like typed text.
func (c *Controller) SelectSuggestion(ctx context.Context, s Suggestion) (link string, err error) {
	if s.Link != "" && s.Link != InertLink {
		return s.Link, nil
	}
	return "", c.SendText(ctx, s.Name)
}

// SelectOption sends the option's value as the next turn.
func (c *Controller) SelectOption(ctx context.Context, o Option) error {
	return c.SendText(ctx, o.Value)
}

// ClearChat ends the conversation: the old session is notified best-effort,
// the cached identity and transcript are wiped together, and a fresh session
// id is generated. An active recording is discarded; in-flight replies
// stamped with the old session are discarded when they land.
func (c *Controller) ClearChat(ctx context.Context) error {
	c.mu.Lock()
	old := c.sessionID
	wasRecording := c.recording
	c.recording = false
	c.placeholderIdx = 0
	c.mu.Unlock()

	if wasRecording {
		// flush and drop the pending capture so the recorder does not linger
		go func() {
			_, _ = c.recorder.Stop(context.Background())
		}()
	}

	go func() {
		_ = c.transport.End(context.Background(), old)
	}()

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("could not clear session: %w", err)
	}
	fresh, err := c.store.GetOrCreateSessionID()
	if err != nil {
		return fmt.Errorf("could not create session: %w", err)
	}

	c.mu.Lock()
	c.sessionID = fresh
	c.messages = nil
	c.mu.Unlock()
	c.notify()
	return nil
}

// appendReplyLocked expands a reply into bot messages and speaks any text.
func (c *Controller) appendReplyLocked(reply *Reply) {
	msgs := reply.Messages()
	if len(msgs) == 0 {
		return
	}
	c.appendLocked(msgs...)

	if c.Speaker != nil {
		for _, m := range msgs {
			if m.Text != "" {
				c.Speaker.Speak(m.Text)
			}
		}
	}
}

func (c *Controller) appendLocked(msgs ...Message) {
	c.messages = append(c.messages, msgs...)
	c.flushLocked()
}

func (c *Controller) replaceLocked(idx int, m Message) {
	if idx < 0 || idx >= len(c.messages) {
		return
	}
	c.messages[idx] = m
	c.flushLocked()
}

// flushLocked persists the transcript. A failed save is not fatal to the
// turn; the in-memory transcript stays authoritative until the next
// successful flush.
func (c *Controller) flushLocked() {
	snapshot := make([]Message, len(c.messages))
	copy(snapshot, c.messages)
	_ = c.store.SaveTranscript(snapshot)
}

// notify fires the render notification. Callers must not hold the lock.
func (c *Controller) notify() {
	if c.OnUpdate != nil {
		c.OnUpdate()
	}
}
