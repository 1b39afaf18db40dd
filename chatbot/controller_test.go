package chatbot_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rettel/hotel-admin/chatbot"
)

// fakeTransport returns scripted replies and records what it was sent.
type fakeTransport struct {
	mu      sync.Mutex
	turns   []chatbot.Turn
	stamps  []string
	ended   []string
	reply   *chatbot.Reply
	err     error
	sending chan struct{} // if set, closed when Send is entered
	release chan struct{} // if set, Send blocks until closed
}

func (f *fakeTransport) Send(ctx context.Context, turn chatbot.Turn, sessionID string) (*chatbot.Reply, error) {
	f.mu.Lock()
	f.turns = append(f.turns, turn)
	f.stamps = append(f.stamps, sessionID)
	sending, release := f.sending, f.release
	f.mu.Unlock()

	if sending != nil {
		close(sending)
	}
	if release != nil {
		<-release
	}

	if f.err != nil {
		return nil, f.err
	}
	if f.reply != nil {
		return f.reply, nil
	}
	return &chatbot.Reply{Answer: chatbot.Answer{Message: "ok"}}, nil
}

func (f *fakeTransport) End(ctx context.Context, sessionID string) error {
	f.mu.Lock()
	f.ended = append(f.ended, sessionID)
	f.mu.Unlock()
	return nil
}

// fakeRecorder hands back a fixed capture blob.
type fakeRecorder struct {
	startErr     error
	stopErr      error
	blob         []byte
	startEntered chan struct{} // if set, closed when Start is entered
	startHold    chan struct{} // if set, Start blocks until closed

	mu        sync.Mutex
	stopCalls int
}

func (f *fakeRecorder) Start(ctx context.Context) error {
	if f.startEntered != nil {
		close(f.startEntered)
	}
	if f.startHold != nil {
		<-f.startHold
	}
	if f.startErr != nil {
		return f.startErr
	}
	return nil
}

func (f *fakeRecorder) Stop(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	f.stopCalls++
	f.mu.Unlock()

	if f.stopErr != nil {
		return nil, f.stopErr
	}
	return f.blob, nil
}

func (f *fakeRecorder) stopped() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

func captureBlob(t *testing.T) []byte {
	t.Helper()
	blob, err := chatbot.EncodeWAV(&chatbot.Recording{
		SampleRate: 16000,
		Channels:   [][]float32{{0, 0.5, -0.5}},
	})
	if err != nil {
		t.Fatalf("Failed to build capture blob: %v", err)
	}
	return blob
}

func newTestController(t *testing.T, transport chatbot.Transport, recorder chatbot.Recorder) *chatbot.Controller {
	t.Helper()
	ctrl, err := chatbot.NewController(chatbot.NewMemorySessionStore(), transport, recorder)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}
	return ctrl
}

func TestSendTextGreeting(t *testing.T) {
	transport := &fakeTransport{reply: &chatbot.Reply{Answer: chatbot.Answer{
		Message: "Welcome! What would you like to do?",
		Options: []chatbot.Option{
			{Label: "Show rooms", Value: "show rooms"},
			{Label: "Show menu", Value: "show menu"},
		},
	}}}
	ctrl := newTestController(t, transport, nil)

	if err := ctrl.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	msgs := ctrl.Messages()
	if len(msgs) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(msgs))
	}
	if msgs[0].Sender != chatbot.SenderUser || msgs[0].Text != "hi" {
		t.Errorf("Unexpected user message: %+v", msgs[0])
	}
	if msgs[1].Sender != chatbot.SenderBot || msgs[1].Text == "" {
		t.Errorf("Expected bot text message, got %+v", msgs[1])
	}
	if len(msgs[2].Options) != 2 {
		t.Errorf("Expected options message last, got %+v", msgs[2])
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if len(transport.stamps) != 1 || transport.stamps[0] != ctrl.SessionID() {
		t.Errorf("Turn was not stamped with the session id: %v", transport.stamps)
	}
}

func TestSendTextTrimsAndRejectsEmpty(t *testing.T) {
	ctrl := newTestController(t, &fakeTransport{}, nil)

	if err := ctrl.SendText(context.Background(), "   "); err == nil {
		t.Error("Expected error for blank message")
	}
	if msgs := ctrl.Messages(); len(msgs) != 0 {
		t.Errorf("Blank send should not touch the transcript, got %d messages", len(msgs))
	}
}

func TestSendTextTransportFailure(t *testing.T) {
	transport := &fakeTransport{err: errors.New("connection refused")}
	ctrl := newTestController(t, transport, nil)

	if err := ctrl.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("Transport failure should not surface as an error: %v", err)
	}

	msgs := ctrl.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[1].Sender != chatbot.SenderBot || msgs[1].Text != chatbot.TextFailureText {
		t.Errorf("Expected failure message, got %+v", msgs[1])
	}
}

func TestVoiceTurnReplacesPlaceholder(t *testing.T) {
	transport := &fakeTransport{reply: &chatbot.Reply{
		Transcription: "what rooms are available",
		Answer:        chatbot.Answer{Message: "We have 2 rooms available."},
	}}
	recorder := &fakeRecorder{blob: captureBlob(t)}
	ctrl := newTestController(t, transport, recorder)

	ctx := context.Background()

	// seed the transcript so the placeholder lands at index 1
	if err := ctrl.SendText(ctx, "hello"); err != nil {
		t.Fatalf("Failed to seed transcript: %v", err)
	}
	seeded := ctrl.Messages()

	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start recording: %v", err)
	}
	if !ctrl.Recording() {
		t.Error("Expected recording state after start")
	}

	msgs := ctrl.Messages()
	idx := len(seeded)
	if msgs[idx].Text != chatbot.RecordingPlaceholder {
		t.Fatalf("Expected placeholder at index %d, got %+v", idx, msgs[idx])
	}

	if err := ctrl.StopRecording(ctx); err != nil {
		t.Fatalf("Failed to stop recording: %v", err)
	}
	if ctrl.Recording() {
		t.Error("Expected recording state cleared after stop")
	}

	msgs = ctrl.Messages()
	if msgs[idx].Text != "what rooms are available" {
		t.Errorf("Expected placeholder replaced with transcription, got %+v", msgs[idx])
	}
	if msgs[idx].Sender != chatbot.SenderUser {
		t.Errorf("Replaced message should stay a user turn, got %+v", msgs[idx])
	}

	// neighbors are untouched
	for i, m := range seeded {
		if !reflect.DeepEqual(msgs[i], m) {
			t.Errorf("Message %d changed: %+v -> %+v", i, m, msgs[i])
		}
	}
	if last := msgs[len(msgs)-1]; last.Text != "We have 2 rooms available." {
		t.Errorf("Expected bot reply appended, got %+v", last)
	}

	// the wire payload is the canonical container, not the raw capture
	transport.mu.Lock()
	audio := transport.turns[len(transport.turns)-1].Audio
	transport.mu.Unlock()
	if len(audio) == 0 || string(audio[0:4]) != "RIFF" {
		t.Errorf("Expected encoded WAV on the wire, got %d bytes", len(audio))
	}
}

func TestVoiceTurnEmptyTranscription(t *testing.T) {
	transport := &fakeTransport{reply: &chatbot.Reply{Answer: chatbot.Answer{Message: "ok"}}}
	recorder := &fakeRecorder{blob: captureBlob(t)}
	ctrl := newTestController(t, transport, recorder)

	ctx := context.Background()
	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := ctrl.StopRecording(ctx); err != nil {
		t.Fatalf("Failed to stop: %v", err)
	}

	msgs := ctrl.Messages()
	if msgs[0].Text != chatbot.VoiceFallbackText {
		t.Errorf("Expected fallback text for missing transcription, got %+v", msgs[0])
	}
}

func TestStartRecordingFailureLeavesTranscript(t *testing.T) {
	recorder := &fakeRecorder{startErr: chatbot.ErrMicAccess}
	ctrl := newTestController(t, &fakeTransport{}, recorder)

	err := ctrl.StartRecording(context.Background())
	if !errors.Is(err, chatbot.ErrMicAccess) {
		t.Fatalf("Expected ErrMicAccess, got %v", err)
	}
	if ctrl.Recording() {
		t.Error("Failed start should not enter recording state")
	}
	if msgs := ctrl.Messages(); len(msgs) != 0 {
		t.Errorf("Failed start should not touch the transcript, got %d messages", len(msgs))
	}
}

func TestStopRecordingFailureResolvesPlaceholder(t *testing.T) {
	recorder := &fakeRecorder{blob: []byte("not a wav")}
	ctrl := newTestController(t, &fakeTransport{}, recorder)

	ctx := context.Background()
	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := ctrl.StopRecording(ctx); err != nil {
		t.Fatalf("Stop failure should not surface as an error: %v", err)
	}

	msgs := ctrl.Messages()
	if len(msgs) != 2 {
		t.Fatalf("Expected 2 messages, got %d", len(msgs))
	}
	if msgs[0].Text != chatbot.RecordingFailedText {
		t.Errorf("Expected placeholder resolved to failure text, got %+v", msgs[0])
	}
	if msgs[1].Text != chatbot.AudioFailureText {
		t.Errorf("Expected generic failure appended, got %+v", msgs[1])
	}
}

func TestRecordingStateOrdering(t *testing.T) {
	recorder := &fakeRecorder{blob: captureBlob(t)}
	ctrl := newTestController(t, &fakeTransport{}, recorder)

	ctx := context.Background()
	if err := ctrl.StopRecording(ctx); !errors.Is(err, chatbot.ErrRecordingState) {
		t.Errorf("Expected ErrRecordingState for stop without start, got %v", err)
	}

	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := ctrl.StartRecording(ctx); !errors.Is(err, chatbot.ErrRecordingState) {
		t.Errorf("Expected ErrRecordingState for double start, got %v", err)
	}
}

func TestClearChatResetsSession(t *testing.T) {
	transport := &fakeTransport{}
	ctrl := newTestController(t, transport, nil)

	ctx := context.Background()
	if err := ctrl.SendText(ctx, "hi"); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	old := ctrl.SessionID()
	if err := ctrl.ClearChat(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}

	if ctrl.SessionID() == old {
		t.Error("Expected a fresh session id after clear")
	}
	if msgs := ctrl.Messages(); len(msgs) != 0 {
		t.Errorf("Expected empty transcript after clear, got %d messages", len(msgs))
	}
}

func TestClearChatDiscardsInFlightReply(t *testing.T) {
	transport := &fakeTransport{
		sending: make(chan struct{}),
		release: make(chan struct{}),
		reply:   &chatbot.Reply{Answer: chatbot.Answer{Message: "stale reply"}},
	}
	ctrl := newTestController(t, transport, nil)

	ctx := context.Background()
	done := make(chan error, 1)
	go func() { done <- ctrl.SendText(ctx, "hi") }()

	<-transport.sending
	if err := ctrl.ClearChat(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	close(transport.release)

	if err := <-done; err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	for _, m := range ctrl.Messages() {
		if m.Text == "stale reply" {
			t.Error("Reply stamped with the old session landed in the new transcript")
		}
	}
}

func TestClearChatDuringRecording(t *testing.T) {
	transport := &fakeTransport{reply: &chatbot.Reply{Answer: chatbot.Answer{Message: "reply to old audio"}}}
	recorder := &fakeRecorder{blob: captureBlob(t)}
	ctrl := newTestController(t, transport, recorder)

	ctx := context.Background()
	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}

	if err := ctrl.ClearChat(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if ctrl.Recording() {
		t.Error("Expected recording state cleared by ClearChat")
	}

	// the abandoned voice turn cannot be finished against the fresh session
	if err := ctrl.StopRecording(ctx); !errors.Is(err, chatbot.ErrRecordingState) {
		t.Errorf("Expected ErrRecordingState after clear, got %v", err)
	}
	if msgs := ctrl.Messages(); len(msgs) != 0 {
		t.Errorf("Expected empty transcript after clear, got %+v", msgs)
	}
	transport.mu.Lock()
	sent := len(transport.turns)
	transport.mu.Unlock()
	if sent != 0 {
		t.Errorf("Expected no turns sent, got %d", sent)
	}

	// the pending capture is discarded in the background
	deadline := time.Now().Add(time.Second)
	for recorder.stopped() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if recorder.stopped() == 0 {
		t.Error("Expected the pending capture to be flushed and dropped")
	}

	// a new recording works normally in the fresh session
	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start after clear: %v", err)
	}
	if err := ctrl.StopRecording(ctx); err != nil {
		t.Fatalf("Failed to stop after clear: %v", err)
	}
	msgs := ctrl.Messages()
	if len(msgs) != 2 || msgs[0].Sender != chatbot.SenderUser {
		t.Errorf("Expected a user turn and a reply, got %+v", msgs)
	}
}

func TestStartRecordingSingleWinner(t *testing.T) {
	recorder := &fakeRecorder{
		blob:         captureBlob(t),
		startEntered: make(chan struct{}),
		startHold:    make(chan struct{}),
	}
	ctrl := newTestController(t, &fakeTransport{}, recorder)

	ctx := context.Background()
	first := make(chan error, 1)
	go func() { first <- ctrl.StartRecording(ctx) }()

	// the second start races the first while its capture is still launching
	<-recorder.startEntered
	if err := ctrl.StartRecording(ctx); !errors.Is(err, chatbot.ErrRecordingState) {
		t.Errorf("Expected ErrRecordingState for overlapping start, got %v", err)
	}

	close(recorder.startHold)
	if err := <-first; err != nil {
		t.Fatalf("First start failed: %v", err)
	}

	placeholders := 0
	for _, m := range ctrl.Messages() {
		if m.Text == chatbot.RecordingPlaceholder {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Errorf("Expected exactly one placeholder, got %d", placeholders)
	}
}

func TestOnUpdateMayReenter(t *testing.T) {
	ctrl := newTestController(t, &fakeTransport{}, &fakeRecorder{blob: captureBlob(t)})

	var seen int
	ctrl.OnUpdate = func() {
		// callbacks are allowed to read the controller
		seen = len(ctrl.Messages())
	}

	if err := ctrl.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}
	if seen != 2 {
		t.Errorf("Expected callback to observe 2 messages, got %d", seen)
	}

	ctx := context.Background()
	if err := ctrl.StartRecording(ctx); err != nil {
		t.Fatalf("Failed to start: %v", err)
	}
	if err := ctrl.StopRecording(ctx); err != nil {
		t.Fatalf("Failed to stop: %v", err)
	}
	if err := ctrl.ClearChat(ctx); err != nil {
		t.Fatalf("Failed to clear: %v", err)
	}
	if seen != 0 {
		t.Errorf("Expected callback to observe the cleared transcript, got %d", seen)
	}
}

func TestSelectAffordances(t *testing.T) {
	transport := &fakeTransport{}
	ctrl := newTestController(t, transport, nil)
	ctx := context.Background()

	// navigable suggestion returns its link without a send
	link, err := ctrl.SelectSuggestion(ctx, chatbot.Suggestion{Name: "Rooms", Link: "/rooms"})
	if err != nil {
		t.Fatalf("Failed to select suggestion: %v", err)
	}
	if link != "/rooms" {
		t.Errorf("Expected link /rooms, got %q", link)
	}
	transport.mu.Lock()
	sent := len(transport.turns)
	transport.mu.Unlock()
	if sent != 0 {
		t.Errorf("Navigation suggestion should not send a turn, got %d", sent)
	}

	// inert suggestion sends its name
	if _, err := ctrl.SelectSuggestion(ctx, chatbot.Suggestion{Name: "Show menu", Link: chatbot.InertLink}); err != nil {
		t.Fatalf("Failed to select inert suggestion: %v", err)
	}
	// option sends its value
	if err := ctrl.SelectOption(ctx, chatbot.Option{Label: "Book a room", Value: "book a room"}); err != nil {
		t.Fatalf("Failed to select option: %v", err)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	if len(transport.turns) != 2 {
		t.Fatalf("Expected 2 turns, got %d", len(transport.turns))
	}
	if transport.turns[0].Text != "Show menu" {
		t.Errorf("Expected suggestion name sent, got %q", transport.turns[0].Text)
	}
	if transport.turns[1].Text != "book a room" {
		t.Errorf("Expected option value sent, got %q", transport.turns[1].Text)
	}
}

func TestControllerRestoresTranscript(t *testing.T) {
	store := chatbot.NewMemorySessionStore()
	if err := store.SaveTranscript([]chatbot.Message{
		{Sender: chatbot.SenderUser, Text: "hi"},
		{Sender: chatbot.SenderBot, Text: "Welcome!"},
	}); err != nil {
		t.Fatalf("Failed to seed store: %v", err)
	}

	ctrl, err := chatbot.NewController(store, &fakeTransport{}, nil)
	if err != nil {
		t.Fatalf("Failed to create controller: %v", err)
	}

	msgs := ctrl.Messages()
	if len(msgs) != 2 || msgs[1].Text != "Welcome!" {
		t.Errorf("Expected restored transcript, got %+v", msgs)
	}
}

func TestOnUpdateFires(t *testing.T) {
	ctrl := newTestController(t, &fakeTransport{}, nil)

	var updates int
	ctrl.OnUpdate = func() { updates++ }

	if err := ctrl.SendText(context.Background(), "hi"); err != nil {
		t.Fatalf("Failed to send: %v", err)
	}

	// one for the user turn, one for the reply
	if updates != 2 {
		t.Errorf("Expected 2 updates, got %d", updates)
	}
}
