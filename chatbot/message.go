package chatbot

import (
	"encoding/json"
	"sort"
)

// Senders for transcript messages
const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// InertLink is the placeholder link for suggestions that only send a reply
const InertLink = "#"

// Transcript strings shown for voice turns
const (
	RecordingPlaceholder = "Recording..."
	RecordingFailedText  = "Recording failed"
	VoiceFallbackText    = "Voice input"
	AudioFailureText     = "Failed to process audio"
	TextFailureText      = "Failed to process message"
)

// Suggestion is a clickable quick-reply chip. A non-inert Link makes it a
// navigation shortcut instead of a reply.
type Suggestion struct {
	Name string `json:"name"`
	Link string `json:"link,omitempty"`
}

// Option is a multiple-choice button whose Value is sent as the next turn.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Message is one turn in the transcript. A message carries at least one of
// Text, Suggestions, or Options, and Sender is always set.
type Message struct {
	Sender      string       `json:"sender"`
	Text        string       `json:"text,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Options     []Option     `json:"options,omitempty"`
}

// Answer is the assistant's normalized reply payload.
type Answer struct {
	Message     string
	Suggestions []Suggestion
	Options     []Option
}

// Reply is the backend reply envelope. The answer field is duck-typed on the
// wire: a bare JSON string, or an object with any subset of message,
// suggestions, and options; suggestion and option entries may themselves be
// strings or objects with varying key names.
type Reply struct {
	Transcription string
	Answer        Answer
}

// UnmarshalJSON normalizes the loose wire shapes into the canonical Reply.
// Unknown or malformed answer fields are dropped, never an error.
func (r *Reply) UnmarshalJSON(data []byte) error {
	var raw struct {
		Transcription string          `json:"transcription"`
		Answer        json.RawMessage `json:"answer"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.Transcription = raw.Transcription
	r.Answer = coerceAnswer(raw.Answer)
	return nil
}

func coerceAnswer(raw json.RawMessage) Answer {
	if len(raw) == 0 {
		return Answer{}
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return Answer{Message: text}
	}

	var obj struct {
		Message     string            `json:"message"`
		Suggestions []json.RawMessage `json:"suggestions"`
		Options     []json.RawMessage `json:"options"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return Answer{}
	}

	a := Answer{Message: obj.Message}
	for _, entry := range obj.Suggestions {
		if s, ok := coerceSuggestion(entry); ok {
			a.Suggestions = append(a.Suggestions, s)
		}
	}
	for _, entry := range obj.Options {
		if o, ok := coerceOption(entry); ok {
			a.Options = append(a.Options, o)
		}
	}
	return a
}

// coerceSuggestion accepts a bare string or an object. Objects take their
// name from name, label, or title; with none of those present the remaining
// string fields are joined in key order, matching how the backend sends raw
// records (e.g. meals) as suggestions.
func coerceSuggestion(raw json.RawMessage) (Suggestion, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return Suggestion{}, false
		}
		return Suggestion{Name: s, Link: InertLink}, true
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Suggestion{}, false
	}

	sug := Suggestion{Link: InertLink}
	if link := stringField(fields, "link", "url"); link != "" {
		sug.Link = link
	}
	if name := stringField(fields, "name", "label", "title"); name != "" {
		sug.Name = name
		return sug, true
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		vals, ok := fields[k].(string)
		if ok && vals != "" && k != "link" && k != "url" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		if sug.Name != "" {
			sug.Name += "\n"
		}
		sug.Name += fields[k].(string)
	}
	return sug, sug.Name != ""
}

// coerceOption accepts a bare string (used as both label and value) or an
// object with label/value keys, falling back to name/text for the label.
func coerceOption(raw json.RawMessage) (Option, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return Option{}, false
		}
		return Option{Label: s, Value: s}, true
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Option{}, false
	}

	o := Option{
		Label: stringField(fields, "label", "name", "text"),
		Value: stringField(fields, "value"),
	}
	if o.Label == "" {
		o.Label = o.Value
	}
	if o.Value == "" {
		o.Value = o.Label
	}
	return o, o.Label != ""
}

func stringField(fields map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		if v, ok := fields[k].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// Messages expands the reply into transcript fragments: an optional text
// message, then one message carrying all suggestions, then one carrying all
// options. A reply may yield zero, one, two, or three messages.
func (r *Reply) Messages() []Message {
	var msgs []Message
	if r.Answer.Message != "" {
		msgs = append(msgs, Message{Sender: SenderBot, Text: r.Answer.Message})
	}
	if len(r.Answer.Suggestions) > 0 {
		msgs = append(msgs, Message{Sender: SenderBot, Suggestions: r.Answer.Suggestions})
	}
	if len(r.Answer.Options) > 0 {
		msgs = append(msgs, Message{Sender: SenderBot, Options: r.Answer.Options})
	}
	return msgs
}
