package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
)

// Turn is one user utterance. Exactly one of Text and Audio is set; Audio
// carries the codec output (a canonical WAV container).
type Turn struct {
	Text  string
	Audio []byte
}

// Transport is the single network boundary for conversation turns. A failed
// send is surfaced once and never retried; the controller owns user-visible
// messaging.
type Transport interface {
	Send(ctx context.Context, turn Turn, sessionID string) (*Reply, error)
	// End notifies the backend the session is over. Best effort; callers
	// fire-and-forget it.
	End(ctx context.Context, sessionID string) error
}

// Client talks to the assistant's multipart voice-chat endpoint using a
// client-generated session identifier.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Client for the given API base URL. token may be empty
// for unauthenticated deployments.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Send posts the turn as a multipart form: a text field or an audio file,
// plus the session id.
func (c *Client) Send(ctx context.Context, turn Turn, sessionID string) (*Reply, error) {
	if turn.Text == "" && len(turn.Audio) == 0 {
		return nil, errors.New("empty turn")
	}

	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	if len(turn.Audio) > 0 {
		part, err := form.CreateFormFile("audio", "recording.wav")
		if err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
		if _, err := part.Write(turn.Audio); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	} else {
		if err := form.WriteField("text", turn.Text); err != nil {
			return nil, fmt.Errorf("failed to build form: %w", err)
		}
	}
	if err := form.WriteField("session_id", sessionID); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("failed to build form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/voice-chat/", body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	reply := &Reply{}
	if err := json.NewDecoder(resp.Body).Decode(reply); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return reply, nil
}

// End posts the end-of-session notification.
func (c *Client) End(ctx context.Context, sessionID string) error {
	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/end-chat/"+sessionID+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("API error (status %d)", resp.StatusCode)
	}
	return nil
}
