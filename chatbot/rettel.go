package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
)

// SessionClient speaks the server-issued-session chat variant: the backend
// creates a chat identity, turns are exchanged against it, and the chat is
// ended explicitly. It adapts that contract to the Transport interface by
// lazily mapping each client session id to a server chat id. This variant is
// an alternative to Client, not a companion; a deployment serves one or the
// other.
type SessionClient struct {
	baseURL    string
	token      string
	httpClient *http.Client

	mu    sync.Mutex
	chats map[string]string // client session id -> server chat id
}

// NewSessionClient creates a SessionClient for the given API base URL.
func NewSessionClient(baseURL, token string) *SessionClient {
	return &SessionClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		chats:      make(map[string]string),
	}
}

// Send exchanges one text turn. Audio turns are not part of this variant's
// contract.
func (c *SessionClient) Send(ctx context.Context, turn Turn, sessionID string) (*Reply, error) {
	if len(turn.Audio) > 0 {
		return nil, errors.New("audio turns are not supported by the session-chat backend")
	}
	if turn.Text == "" {
		return nil, errors.New("empty turn")
	}

	chatID, err := c.chatID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	payload := map[string]string{"chat_id": chatID, "content": turn.Text}
	var out struct {
		Transcription string          `json:"transcription"`
		Answer        json.RawMessage `json:"answer"`
		Messages      []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := c.post(ctx, "/create-chat-completion/", payload, &out); err != nil {
		return nil, err
	}

	reply := &Reply{Transcription: out.Transcription}
	if len(out.Answer) > 0 {
		reply.Answer = coerceAnswer(out.Answer)
		return reply, nil
	}

	// completion responses carry the turn as a message list
	var parts []string
	for _, m := range out.Messages {
		if m.Role != "user" && m.Content != "" {
			parts = append(parts, m.Content)
		}
	}
	reply.Answer = Answer{Message: strings.Join(parts, "\n")}
	return reply, nil
}

// End ends the server-side chat mapped to the session, if one was created.
func (c *SessionClient) End(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	chatID, ok := c.chats[sessionID]
	delete(c.chats, sessionID)
	c.mu.Unlock()
	if !ok {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/end-chat/"+chatID+"/", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

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

// Retrieve fetches the server-side record of the chat mapped to the session.
func (c *SessionClient) Retrieve(ctx context.Context, sessionID string) (json.RawMessage, error) {
	c.mu.Lock()
	chatID, ok := c.chats[sessionID]
	c.mu.Unlock()
	if !ok {
		return nil, errors.New("no chat for session")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"/retrieve-chat/"+chatID+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return io.ReadAll(resp.Body)
}

func (c *SessionClient) chatID(ctx context.Context, sessionID string) (string, error) {
	c.mu.Lock()
	if id, ok := c.chats[sessionID]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	var out struct {
		ChatID string `json:"chat_id"`
	}
	if err := c.post(ctx, "/create-chat/", map[string]interface{}{}, &out); err != nil {
		return "", err
	}
	if out.ChatID == "" {
		return "", errors.New("create-chat returned no chat_id")
	}

	c.mu.Lock()
	c.chats[sessionID] = out.ChatID
	c.mu.Unlock()
	return out.ChatID, nil
}

func (c *SessionClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *SessionClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
