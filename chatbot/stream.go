package chatbot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// ClientFrame is the message format from client to server on the streaming
// chat socket
type ClientFrame struct {
	Message string `json:"message"`
}

// ServerFrame is the message format from server to client
type ServerFrame struct {
	Type      string `json:"type"`                 // "text", "done", or "error"
	Content   string `json:"content,omitempty"`    // partial response text
	SessionID string `json:"session_id,omitempty"` // sent with "done"
	Error     string `json:"error,omitempty"`      // sent with "error"
}

// Frame types
const (
	FrameTypeText  = "text"
	FrameTypeDone  = "done"
	FrameTypeError = "error"
)

// StreamClient exchanges turns over a websocket, accumulating streamed text
// frames into a single reply. Text only; the streaming endpoint has no audio
// leg.
type StreamClient struct {
	baseURL string
	token   string
	dialer  *websocket.Dialer
}

// NewStreamClient creates a StreamClient for the given API base URL
// (http/https; the scheme is rewritten for the socket).
func NewStreamClient(baseURL, token string) *StreamClient {
	return &StreamClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		dialer:  websocket.DefaultDialer,
	}
}

func (c *StreamClient) wsURL() string {
	url := strings.Replace(c.baseURL, "http://", "ws://", 1)
	return strings.Replace(url, "https://", "wss://", 1) + "/chat"
}

// Send dials the chat socket, writes the turn, and reads frames until done.
func (c *StreamClient) Send(ctx context.Context, turn Turn, sessionID string) (*Reply, error) {
	if len(turn.Audio) > 0 {
		return nil, errors.New("audio turns are not supported by the streaming backend")
	}
	if turn.Text == "" {
		return nil, errors.New("empty turn")
	}

	header := http.Header{}
	if c.token != "" {
		header.Set("Authorization", "Bearer "+c.token)
	}

	conn, _, err := c.dialer.DialContext(ctx, c.wsURL()+"?session_id="+sessionID, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close()

	if err := conn.WriteJSON(ClientFrame{Message: turn.Text}); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}

	var text strings.Builder
	for {
		var frame ServerFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				break
			}
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		switch frame.Type {
		case FrameTypeText:
			text.WriteString(frame.Content)
		case FrameTypeDone:
			return &Reply{Answer: Answer{Message: text.String()}}, nil
		case FrameTypeError:
			return nil, fmt.Errorf("server error: %s", frame.Error)
		}
	}

	return &Reply{Answer: Answer{Message: text.String()}}, nil
}

// End is a no-op for the streaming variant; each turn closes its socket.
func (c *StreamClient) End(ctx context.Context, sessionID string) error {
	return nil
}
