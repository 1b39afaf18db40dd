package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rettel/hotel-admin/api"
)

//Client is an authenticated client for the hotel management REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

//New returns a Client for the given API base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
}

//SetToken sets the bearer token sent with authenticated requests
func (c *Client) SetToken(token string) {
	c.token = token
}

//Token returns the current bearer token
func (c *Client) Token() string {
	return c.token
}

//envelope is the standard {success, message, data} response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

//do performs a JSON request and decodes the wrapped data into out
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &api.Error{Description: "Could not encode request", Type: api.ErrorTypeUser, Err: err}
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &api.Error{Description: "Could not create request", Type: api.ErrorTypeUser, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.send(req, out)
}

//doForm performs a multipart request with the given fields and file paths and decodes the wrapped data into out
func (c *Client) doForm(ctx context.Context, method, path string, fields map[string]string, files map[string][]string, out interface{}) error {
	body := &bytes.Buffer{}
	form := multipart.NewWriter(body)

	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return &api.Error{Description: "Could not build form", Type: api.ErrorTypeUser, Err: err}
		}
	}
	for name, paths := range files {
		for _, p := range paths {
			f, err := os.Open(p)
			if err != nil {
				return &api.Error{Description: fmt.Sprintf("Could not open file (%s)", p), Type: api.ErrorTypeUser, Err: err}
			}
			part, err := form.CreateFormFile(name, filepath.Base(p))
			if err == nil {
				_, err = io.Copy(part, f)
			}
			f.Close()
			if err != nil {
				return &api.Error{Description: "Could not build form", Type: api.ErrorTypeUser, Err: err}
			}
		}
	}
	if err := form.Close(); err != nil {
		return &api.Error{Description: "Could not build form", Type: api.ErrorTypeUser, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &api.Error{Description: "Could not create request", Type: api.ErrorTypeUser, Err: err}
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &api.Error{Description: "Could not reach server", Type: api.ErrorTypeServer, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &api.Error{Description: "Could not read response", Type: api.ErrorTypeServer, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp.StatusCode, raw)
	}
	if out == nil {
		return nil
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Data != nil {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &api.Error{Description: "Could not decode response", Type: api.ErrorTypeServer, Err: err}
	}
	return nil
}

//statusError maps a non-2xx response to an api.Error carrying the server message
func (c *Client) statusError(code int, raw []byte) error {
	var env envelope
	message := http.StatusText(code)
	if err := json.Unmarshal(raw, &env); err == nil && env.Message != "" {
		message = env.Message
	}

	errType := api.ErrorTypeServer
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		errType = api.ErrorTypeAuth
	case code >= 400 && code < 500:
		errType = api.ErrorTypeUser
	}
	return &api.Error{Description: message, Type: errType, Err: fmt.Errorf("status %d", code)}
}
