package client

import (
	"bate-papo/domain"
	"bate-papo/infrastructure/rest"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultTimeout = 5 * time.Second

// StatusError is returned when the server answers with a non 2xx code.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server answered %d: %s", e.Code, e.Message)
}

// ChatClient speaks the REST contract on behalf of a single participant.
type ChatClient struct {
	baseURL string
	name    string
	http    *http.Client
}

func NewChatClient(baseURL, name string) *ChatClient {
	return &ChatClient{
		baseURL: baseURL,
		name:    name,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

func (c *ChatClient) Name() string {
	return c.name
}

func (c *ChatClient) Join(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/participants", rest.JoinRequest{Name: c.name}, nil)
}

func (c *ChatClient) Heartbeat(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/status", nil, nil)
}

func (c *ChatClient) Participants(ctx context.Context) ([]rest.ParticipantResponse, error) {
	var participants []rest.ParticipantResponse
	err := c.do(ctx, http.MethodGet, "/participants", nil, &participants)
	return participants, err
}

func (c *ChatClient) Post(ctx context.Context, to, text string, messageType domain.MessageType) error {
	body := rest.PostMessageRequest{To: to, Text: text, Type: string(messageType)}
	return c.do(ctx, http.MethodPost, "/messages", body, nil)
}

// Messages lists what this participant may read.
// limit bounds how many log entries the server scans, nil scans everything.
func (c *ChatClient) Messages(ctx context.Context, limit *int) ([]rest.MessageResponse, error) {
	path := "/messages"
	if limit != nil {
		path += "?" + url.Values{"limit": {strconv.Itoa(*limit)}}.Encode()
	}
	var messages []rest.MessageResponse
	err := c.do(ctx, http.MethodGet, path, nil, &messages)
	return messages, err
}

func (c *ChatClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/messages/"+url.PathEscape(id), nil, nil)
}

func (c *ChatClient) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("User", c.name)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var failure rest.ErrorResponse
		_ = json.NewDecoder(resp.Body).Decode(&failure)
		return &StatusError{Code: resp.StatusCode, Message: failure.Message}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", method, path, err)
	}
	return nil
}
