// Package telegram delivers capture results to a Telegram chat through the
// bot API. The pipeline only needs the narrow Channel interface; the bot
// client is one implementation of it.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Photo is one outbound image: the encoded bytes, the filename presented
// to the chat, and an optional caption.
type Photo struct {
	Data     []byte
	Filename string
	Caption  string
}

// Channel accepts finished captures. Implementations must not retain the
// photo bytes past the call.
type Channel interface {
	SendPhoto(ctx context.Context, photo Photo) error
}

// Bot sends photos via the Telegram bot API.
type Bot struct {
	token   string
	chatID  string
	baseURL string
	client  *http.Client
}

// Option configures a Bot.
type Option func(*Bot)

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(b *Bot) { b.baseURL = u }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) { b.client = c }
}

// NewBot builds a Bot for the given token and chat.
func NewBot(token, chatID string, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram: bot token is required")
	}
	if chatID == "" {
		return nil, fmt.Errorf("telegram: chat id is required")
	}
	b := &Bot{
		token:   token,
		chatID:  chatID,
		baseURL: "https://api.telegram.org",
		client:  &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// apiResponse is the envelope every bot API call returns.
type apiResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// SendPhoto posts the image as multipart/form-data to sendPhoto.
func (b *Bot) SendPhoto(ctx context.Context, photo Photo) error {
	if len(photo.Data) == 0 {
		return fmt.Errorf("telegram: empty photo")
	}
	filename := photo.Filename
	if filename == "" {
		filename = "capture.png"
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err := w.WriteField("chat_id", b.chatID); err != nil {
		return fmt.Errorf("telegram: write chat_id: %w", err)
	}
	if photo.Caption != "" {
		if err := w.WriteField("caption", photo.Caption); err != nil {
			return fmt.Errorf("telegram: write caption: %w", err)
		}
	}
	part, err := w.CreateFormFile("photo", filename)
	if err != nil {
		return fmt.Errorf("telegram: create form file: %w", err)
	}
	if _, err := part.Write(photo.Data); err != nil {
		return fmt.Errorf("telegram: write photo: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("telegram: close multipart: %w", err)
	}

	url := fmt.Sprintf("%s/bot%s/sendPhoto", b.baseURL, b.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram: send photo: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("telegram: read response: %w", err)
	}
	var api apiResponse
	if err := json.Unmarshal(raw, &api); err != nil {
		return fmt.Errorf("telegram: decode response (status %d): %w", resp.StatusCode, err)
	}
	if !api.OK {
		return fmt.Errorf("telegram: api error (status %d): %s", resp.StatusCode, api.Description)
	}
	return nil
}
