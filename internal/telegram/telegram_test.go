package telegram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAPIServer fakes the bot API endpoint and records what it receives.
func setupAPIServer(t *testing.T, statusCode int, responseBody string) (*httptest.Server, *recordedRequest) {
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.path = r.URL.Path

		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Errorf("parse multipart form: %v", err)
		}
		rec.chatID = r.FormValue("chat_id")
		rec.caption = r.FormValue("caption")

		file, header, err := r.FormFile("photo")
		if err != nil {
			t.Errorf("photo form file: %v", err)
		} else {
			rec.filename = header.Filename
			rec.photo, _ = io.ReadAll(file)
			file.Close()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		w.Write([]byte(responseBody))
	}))
	t.Cleanup(server.Close)
	return server, rec
}

type recordedRequest struct {
	path     string
	chatID   string
	caption  string
	filename string
	photo    []byte
}

func TestSendPhoto(t *testing.T) {
	server, rec := setupAPIServer(t, http.StatusOK, `{"ok":true}`)

	bot, err := NewBot("123:ABC", "-100200300", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = bot.SendPhoto(context.Background(), Photo{
		Data:     []byte("png-bytes"),
		Filename: "example_com_2026-08-28_table.png",
		Caption:  "https://example.com — captured 2026-08-28",
	})
	require.NoError(t, err)

	assert.Equal(t, "/bot123:ABC/sendPhoto", rec.path)
	assert.Equal(t, "-100200300", rec.chatID)
	assert.Equal(t, "https://example.com — captured 2026-08-28", rec.caption)
	assert.Equal(t, "example_com_2026-08-28_table.png", rec.filename)
	assert.Equal(t, []byte("png-bytes"), rec.photo)
}

func TestSendPhotoDefaultFilenameAndNoCaption(t *testing.T) {
	server, rec := setupAPIServer(t, http.StatusOK, `{"ok":true}`)

	bot, err := NewBot("123:ABC", "42", WithBaseURL(server.URL))
	require.NoError(t, err)

	require.NoError(t, bot.SendPhoto(context.Background(), Photo{Data: []byte{1}}))
	assert.Equal(t, "capture.png", rec.filename)
	assert.Empty(t, rec.caption)
}

func TestSendPhotoAPIError(t *testing.T) {
	server, _ := setupAPIServer(t, http.StatusBadRequest,
		`{"ok":false,"description":"Bad Request: chat not found"}`)

	bot, err := NewBot("123:ABC", "42", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = bot.SendPhoto(context.Background(), Photo{Data: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
	assert.Contains(t, err.Error(), "400")
}

func TestSendPhotoEmptyData(t *testing.T) {
	bot, err := NewBot("123:ABC", "42")
	require.NoError(t, err)

	err = bot.SendPhoto(context.Background(), Photo{})
	assert.ErrorContains(t, err, "empty photo")
}

func TestSendPhotoMalformedResponse(t *testing.T) {
	server, _ := setupAPIServer(t, http.StatusOK, `not json`)

	bot, err := NewBot("123:ABC", "42", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = bot.SendPhoto(context.Background(), Photo{Data: []byte{1}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestNewBotValidation(t *testing.T) {
	_, err := NewBot("", "42")
	assert.ErrorContains(t, err, "token")

	_, err = NewBot("123:ABC", "")
	assert.ErrorContains(t, err, "chat id")
}

func TestSendPhotoContextCancelled(t *testing.T) {
	server, _ := setupAPIServer(t, http.StatusOK, `{"ok":true}`)

	bot, err := NewBot("123:ABC", "42", WithBaseURL(server.URL))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = bot.SendPhoto(ctx, Photo{Data: []byte{1}})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "context canceled"))
}
