// Copyright 2024 Valloteo
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package telegram

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://api.telegram.org"

const (
	messageTimeout  = 15 * time.Second
	documentTimeout = 30 * time.Second
	callbackTimeout = 10 * time.Second
)

// Client calls the Telegram Bot API on behalf of a single bot token.
type Client struct {
	http  *resty.Client
	token string
}

func NewClient(baseURL string, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)

	return &Client{http: client, token: token}
}

// HTTPClient exposes the underlying resty client, used by tests to intercept
// transport.
func (c *Client) HTTPClient() *resty.Client {
	return c.http
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("/bot%s/%s", c.token, method)
}

func (c *Client) post(ctx context.Context, method string, timeout time.Duration, body interface{}) error {
	postCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result := apiResponse{}
	resp, err := c.http.R().
		SetContext(postCtx).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(c.methodURL(method))
	if err != nil {
		return fmt.Errorf("telegram %s failed: %w", method, err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram %s refused: [%d] %s", method, resp.StatusCode(), result.Description)
	}
	return nil
}

// SendMessage delivers a Markdown-formatted text message, optionally with an
// inline keyboard.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, markup *InlineKeyboardMarkup) error {
	payload := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if markup != nil {
		payload["reply_markup"] = markup
	}
	return c.post(ctx, "sendMessage", messageTimeout, payload)
}

// SendDocument uploads a file as a document attachment.
func (c *Client) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string) error {
	postCtx, cancel := context.WithTimeout(ctx, documentTimeout)
	defer cancel()

	result := apiResponse{}
	req := c.http.R().
		SetContext(postCtx).
		SetFileReader("document", filename, bytes.NewReader(data)).
		SetFormData(map[string]string{"chat_id": fmt.Sprintf("%d", chatID)}).
		SetResult(&result).
		SetError(&result)
	if caption != "" {
		req.SetFormData(map[string]string{"caption": caption})
	}
	resp, err := req.Post(c.methodURL("sendDocument"))
	if err != nil {
		return fmt.Errorf("telegram sendDocument failed: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram sendDocument refused: [%d] %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// SendPhoto uploads a PNG image.
func (c *Client) SendPhoto(ctx context.Context, chatID int64, data []byte, caption string) error {
	postCtx, cancel := context.WithTimeout(ctx, documentTimeout)
	defer cancel()

	result := apiResponse{}
	req := c.http.R().
		SetContext(postCtx).
		SetFileReader("photo", "route.png", bytes.NewReader(data)).
		SetFormData(map[string]string{"chat_id": fmt.Sprintf("%d", chatID)}).
		SetResult(&result).
		SetError(&result)
	if caption != "" {
		req.SetFormData(map[string]string{"caption": caption})
	}
	resp, err := req.Post(c.methodURL("sendPhoto"))
	if err != nil {
		return fmt.Errorf("telegram sendPhoto failed: %w", err)
	}
	if resp.IsError() || !result.OK {
		return fmt.Errorf("telegram sendPhoto refused: [%d] %s", resp.StatusCode(), result.Description)
	}
	return nil
}

// AnswerCallbackQuery acknowledges an inline keyboard press, optionally with
// a toast text.
func (c *Client) AnswerCallbackQuery(ctx context.Context, callbackQueryID string, text string) error {
	payload := map[string]interface{}{
		"callback_query_id": callbackQueryID,
	}
	if text != "" {
		payload["text"] = text
	}
	return c.post(ctx, "answerCallbackQuery", callbackTimeout, payload)
}

// SetWebhook registers the public webhook URL, with the secret token Telegram
// will echo back in the X-Telegram-Bot-Api-Secret-Token header.
func (c *Client) SetWebhook(ctx context.Context, url string, secret string) error {
	payload := map[string]interface{}{
		"url": url,
	}
	if secret != "" {
		payload["secret_token"] = secret
	}
	return c.post(ctx, "setWebhook", messageTimeout, payload)
}
