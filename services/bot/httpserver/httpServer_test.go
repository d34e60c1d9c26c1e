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

package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/clients/telegram"
)

const (
	testBotToken = "12345:TEST_TOKEN"
	testSecret   = "hunter2"
)

type recordingHandler struct {
	updates []*telegram.Update
}

func (h *recordingHandler) HandleUpdate(_ context.Context, update *telegram.Update) {
	h.updates = append(h.updates, update)
}

func newTestServer(secret string) (*Server, *recordingHandler) {
	handler := &recordingHandler{}
	return New(0, testBotToken, secret, handler), handler
}

func TestGetInfo(t *testing.T) {
	server, _ := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "message")
	assert.Contains(t, body, "version")
	assert.Contains(t, body, "version_hash")
}

func TestGetHealth(t *testing.T) {
	server, _ := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/health", nil)
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestWebhookDeliversUpdate(t *testing.T) {
	server, handler := newTestServer("")

	payload := `{"update_id":7,"message":{"message_id":1,"from":{"id":99},"chat":{"id":99},"text":"/start"}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/"+testBotToken, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	require.Len(t, handler.updates, 1)
	update := handler.updates[0]
	assert.Equal(t, int64(7), update.UpdateID)
	require.NotNil(t, update.Message)
	assert.Equal(t, "/start", update.Message.Text)
	assert.Equal(t, int64(99), update.Message.From.ID)
}

func TestWebhookRejectsWrongToken(t *testing.T) {
	server, handler := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/wrong-token", strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, handler.updates)
}

func TestWebhookChecksSecretHeader(t *testing.T) {
	server, handler := newTestServer(testSecret)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/"+testBotToken, strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, handler.updates)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("POST", "/webhook/"+testBotToken, strings.NewReader(`{"update_id":1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretTokenHeaderKey, testSecret)
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, handler.updates, 1)
}

func TestWebhookRejectsMalformedBody(t *testing.T) {
	server, handler := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/webhook/"+testBotToken, strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, handler.updates)
}

func TestUnknownRouteIs404(t *testing.T) {
	server, _ := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/nope", nil)
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWrongMethodIs405(t *testing.T) {
	server, _ := newTestServer("")

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/health", nil)
	server.gin.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
