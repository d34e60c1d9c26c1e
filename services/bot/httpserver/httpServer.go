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
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/valloteo/valhalla-telegram-bot/clients/telegram"
	"github.com/valloteo/valhalla-telegram-bot/version"
)

const secretTokenHeaderKey = "X-Telegram-Bot-Api-Secret-Token"

// UpdateHandler consumes the Telegram updates the webhook receives.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update *telegram.Update)
}

type Server struct {
	http.Server
	botToken      string
	webhookSecret string
	handler       UpdateHandler

	gin *gin.Engine
}

func New(port uint, botToken string, webhookSecret string, handler UpdateHandler) *Server {
	gin.SetMode(gin.ReleaseMode)

	ginEngine := gin.New()

	server := &Server{
		Server: http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: ginEngine,
		},
		botToken:      botToken,
		webhookSecret: webhookSecret,
		handler:       handler,
		gin:           ginEngine,
	}

	server.gin.HandleMethodNotAllowed = true

	// Use a custom error handler
	server.gin.Use(ginErrorHandlerMiddleware)

	// Use the custom logger middleware
	server.gin.Use(ginLoggerMiddleware)

	// Recovery middleware recovers from any panics and writes a 500 if there was one.
	server.gin.Use(gin.Recovery())

	server.gin.GET("/", server.getInfo)
	server.gin.GET("/health", server.getHealth)
	server.gin.POST("/webhook/:token", server.postWebhook)

	server.gin.NoRoute(func(c *gin.Context) {
		_ = c.AbortWithError(http.StatusNotFound, fmt.Errorf("not found"))
	})

	server.gin.NoMethod(func(c *gin.Context) {
		_ = c.AbortWithError(http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
	})

	return server
}

type infoResponse struct {
	Message     string `json:"message"`
	Version     string `json:"version"`
	VersionHash string `json:"version_hash"`
}

func (server *Server) getInfo(c *gin.Context) {
	c.JSON(http.StatusOK, infoResponse{
		Message:     "This is the Valhalla Telegram bot",
		Version:     version.Version,
		VersionHash: version.Hash,
	})
}

func (server *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// postWebhook is the endpoint registered with the Telegram Bot API. The bot
// token is part of the path so that the URL itself is unguessable; the secret
// header is checked on top of that when configured.
func (server *Server) postWebhook(c *gin.Context) {
	if c.Param("token") != server.botToken {
		_ = c.AbortWithError(http.StatusUnauthorized, fmt.Errorf("unknown webhook path"))
		return
	}
	if server.webhookSecret != "" && c.GetHeader(secretTokenHeaderKey) != server.webhookSecret {
		_ = c.AbortWithError(http.StatusUnauthorized, fmt.Errorf("invalid secret token"))
		return
	}

	var update telegram.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		_ = c.AbortWithError(http.StatusBadRequest, fmt.Errorf("malformed update (%w)", err))
		return
	}

	server.handler.HandleUpdate(c.Request.Context(), &update)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
