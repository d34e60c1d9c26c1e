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

package bot

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valloteo/valhalla-telegram-bot/clients/elevation"
	"github.com/valloteo/valhalla-telegram-bot/clients/nominatim"
	"github.com/valloteo/valhalla-telegram-bot/clients/staticmap"
	"github.com/valloteo/valhalla-telegram-bot/clients/telegram"
	"github.com/valloteo/valhalla-telegram-bot/clients/valhalla"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/access/boltBackend"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/access/memoryBackend"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/httpserver"
)

type Options struct {
	Port                 uint
	TelegramToken        string
	TelegramBaseURL      string
	WebhookURL           string
	WebhookSecret        string
	ValhallaURL          string
	ValhallaFallbackURL  string
	GeocodingUserAgent   string
	StadiaToken          string
	StateFile            string
	OwnerID              int64
	AuthorizedUsers      []int64
	ElevationEnabled     bool
	ElevationURL         string
	ElevationFallbackURL string
}

var DefaultOptions = Options{
	Port:                 8080,
	TelegramBaseURL:      telegram.DefaultBaseURL,
	GeocodingUserAgent:   nominatim.DefaultUserAgent,
	ElevationEnabled:     true,
	ElevationURL:         elevation.DefaultPrimaryURL,
	ElevationFallbackURL: elevation.DefaultFallbackURL,
}

// Run wires the clients and the access backend together and serves the
// Telegram webhook until ctx is cancelled.
func Run(ctx context.Context, options Options) error {
	if options.TelegramToken == "" {
		return fmt.Errorf("a Telegram bot token is required")
	}
	if options.ValhallaURL == "" {
		return fmt.Errorf("a Valhalla URL is required")
	}

	// Build the access backend
	var backend access.Backend
	var err error
	if options.StateFile != "" {
		log.WithField("path", options.StateFile).Info("using a bolt access backend")
		backend, err = boltBackend.CreateBoltBackend(options.StateFile)
		if err != nil {
			return fmt.Errorf("unable to create the bolt access backend: %w", err)
		}
	} else {
		log.Info("using an in-memory access backend, state is lost on restart")
		backend, err = memoryBackend.CreateMemoryBackend()
		if err != nil {
			return fmt.Errorf("unable to create the memory access backend: %w", err)
		}
	}

	// Build the clients
	tg := telegram.NewClient(options.TelegramBaseURL, options.TelegramToken)
	router := valhalla.NewClient(options.ValhallaURL, options.ValhallaFallbackURL)
	geocoder := nominatim.NewClient("", options.GeocodingUserAgent)
	elevations := elevation.NewClient(options.ElevationURL, options.ElevationFallbackURL, options.GeocodingUserAgent)
	maps := staticmap.NewClient("", "", options.StadiaToken)

	processor, err := NewProcessor(
		ProcessorConfig{
			OwnerID:          options.OwnerID,
			AuthorizedUsers:  options.AuthorizedUsers,
			ElevationEnabled: options.ElevationEnabled,
		},
		tg, router, geocoder, elevations, maps, backend,
	)
	if err != nil {
		backend.Destroy()
		return err
	}

	if options.WebhookURL != "" {
		webhookURL := fmt.Sprintf("%s/webhook/%s", options.WebhookURL, options.TelegramToken)
		if err := tg.SetWebhook(ctx, webhookURL, options.WebhookSecret); err != nil {
			backend.Destroy()
			return fmt.Errorf("unable to register the Telegram webhook: %w", err)
		}
		log.Info("telegram webhook registered")
	}

	// Build the http server
	httpServer := httpserver.New(options.Port, options.TelegramToken, options.WebhookSecret, processor)

	group, ctx := errgroup.WithContext(ctx)

	// Start the http server
	group.Go(func() error {
		log.WithField("port", options.Port).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("unexpected error while serving http routes: %v", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		log.Info("Gracefully stopping")

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(stopCtx); err != nil {
			log.WithField("error", err).Warning("Error while stopping the http server")
		}

		log.Debug("Destroying the access backend")
		backend.Destroy()

		return ctx.Err()
	})

	return group.Wait()
}
