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

package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/valloteo/valhalla-telegram-bot/services/bot"
	"github.com/valloteo/valhalla-telegram-bot/version"
)

// serveViper represents the configuration of the serve command
var serveViper = viper.New()

const portKey = "port"
const portEnv = "PORT"
const telegramTokenKey = "telegram_token"
const telegramTokenEnv = "TELEGRAM_TOKEN"
const webhookURLKey = "webhook_url"
const webhookURLEnv = "TELEGRAM_WEBHOOK_URL"
const webhookSecretKey = "webhook_secret"
const webhookSecretEnv = "TELEGRAM_WEBHOOK_SECRET"
const valhallaURLKey = "valhalla_url"
const valhallaURLEnv = "VALHALLA_URL"
const valhallaFallbackURLKey = "valhalla_fallback_url"
const valhallaFallbackURLEnv = "VALHALLA_URL_FALLBACK"
const ownerIDKey = "owner_id"
const ownerIDEnv = "OWNER_ID"
const authUsersKey = "auth_users"
const authUsersEnv = "AUTH_USERS_CSV"
const geocodingUserAgentKey = "geocoding_ua"
const geocodingUserAgentEnv = "GEOCODING_UA"
const stadiaTokenKey = "stadia_token"
const stadiaTokenEnv = "STADIA_TOKEN"
const stateFileKey = "state_file"
const stateFileEnv = "STATE_FILE"
const elevationEnabledKey = "elevation"
const elevationEnabledEnv = "ELEVATION_ENABLED"

const logLevelKey = "log_level"
const logLevelEnv = "LOG_LEVEL"
const logFileKey = "log_file"
const logFileEnv = "LOG_FILE"
const logFormatKey = "log_format"
const logFormatEnv = "LOG_FORMAT"

// serveCmd runs the webhook server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram webhook server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _args []string) error {
		err := configureLog(serveViper)
		if err != nil {
			return err
		}

		log.WithFields(logrus.Fields{
			"version": version.Version,
			"hash":    version.Hash,
		}).Info("starting the telegram bot service")

		authorizedUsers, err := parseUserList(serveViper.GetString(authUsersKey))
		if err != nil {
			return err
		}

		options := bot.Options{
			Port:                 serveViper.GetUint(portKey),
			TelegramToken:        serveViper.GetString(telegramTokenKey),
			TelegramBaseURL:      bot.DefaultOptions.TelegramBaseURL,
			WebhookURL:           serveViper.GetString(webhookURLKey),
			WebhookSecret:        serveViper.GetString(webhookSecretKey),
			ValhallaURL:          serveViper.GetString(valhallaURLKey),
			ValhallaFallbackURL:  serveViper.GetString(valhallaFallbackURLKey),
			GeocodingUserAgent:   serveViper.GetString(geocodingUserAgentKey),
			StadiaToken:          serveViper.GetString(stadiaTokenKey),
			StateFile:            serveViper.GetString(stateFileKey),
			OwnerID:              serveViper.GetInt64(ownerIDKey),
			AuthorizedUsers:      authorizedUsers,
			ElevationEnabled:     serveViper.GetBool(elevationEnabledKey),
			ElevationURL:         bot.DefaultOptions.ElevationURL,
			ElevationFallbackURL: bot.DefaultOptions.ElevationFallbackURL,
		}

		ctx := contextWithUserTermination(context.Background())

		err = bot.Run(ctx, options)
		if err != nil {
			if err == context.Canceled {
				log.Info("interrupted by user")
				return nil
			}
			return err
		}
		return nil
	},
}

// parseUserList parses a comma-separated list of Telegram user ids.
func parseUserList(csv string) ([]int64, error) {
	csv = strings.TrimSpace(csv)
	if csv == "" {
		return nil, nil
	}

	var users []int64
	for _, field := range strings.Split(csv, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		userID, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user id [%s] in user list: %w", field, err)
		}
		users = append(users, userID)
	}
	return users, nil
}

func init() {
	serveViper.SetDefault(portKey, bot.DefaultOptions.Port)
	_ = serveViper.BindEnv(portKey, portEnv)
	serveCmd.Flags().Uint(
		portKey,
		serveViper.GetUint(portKey),
		"The http port to listen on",
	)

	_ = serveViper.BindEnv(telegramTokenKey, telegramTokenEnv)
	serveCmd.Flags().String(
		telegramTokenKey,
		serveViper.GetString(telegramTokenKey),
		"Telegram bot API token",
	)

	_ = serveViper.BindEnv(webhookURLKey, webhookURLEnv)
	serveCmd.Flags().String(
		webhookURLKey,
		serveViper.GetString(webhookURLKey),
		"Public base URL to register as the Telegram webhook, registration is skipped when empty",
	)

	_ = serveViper.BindEnv(webhookSecretKey, webhookSecretEnv)
	serveCmd.Flags().String(
		webhookSecretKey,
		serveViper.GetString(webhookSecretKey),
		"Secret token checked on every incoming webhook request",
	)

	_ = serveViper.BindEnv(valhallaURLKey, valhallaURLEnv)
	serveCmd.Flags().String(
		valhallaURLKey,
		serveViper.GetString(valhallaURLKey),
		"Valhalla routing service base URL",
	)

	_ = serveViper.BindEnv(valhallaFallbackURLKey, valhallaFallbackURLEnv)
	serveCmd.Flags().String(
		valhallaFallbackURLKey,
		serveViper.GetString(valhallaFallbackURLKey),
		"Fallback Valhalla base URL tried when the primary fails",
	)

	_ = serveViper.BindEnv(ownerIDKey, ownerIDEnv)
	serveCmd.Flags().Int64(
		ownerIDKey,
		serveViper.GetInt64(ownerIDKey),
		"Telegram user id of the bot owner",
	)

	_ = serveViper.BindEnv(authUsersKey, authUsersEnv)
	serveCmd.Flags().String(
		authUsersKey,
		serveViper.GetString(authUsersKey),
		"Comma-separated Telegram user ids authorized from the start",
	)

	serveViper.SetDefault(geocodingUserAgentKey, bot.DefaultOptions.GeocodingUserAgent)
	_ = serveViper.BindEnv(geocodingUserAgentKey, geocodingUserAgentEnv)
	serveCmd.Flags().String(
		geocodingUserAgentKey,
		serveViper.GetString(geocodingUserAgentKey),
		"User-Agent sent to the Nominatim geocoding service",
	)

	_ = serveViper.BindEnv(stadiaTokenKey, stadiaTokenEnv)
	serveCmd.Flags().String(
		stadiaTokenKey,
		serveViper.GetString(stadiaTokenKey),
		"Stadia Maps API token for static map previews",
	)

	_ = serveViper.BindEnv(stateFileKey, stateFileEnv)
	serveCmd.Flags().String(
		stateFileKey,
		serveViper.GetString(stateFileKey),
		"Path of the bbolt state file, an in-memory store is used when empty",
	)

	serveViper.SetDefault(elevationEnabledKey, bot.DefaultOptions.ElevationEnabled)
	_ = serveViper.BindEnv(elevationEnabledKey, elevationEnabledEnv)
	serveCmd.Flags().Bool(
		elevationEnabledKey,
		serveViper.GetBool(elevationEnabledKey),
		"Enrich GPX tracks with elevation data",
	)

	serveViper.SetDefault(logLevelKey, logrus.InfoLevel.String())
	_ = serveViper.BindEnv(logLevelKey, logLevelEnv)
	serveCmd.Flags().String(
		logLevelKey,
		serveViper.GetString(logLevelKey),
		fmt.Sprintf("Minimum logging level as one of %v", expectedLogLevels),
	)

	_ = serveViper.BindEnv(logFileKey, logFileEnv)
	serveCmd.Flags().String(
		logFileKey,
		serveViper.GetString(logFileKey),
		"Log file output",
	)

	_ = serveViper.BindEnv(logFormatKey, logFormatEnv)
	serveCmd.Flags().String(
		logFormatKey,
		serveViper.GetString(logFormatKey),
		fmt.Sprintf(
			"Log format as one of %v, default is %q, when a log file is specified it is %q",
			expectedLogFormats, text, json,
		),
	)

	// Don't sort alphabetically, keep insertion order
	serveCmd.Flags().SortFlags = false

	// Bind "cobra" flags defined in the CLI with viper
	_ = serveViper.BindPFlags(serveCmd.Flags())
}
