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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRequiresTelegramToken(t *testing.T) {
	options := DefaultOptions
	options.ValhallaURL = "http://valhalla.test"

	err := Run(context.Background(), options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Telegram bot token is required")
}

func TestRunRequiresValhallaURL(t *testing.T) {
	options := DefaultOptions
	options.TelegramToken = "12345:TEST_TOKEN"

	err := Run(context.Background(), options)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Valhalla URL is required")
}

func TestDefaultOptions(t *testing.T) {
	assert.Equal(t, uint(8080), DefaultOptions.Port)
	assert.True(t, DefaultOptions.ElevationEnabled)
	assert.NotEmpty(t, DefaultOptions.TelegramBaseURL)
	assert.NotEmpty(t, DefaultOptions.GeocodingUserAgent)
}
