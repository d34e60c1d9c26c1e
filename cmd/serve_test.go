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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/services/bot"
)

func TestServeDefaults(t *testing.T) {
	assert.Equal(t, bot.DefaultOptions.Port, serveViper.GetUint(portKey))
	assert.Equal(t, bot.DefaultOptions.GeocodingUserAgent, serveViper.GetString(geocodingUserAgentKey))
	assert.Equal(t, bot.DefaultOptions.ElevationEnabled, serveViper.GetBool(elevationEnabledKey))
}

func TestParseUserList(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []int64
		fails    bool
	}{
		{"empty", "", nil, false},
		{"blank", "   ", nil, false},
		{"single", "123", []int64{123}, false},
		{"several", "123,456,789", []int64{123, 456, 789}, false},
		{"spaced", " 123 , 456 ", []int64{123, 456}, false},
		{"emptyFieldsSkipped", "123,,456,", []int64{123, 456}, false},
		{"notANumber", "123,abc", nil, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			users, err := parseUserList(c.input)
			if c.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, c.expected, users)
		})
	}
}
