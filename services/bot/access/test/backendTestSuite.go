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

// Package test holds the backend-agnostic test suite every access backend
// implementation must pass.
package test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
)

// RunSuite runs the whole backend test suite against a fresh backend per test.
func RunSuite(t *testing.T, createBackend func() access.Backend, destroyBackend func(access.Backend)) {
	t.Run("TestAuthorization", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		authorized, err := b.IsAuthorized(100)
		require.NoError(t, err)
		assert.False(t, authorized)

		require.NoError(t, b.Authorize(100))

		authorized, err = b.IsAuthorized(100)
		require.NoError(t, err)
		assert.True(t, authorized)

		// Other users are unaffected
		authorized, err = b.IsAuthorized(200)
		require.NoError(t, err)
		assert.False(t, authorized)
	})

	t.Run("TestAuthorizeIsIdempotent", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		require.NoError(t, b.Authorize(100))
		require.NoError(t, b.Authorize(100))

		authorized, err := b.IsAuthorized(100)
		require.NoError(t, err)
		assert.True(t, authorized)
	})

	t.Run("TestMarkPending", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		added, err := b.MarkPending(100)
		require.NoError(t, err)
		assert.True(t, added)

		// A second request from the same user is not new
		added, err = b.MarkPending(100)
		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("TestAuthorizeClearsPending", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		added, err := b.MarkPending(100)
		require.NoError(t, err)
		assert.True(t, added)

		require.NoError(t, b.Authorize(100))

		// A user authorized then somehow de-listed would be pending again
		added, err = b.MarkPending(100)
		require.NoError(t, err)
		assert.True(t, added)
	})

	t.Run("TestClearPending", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		added, err := b.MarkPending(100)
		require.NoError(t, err)
		assert.True(t, added)

		require.NoError(t, b.ClearPending(100))

		added, err = b.MarkPending(100)
		require.NoError(t, err)
		assert.True(t, added)

		// Clearing an unknown user is not an error
		assert.NoError(t, b.ClearPending(999))
	})

	t.Run("TestDeliveries", func(t *testing.T) {
		b := createBackend()
		defer destroyBackend(b)

		_, found, err := b.LastDelivery(100)
		require.NoError(t, err)
		assert.False(t, found)

		firstAt := time.Date(2024, 5, 12, 9, 30, 0, 0, time.UTC)
		require.NoError(t, b.RecordDelivery(100, firstAt))

		last, found, err := b.LastDelivery(100)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, firstAt.Equal(last))

		// A newer delivery replaces the stored one
		secondAt := firstAt.Add(8 * 24 * time.Hour)
		require.NoError(t, b.RecordDelivery(100, secondAt))

		last, found, err = b.LastDelivery(100)
		require.NoError(t, err)
		require.True(t, found)
		assert.True(t, secondAt.Equal(last))

		// Other users have their own history
		_, found, err = b.LastDelivery(200)
		require.NoError(t, err)
		assert.False(t, found)
	})
}
