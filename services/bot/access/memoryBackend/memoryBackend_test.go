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

package memoryBackend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
	"github.com/valloteo/valhalla-telegram-bot/services/bot/access/test"
)

func TestSuiteMemoryBackend(t *testing.T) {
	test.RunSuite(t, func() access.Backend {
		b, err := CreateMemoryBackend()
		assert.NoError(t, err)
		return b
	}, func(b access.Backend) {
		b.Destroy()
	})
}
