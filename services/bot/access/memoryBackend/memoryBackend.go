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
	"sync"
	"time"

	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
)

type memoryBackend struct {
	mutex        sync.RWMutex
	authorized   map[int64]bool
	pending      map[int64]bool
	lastDelivery map[int64]time.Time
}

// CreateMemoryBackend creates an access backend holding everything in
// memory. State is lost when the process exits.
func CreateMemoryBackend() (access.Backend, error) {
	return &memoryBackend{
		authorized:   make(map[int64]bool),
		pending:      make(map[int64]bool),
		lastDelivery: make(map[int64]time.Time),
	}, nil
}

func (b *memoryBackend) Destroy() {
}

func (b *memoryBackend) IsAuthorized(userID int64) (bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	return b.authorized[userID], nil
}

func (b *memoryBackend) Authorize(userID int64) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.authorized[userID] = true
	delete(b.pending, userID)
	return nil
}

func (b *memoryBackend) MarkPending(userID int64) (bool, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.pending[userID] {
		return false, nil
	}
	b.pending[userID] = true
	return true, nil
}

func (b *memoryBackend) ClearPending(userID int64) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	delete(b.pending, userID)
	return nil
}

func (b *memoryBackend) LastDelivery(userID int64) (time.Time, bool, error) {
	b.mutex.RLock()
	defer b.mutex.RUnlock()
	at, ok := b.lastDelivery[userID]
	return at, ok, nil
}

func (b *memoryBackend) RecordDelivery(userID int64, at time.Time) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	b.lastDelivery[userID] = at
	return nil
}
