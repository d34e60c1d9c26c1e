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

// Package access persists who may use the bot and when each user last
// received a route, behind a storage-agnostic backend interface.
package access

import "time"

// Backend stores the authorization state of the bot.
//
// Authorized users may build routes. Unknown users are marked pending until
// the owner approves or denies them. Deliveries are recorded to enforce the
// per-user download rate limit.
type Backend interface {
	// IsAuthorized reports whether the user may use the bot.
	IsAuthorized(userID int64) (bool, error)

	// Authorize grants access to the user and clears any pending mark.
	Authorize(userID int64) error

	// MarkPending records an access request. It returns true the first
	// time the user is marked, false when the request was already known.
	MarkPending(userID int64) (bool, error)

	// ClearPending drops the pending mark, if any.
	ClearPending(userID int64) error

	// LastDelivery returns when the user last received a route, and
	// whether a delivery was recorded at all.
	LastDelivery(userID int64) (time.Time, bool, error)

	// RecordDelivery stores the time of a route delivery.
	RecordDelivery(userID int64, at time.Time) error

	// Destroy releases the resources held by the backend.
	Destroy()
}
