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
	"sync"

	"github.com/valloteo/valhalla-telegram-bot/clients/nominatim"
	"github.com/valloteo/valhalla-telegram-bot/clients/valhalla"
	"github.com/valloteo/valhalla-telegram-bot/routing"
)

type phase string

const (
	phaseChooseMode      phase = "choose_mode"
	phaseAwaitStart      phase = "await_start"
	phaseAwaitEnd        phase = "await_end"
	phaseWaypointsStd    phase = "waypoints_std"
	phaseAwaitWpStd      phase = "await_wp_std"
	phaseChooseDirection phase = "choose_direction"
	phaseWaypointsRT     phase = "waypoints_rt"
	phaseAwaitWpRT       phase = "await_wp_rt"
	phaseChooseStyle     phase = "choose_style"
)

type routeMode string

const (
	modeStandard  routeMode = "standard"
	modeRoundTrip routeMode = "roundtrip"
)

// geoPickTarget names which slot of the conversation a geocoding suggestion
// will fill once the user picks one.
type geoPickTarget string

const (
	pickStart geoPickTarget = "start"
	pickEnd   geoPickTarget = "end"
	pickWpStd geoPickTarget = "wp_std"
	pickWpRT  geoPickTarget = "wp_rt"
)

// session is the per-user conversation state. It lives in memory only; a
// restart sends every user back to the main menu.
type session struct {
	Phase        phase
	Mode         routeMode
	Roundtrip    bool
	Start        *routing.Point
	End          *routing.Point
	WaypointsStd []routing.Point
	WaypointsRT  []routing.Point
	RTRadiusKm   float64
	Direction    string
	Style        valhalla.Style

	// Held deliverable awaiting the user's approval of a reduced route.
	PendingDelivery *delivery

	GeoCandidates  []nominatim.Candidate
	GeoPickTarget  geoPickTarget
	LastCallbackID string
}

func newSession() *session {
	return &session{
		Phase:      phaseChooseMode,
		RTRadiusKm: rtBaseRadiusKm,
	}
}

func (s *session) clearGeoPick() {
	s.GeoCandidates = nil
	s.GeoPickTarget = ""
}

// sessionStore keeps the per-user sessions plus a per-user lock. Sessions are
// replaced on Reset, so the lock lives in the store rather than the session:
// holding Lock(userID) serializes a user's updates even across resets.
type sessionStore struct {
	mutex    sync.Mutex
	sessions map[int64]*session
	locks    map[int64]*sync.Mutex
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		sessions: make(map[int64]*session),
		locks:    make(map[int64]*sync.Mutex),
	}
}

// Lock returns the user's lock, creating it if needed. Callers hold it for the
// duration of one update so concurrent webhook deliveries for the same user
// cannot interleave session mutations.
func (store *sessionStore) Lock(userID int64) *sync.Mutex {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	l, ok := store.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		store.locks[userID] = l
	}
	return l
}

// Get returns the user's session, creating a fresh one if needed.
func (store *sessionStore) Get(userID int64) *session {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	s, ok := store.sessions[userID]
	if !ok {
		s = newSession()
		store.sessions[userID] = s
	}
	return s
}

// Reset replaces the user's session with a fresh one and returns it.
func (store *sessionStore) Reset(userID int64) *session {
	store.mutex.Lock()
	defer store.mutex.Unlock()
	s := newSession()
	store.sessions[userID] = s
	return s
}
