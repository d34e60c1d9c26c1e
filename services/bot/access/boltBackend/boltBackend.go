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

package boltBackend

import (
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/valloteo/valhalla-telegram-bot/services/bot/access"
)

// Bucket structure is
//	authorized	> {user_id} > "1"
//	pending			> {user_id} > "1"
//	deliveries	> {user_id} > {RFC3339 timestamp}

var (
	authorizedBucketName = []byte("authorized")
	pendingBucketName    = []byte("pending")
	deliveriesBucketName = []byte("deliveries")
)

type boltBackend struct {
	db       *bolt.DB
	filePath string
}

// CreateBoltBackend opens (or creates) a bolt file backend at the given
// path, so authorization and rate-limit state survive restarts.
func CreateBoltBackend(filePath string) (access.Backend, error) {
	db, err := bolt.Open(filePath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("unable to open access db %q: %w", filePath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{authorizedBucketName, pendingBucketName, deliveriesBucketName} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("unable to initialize access db %q: %w", filePath, err)
	}

	return &boltBackend{db: db, filePath: filePath}, nil
}

func (b *boltBackend) Destroy() {
	if err := b.db.Close(); err != nil {
		log.WithField("path", b.filePath).WithField("error", err).Warn("unable to close access db")
	}
}

func serializeUserID(userID int64) []byte {
	return []byte(fmt.Sprintf("%016x", uint64(userID)))
}

func (b *boltBackend) IsAuthorized(userID int64) (bool, error) {
	authorized := false
	err := b.db.View(func(tx *bolt.Tx) error {
		authorized = tx.Bucket(authorizedBucketName).Get(serializeUserID(userID)) != nil
		return nil
	})
	return authorized, err
}

func (b *boltBackend) Authorize(userID int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(authorizedBucketName).Put(serializeUserID(userID), []byte("1")); err != nil {
			return err
		}
		return tx.Bucket(pendingBucketName).Delete(serializeUserID(userID))
	})
}

func (b *boltBackend) MarkPending(userID int64) (bool, error) {
	added := false
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(pendingBucketName)
		key := serializeUserID(userID)
		if bucket.Get(key) != nil {
			return nil
		}
		added = true
		return bucket.Put(key, []byte("1"))
	})
	return added, err
}

func (b *boltBackend) ClearPending(userID int64) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucketName).Delete(serializeUserID(userID))
	})
}

func (b *boltBackend) LastDelivery(userID int64) (time.Time, bool, error) {
	var at time.Time
	found := false
	err := b.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(deliveriesBucketName).Get(serializeUserID(userID))
		if value == nil {
			return nil
		}
		parsed, parseErr := time.Parse(time.RFC3339, string(value))
		if parseErr != nil {
			return fmt.Errorf("unable to deserialize delivery time: %w", parseErr)
		}
		at = parsed
		found = true
		return nil
	})
	return at, found, err
}

func (b *boltBackend) RecordDelivery(userID int64, at time.Time) error {
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(deliveriesBucketName).Put(
			serializeUserID(userID),
			[]byte(at.UTC().Format(time.RFC3339)),
		)
	})
}
