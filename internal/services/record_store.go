// record_store.go
//
// Rental manager: landlord back office with live collection snapshots
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of rentalmanager.
// rentalmanager is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// rentalmanager is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with rentalmanager.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/localnerve/rentalmanager/internal/broker"
	applog "github.com/localnerve/rentalmanager/internal/logger"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/records"
	"github.com/localnerve/rentalmanager/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

var (
	// ErrNotFound is returned when a record path does not exist
	ErrNotFound = errors.New("not found")
	// ErrVersion is returned when a write carries a stale version
	ErrVersion = errors.New("E_VERSION")
)

// Identifiable is a record whose identifier the store assigns
type Identifiable interface {
	SetID(id string)
}

// Snapshot is the full content of one user collection at a version
type Snapshot struct {
	Collection models.Collection
	Version    uint64
	Rows       []models.UserRecord
}

// WatchFunc receives every snapshot of a watched collection, or the error that prevented reading one
type WatchFunc func(snapshot Snapshot, err error)

// RecordStore persists records at users/{userId}/{collection}/{recordId} and the profile
// document at users/{userId}. Every write bumps the collection version and announces the
// change on the broker once committed.
type RecordStore struct {
	db     *gorm.DB
	broker broker.Broker
	codec  *records.Codec
}

// NewRecordStore creates a record store
func NewRecordStore(db *gorm.DB, b broker.Broker, codec *records.Codec) *RecordStore {
	return &RecordStore{db: db, broker: b, codec: codec}
}

func (s *RecordStore) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

// List reads a whole collection and its version in one transaction
func (s *RecordStore) List(ctx context.Context, userID string, collection models.Collection) (Snapshot, error) {
	snapshot := Snapshot{Collection: collection}

	err := s.quiet(ctx).Transaction(func(tx *gorm.DB) error {
		version, err := collectionVersion(tx, userID, collection)
		if err != nil {
			return err
		}
		snapshot.Version = version

		return tx.Clauses(hints.Comment("select", "snapshot")).
			Where("user_id = ? AND collection_name = ?", userID, string(collection)).
			Order("created_at").Order("record_id").
			Find(&snapshot.Rows).Error
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("list %s: %w", collection, err)
	}
	return snapshot, nil
}

// Create validates and stores a new record under a fresh identifier, which is also set on the record
func (s *RecordStore) Create(ctx context.Context, userID string, collection models.Collection, record Identifiable) (string, uint64, error) {
	id := uuid.NewString()
	record.SetID(id)

	body, err := s.codec.Encode(collection, record)
	if err != nil {
		return "", 0, err
	}

	var newVersion uint64
	err = s.quiet(ctx).Transaction(func(tx *gorm.DB) error {
		row := models.UserRecord{
			UserID:         userID,
			CollectionName: string(collection),
			RecordID:       id,
			SchemaVersion:  records.SchemaVersion,
			Body:           models.NewJSON(body),
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}

		newVersion, err = bumpVersion(tx, userID, collection)
		return err
	})
	if err != nil {
		return "", 0, fmt.Errorf("create %s: %w", collection, err)
	}

	s.publish(ctx, broker.Event{
		UserID:     userID,
		Collection: collection,
		Operation:  broker.OperationCreate,
		RecordID:   id,
		Version:    newVersion,
	})
	return id, newVersion, nil
}

// Delete removes one record. A missing record is ErrNotFound and leaves the version unchanged.
func (s *RecordStore) Delete(ctx context.Context, userID string, collection models.Collection, recordID string) (uint64, error) {
	var newVersion uint64
	err := s.quiet(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("user_id = ? AND collection_name = ? AND record_id = ?", userID, string(collection), recordID).
			Delete(&models.UserRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		var err error
		newVersion, err = bumpVersion(tx, userID, collection)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("delete %s/%s: %w", collection, recordID, err)
	}

	s.publish(ctx, broker.Event{
		UserID:     userID,
		Collection: collection,
		Operation:  broker.OperationDelete,
		RecordID:   recordID,
		Version:    newVersion,
	})
	return newVersion, nil
}

// Watch delivers the current snapshot of the collection, then a fresh snapshot after every
// change, until the returned stop function is called or ctx ends. Deliveries happen on one
// goroutine, in order. fn may call stop.
func (s *RecordStore) Watch(ctx context.Context, userID string, collection models.Collection, fn WatchFunc) (func(), error) {
	sub, err := s.broker.Subscribe(ctx, userID, collection)
	if err != nil {
		return nil, fmt.Errorf("watch %s: %w", collection, err)
	}

	done := make(chan struct{})
	var once sync.Once
	stop := func() {
		once.Do(func() {
			close(done)
			_ = sub.Close()
		})
	}

	log := applog.FromContext(ctx).WithFields(logrus.Fields{
		"user":       userID,
		"collection": collection,
	})

	// reads outlive the caller's request
	readCtx := context.WithoutCancel(ctx)

	go func() {
		deliver := func() {
			snapshot, err := s.List(readCtx, userID, collection)
			select {
			case <-done:
				return
			default:
			}
			if err != nil {
				log.WithError(err).Warn("collection read failed")
			}
			fn(snapshot, err)
		}

		deliver()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				stop()
				return
			case _, ok := <-sub.Events():
				if !ok {
					return
				}
				deliver()
			}
		}
	}()

	return stop, nil
}

// GetProfile reads the profile document; a user without one gets the zero profile
func (s *RecordStore) GetProfile(ctx context.Context, userID string) (models.UserProfile, error) {
	var row models.UserProfileRecord
	err := s.quiet(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.UserProfile{}, nil
	}
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("get profile: %w", err)
	}
	return records.DecodeProfile(row)
}

// SaveProfile upserts the profile document and marks it saved. A non-zero version must match
// the stored one; zero skips the check.
func (s *RecordStore) SaveProfile(ctx context.Context, userID string, profile models.UserProfile) (models.UserProfile, error) {
	profile.ProfileSaved = true

	err := s.quiet(ctx).Transaction(func(tx *gorm.DB) error {
		var current models.UserProfileRecord
		err := tx.Where("user_id = ?", userID).First(&current).Error
		exists := err == nil
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if v := profile.Version.Uint64(); v != 0 && v != current.Version {
			return ErrVersion
		}
		next := current.Version + 1
		profile.Version = types.FlexUint64(next)

		body, err := s.codec.EncodeProfile(profile)
		if err != nil {
			return err
		}

		if !exists {
			return tx.Create(&models.UserProfileRecord{
				UserID:        userID,
				SchemaVersion: records.SchemaVersion,
				Version:       next,
				Body:          models.NewJSON(body),
			}).Error
		}

		result := tx.Model(&models.UserProfileRecord{}).
			Where("user_id = ? AND version = ?", userID, current.Version).
			Updates(map[string]any{
				"schema_version": records.SchemaVersion,
				"version":        next,
				"body":           models.NewJSON(body),
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrVersion
		}
		return nil
	})
	if err != nil {
		return models.UserProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

func (s *RecordStore) publish(ctx context.Context, event broker.Event) {
	if err := s.broker.Publish(ctx, event); err != nil {
		applog.FromContext(ctx).WithError(err).WithFields(logrus.Fields{
			"user":       event.UserID,
			"collection": event.Collection,
		}).Warn("change notification failed")
	}
}

func collectionVersion(tx *gorm.DB, userID string, collection models.Collection) (uint64, error) {
	var uc models.UserCollection
	err := tx.Where("user_id = ? AND collection_name = ?", userID, string(collection)).First(&uc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return uc.Version, err
}

func bumpVersion(tx *gorm.DB, userID string, collection models.Collection) (uint64, error) {
	result := tx.Model(&models.UserCollection{}).
		Where("user_id = ? AND collection_name = ?", userID, string(collection)).
		UpdateColumns(map[string]any{
			"version":    gorm.Expr("version + ?", 1),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		if err := tx.Create(&models.UserCollection{
			UserID:         userID,
			CollectionName: string(collection),
			Version:        1,
		}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}
	return collectionVersion(tx, userID, collection)
}
