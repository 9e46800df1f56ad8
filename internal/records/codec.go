// codec.go
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

package records

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/localnerve/rentalmanager/data"
	"github.com/localnerve/rentalmanager/internal/models"
	"github.com/localnerve/rentalmanager/internal/types"
	"github.com/sirupsen/logrus"
)

// SchemaVersion is the version of the serialization contract written by this build.
// Rows written before versioning carry 0 and decode with the same rules.
const SchemaVersion = 1

// ErrUnsupportedVersion is returned for rows written by a newer contract
var ErrUnsupportedVersion = errors.New("unsupported schema version")

// Identified is implemented by record types whose identifier lives in the row, not the body
type Identified[T any] interface {
	*T
	SetID(id string)
}

// Codec writes records validated against their collection schema and reads them back leniently:
// unknown fields are ignored and missing fields keep their zero value.
type Codec struct {
	validator *Validator
}

// NewCodec builds a codec from the embedded schemas
func NewCodec() (*Codec, error) {
	v, err := NewValidatorFromFS(data.Schemas, data.SchemasDir)
	if err != nil {
		return nil, err
	}
	for _, c := range models.Collections {
		if !v.HasSchema(c.SchemaID()) {
			return nil, fmt.Errorf("missing schema for collection %s", c)
		}
	}
	return &Codec{validator: v}, nil
}

// Encode serializes a record of the collection, rejecting it if it breaks the schema
func (c *Codec) Encode(collection models.Collection, record any) ([]byte, error) {
	return c.encode(record, collection.SchemaID())
}

// EncodeProfile serializes a profile document
func (c *Codec) EncodeProfile(profile models.UserProfile) ([]byte, error) {
	return c.encode(profile, models.ProfileSchemaID)
}

func (c *Codec) encode(v any, schemaID string) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", schemaID, err)
	}
	if err := c.validator.Validate(body, schemaID); err != nil {
		return nil, err
	}
	return body, nil
}

// Decode reads one stored record; the row's identifier wins over any id in the body
func Decode[T any, PT Identified[T]](row models.UserRecord) (T, error) {
	var record T
	if row.SchemaVersion > SchemaVersion {
		return record, fmt.Errorf("record %s/%s: %w %d", row.CollectionName, row.RecordID, ErrUnsupportedVersion, row.SchemaVersion)
	}
	if body := row.Body.Bytes(); len(body) > 0 {
		if err := json.Unmarshal(body, &record); err != nil {
			return record, fmt.Errorf("record %s/%s: %w", row.CollectionName, row.RecordID, err)
		}
	}
	PT(&record).SetID(row.RecordID)
	return record, nil
}

// DecodeAll reads a collection snapshot. Rows that cannot be decoded are logged and left out.
func DecodeAll[T any, PT Identified[T]](rows []models.UserRecord, log *logrus.Entry) []T {
	out := make([]T, 0, len(rows))
	for _, row := range rows {
		record, err := Decode[T, PT](row)
		if err != nil {
			log.WithError(err).Warn("skipping undecodable record")
			continue
		}
		out = append(out, record)
	}
	return out
}

// DecodeProfile reads the profile document; the row version wins over the body
func DecodeProfile(row models.UserProfileRecord) (models.UserProfile, error) {
	var profile models.UserProfile
	if row.SchemaVersion > SchemaVersion {
		return profile, fmt.Errorf("profile %s: %w %d", row.UserID, ErrUnsupportedVersion, row.SchemaVersion)
	}
	if body := row.Body.Bytes(); len(body) > 0 {
		if err := json.Unmarshal(body, &profile); err != nil {
			return profile, fmt.Errorf("profile %s: %w", row.UserID, err)
		}
	}
	profile.Version = types.FlexUint64(row.Version)
	return profile, nil
}
