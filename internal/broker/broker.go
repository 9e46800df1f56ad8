// broker.go
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

package broker

import (
	"context"
	"fmt"

	"github.com/localnerve/rentalmanager/internal/models"
)

// Operation is the kind of write that produced an Event
type Operation string

const (
	OperationCreate Operation = "create"
	OperationDelete Operation = "delete"
	OperationUpdate Operation = "update"
)

// Event announces that a user's collection changed. Receivers re-read the whole collection;
// events carry no record data.
type Event struct {
	UserID     string            `json:"userId"`
	Collection models.Collection `json:"collection"`
	Operation  Operation         `json:"operation"`
	RecordID   string            `json:"recordId,omitempty"`
	Version    uint64            `json:"version"`
}

// Subscription receives events for one user collection until closed
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Broker fans collection change events out to every subscriber of the same user collection
type Broker interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(ctx context.Context, userID string, collection models.Collection) (Subscription, error)
	Ping(ctx context.Context) error
	Close() error
}

// Topic names the channel of a user collection
func Topic(userID string, collection models.Collection) string {
	return fmt.Sprintf("rentalmanager:users:%s:%s", userID, collection)
}
