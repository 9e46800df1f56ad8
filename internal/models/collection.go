package models

import "fmt"

// Collection names a per-user group of records, the third segment of
// users/{userId}/{collection}/{recordId}
type Collection string

const (
	Tenants     Collection = "tenants"
	Properties  Collection = "properties"
	Payments    Collection = "payments"
	Occupancies Collection = "occupancies"
)

// Collections lists every collection in display order
var Collections = []Collection{Tenants, Properties, Payments, Occupancies}

// ParseCollection maps a path segment to a Collection
func ParseCollection(name string) (Collection, error) {
	for _, c := range Collections {
		if string(c) == name {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown collection: %q", name)
}

// SchemaBase prefixes the $id of every record schema
const SchemaBase = "https://localnerve.com/schemas/rentalmanager/"

// ProfileSchemaID is the $id of the profile document schema
const ProfileSchemaID = SchemaBase + "profile.json"

// SchemaID is the $id of the JSON schema records of this collection are written with
func (c Collection) SchemaID() string {
	return SchemaBase + string(c) + ".json"
}
