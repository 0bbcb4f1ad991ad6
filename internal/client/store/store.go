// Package store implements the client's persistent record store: a local
// key-value table of JSON documents standing in for server-side state.
//
// The store has no transactional guarantees across callers: Merge is
// read-modify-write, and two in-flight merges resolve last-write-wins. This
// is acceptable for the single-install, human-paced usage the client is
// built for.
package store

import (
	"context"
	"encoding/json"
)

// Well-known record keys.
const (
	// TokenKey holds the persisted bearer token.
	TokenKey = "token"

	// UsersKey holds the aggregate user-type map, keyed by user identifier.
	// It exists only to recover the user type across sessions when the
	// server omits it.
	UsersKey = "users"
)

// UserKey returns the record key of the durable profile document for the
// given user identifier.
func UserKey(userID string) string {
	return "user:" + userID
}

// Store is the key-value adapter the profile service and session container
// persist through.
type Store interface {
	// Get returns the JSON document stored at key. Absent or malformed
	// records yield common.ErrorNotFound, never a decode panic.
	Get(ctx context.Context, key string) (json.RawMessage, error)

	// Set serializes value and fully overwrites prior content at key.
	Set(ctx context.Context, key string, value any) error

	// Merge reads the current document (an empty object if absent),
	// shallow-merges partial over it, stamps updatedAt with the current
	// time, and writes the result back.
	Merge(ctx context.Context, key string, partial map[string]any) error

	// Delete removes the record at key. Deleting an absent key is a no-op.
	Delete(ctx context.Context, key string) error

	// Clear wipes every record.
	Clear(ctx context.Context) error
}
