// Package store holds the persistence abstractions for topics and answers.
// The interfaces are what the lifecycle engine and ranker program against;
// the gorm implementations in this package are the only code that knows SQL.
package store

import "errors"

var (
	// ErrNotFound indicates the requested row does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate indicates a uniqueness constraint rejected a write.
	// For answers this is the (topic_id, user_id) pair losing a create race.
	ErrDuplicate = errors.New("duplicate record")

	// ErrMultipleActive indicates more than one topic is active at once.
	// This means the scheduling discipline was violated and must be raised
	// loudly instead of silently picking a row.
	ErrMultipleActive = errors.New("multiple active topics")
)
