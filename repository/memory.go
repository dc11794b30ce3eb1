package repository

import (
	"fmt"
	"sync/atomic"
)

// arena hands out ids for the in-memory store. Ids are zero-padded hex of a
// monotonic counter so they sort in creation order, like ObjectIDs.
type arena struct {
	next atomic.Uint64
}

func (a *arena) id() string {
	return fmt.Sprintf("%024x", a.next.Add(1))
}

// NewMemoryStore returns a Store backed by process memory. It is used when no
// MongoDB is configured and by tests.
func NewMemoryStore() *Store {
	ids := &arena{}
	return &Store{
		Issues:        newMemoryIssues(ids),
		Votes:         newMemoryVotes(ids),
		Comments:      newMemoryComments(ids),
		Users:         newMemoryUsers(ids),
		Notifications: newMemoryNotifications(ids),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func page[T any](items []T, skip, limit int64) []T {
	if skip < 0 || skip >= int64(len(items)) {
		return []T{}
	}
	end := int64(len(items))
	if limit > 0 && skip+limit < end {
		end = skip + limit
	}
	return items[skip:end]
}
