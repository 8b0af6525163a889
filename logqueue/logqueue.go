/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package logqueue is an insertion-ordered queue keyed by random 64-bit
// IDs, with every mutation expressed as an explicit operation that knows
// how to apply and undo itself. The substrate replaying these operations
// guarantees at most one concurrent mutator; the mutex here only protects
// readers of a live instance.
package logqueue

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/cespare/xxhash"
)

// maxIDAttempts bounds how many times Enqueue retries on an ID collision.
// IDs are uniform 64-bit values, so more than one retry is already rare.
const maxIDAttempts = 16

// queue errors
var (
	// ErrIDCollision means the random ID space is somehow exhausted, or the
	// caller replayed an EnqueueOp with an ID that is already taken
	ErrIDCollision = errors.New("entry id collision")
	// ErrNotFound means no entry has the requested ID
	ErrNotFound = errors.New("entry not found")
	// ErrChecksum means an entry's payload doesn't match its recorded hash
	ErrChecksum = errors.New("entry checksum mismatch")
)

// Entry is one queued payload
type Entry struct {
	ID    uint64
	Value []byte
	Sum   uint64
}

// Queue preserves the insertion order of its entries
type Queue struct {
	mu      sync.Mutex
	order   []uint64
	entries map[uint64]Entry
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{entries: map[uint64]Entry{}}
}

// Enqueue appends val under a fresh random ID and returns the ID
func (q *Queue) Enqueue(val []byte) (uint64, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := rand.Uint64()
		if _, taken := q.entries[id]; taken {
			continue
		}
		q.insert(id, val)
		return id, nil
	}
	return 0, fmt.Errorf("%w: no free id after %d attempts", ErrIDCollision, maxIDAttempts)
}

// Get returns the payload stored under id, verifying its checksum
func (q *Queue) Get(id uint64) ([]byte, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	entry, ok := q.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	if xxhash.Sum64(entry.Value) != entry.Sum {
		return nil, fmt.Errorf("%w: entry %d", ErrChecksum, id)
	}
	return entry.Value, nil
}

// Remove deletes the entry with the given id
func (q *Queue) Remove(id uint64) (Entry, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.remove(id)
}

// Clear drops every entry
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.order = nil
	q.entries = map[uint64]Entry{}
}

// Entries returns the entries in insertion order
func (q *Queue) Entries() []Entry {
	q.mu.Lock()
	defer q.mu.Unlock()
	res := make([]Entry, 0, len(q.order))
	for _, id := range q.order {
		res = append(res, q.entries[id])
	}
	return res
}

// Len returns the number of entries
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.order)
}

// TrimFront drops the oldest entries until at most keep remain
func (q *Queue) TrimFront(keep int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.order) > keep {
		id := q.order[0]
		q.order = q.order[1:]
		delete(q.entries, id)
	}
}

func (q *Queue) insert(id uint64, val []byte) {
	q.order = append(q.order, id)
	q.entries[id] = Entry{ID: id, Value: val, Sum: xxhash.Sum64(val)}
}

func (q *Queue) insertAt(index int, id uint64, val []byte) {
	if index < 0 || index > len(q.order) {
		index = len(q.order)
	}
	q.order = append(q.order, 0)
	copy(q.order[index+1:], q.order[index:])
	q.order[index] = id
	q.entries[id] = Entry{ID: id, Value: val, Sum: xxhash.Sum64(val)}
}

func (q *Queue) remove(id uint64) (Entry, error) {
	entry, ok := q.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(q.entries, id)
	for i, cur := range q.order {
		if cur == id {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return entry, nil
}

func (q *Queue) indexOf(id uint64) int {
	for i, cur := range q.order {
		if cur == id {
			return i
		}
	}
	return -1
}
