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

package logqueue

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnqueuePreservesInsertionOrder(t *testing.T) {
	q := NewQueue()
	var ids []uint64
	for i := 0; i < 100; i++ {
		id, err := q.Enqueue([]byte(fmt.Sprintf("payload %d", i)))
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, 100, q.Len())
	entries := q.Entries()
	for i, entry := range entries {
		require.Equal(t, ids[i], entry.ID)
		require.Equal(t, []byte(fmt.Sprintf("payload %d", i)), entry.Value)
	}
}

func TestGetVerifiesChecksum(t *testing.T) {
	q := NewQueue()
	id, err := q.Enqueue([]byte("payload"))
	require.NoError(t, err)

	val, err := q.Get(id)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), val)

	_, err = q.Get(id + 1)
	require.ErrorIs(t, err, ErrNotFound)

	// corrupt the stored payload behind the queue's back
	entry := q.entries[id]
	entry.Value = []byte("tampered")
	q.entries[id] = entry
	_, err = q.Get(id)
	require.ErrorIs(t, err, ErrChecksum)
}

func TestRemoveAndClear(t *testing.T) {
	q := NewQueue()
	first, err := q.Enqueue([]byte("a"))
	require.NoError(t, err)
	second, err := q.Enqueue([]byte("b"))
	require.NoError(t, err)

	entry, err := q.Remove(first)
	require.NoError(t, err)
	require.Equal(t, []byte("a"), entry.Value)
	require.Equal(t, 1, q.Len())
	_, err = q.Remove(first)
	require.ErrorIs(t, err, ErrNotFound)

	q.Clear()
	require.Equal(t, 0, q.Len())
	_, err = q.Get(second)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestTrimFront(t *testing.T) {
	q := NewQueue()
	var ids []uint64
	for i := 0; i < 10; i++ {
		id, err := q.Enqueue([]byte{byte(i)})
		require.NoError(t, err)
		ids = append(ids, id)
	}
	q.TrimFront(3)
	entries := q.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, ids[7:], []uint64{entries[0].ID, entries[1].ID, entries[2].ID})
}

func TestEnqueueOpApplyUndo(t *testing.T) {
	q := NewQueue()
	op := &EnqueueOp{ID: 42, Val: []byte("x")}
	require.NoError(t, op.Apply(q))
	require.Equal(t, 1, q.Len())

	// replaying the same ID collides
	require.ErrorIs(t, (&EnqueueOp{ID: 42, Val: []byte("y")}).Apply(q), ErrIDCollision)

	require.NoError(t, op.Undo(q))
	require.Equal(t, 0, q.Len())
}

func TestRemoveOpRestoresPosition(t *testing.T) {
	q := NewQueue()
	for i := uint64(1); i <= 3; i++ {
		require.NoError(t, (&EnqueueOp{ID: i, Val: []byte{byte(i)}}).Apply(q))
	}

	op := &RemoveOp{ID: 2}
	require.NoError(t, op.Apply(q))
	require.Equal(t, []uint64{1, 3}, entryIDs(q))

	require.NoError(t, op.Undo(q))
	require.Equal(t, []uint64{1, 2, 3}, entryIDs(q))

	missing := &RemoveOp{ID: 99}
	require.ErrorIs(t, missing.Apply(q), ErrNotFound)
}

func TestClearOpRestoresEverything(t *testing.T) {
	q := NewQueue()
	for i := uint64(1); i <= 5; i++ {
		require.NoError(t, (&EnqueueOp{ID: i, Val: []byte{byte(i)}}).Apply(q))
	}

	op := &ClearOp{}
	require.NoError(t, op.Apply(q))
	require.Equal(t, 0, q.Len())

	require.NoError(t, op.Undo(q))
	require.Equal(t, []uint64{1, 2, 3, 4, 5}, entryIDs(q))
	val, err := q.Get(3)
	require.NoError(t, err)
	require.Equal(t, []byte{3}, val)
}

func entryIDs(q *Queue) []uint64 {
	entries := q.Entries()
	ids := make([]uint64, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.ID)
	}
	return ids
}
