// Copyright 2024 The ObjectDict Authors
// This file is part of ObjectDict.
//
// ObjectDict is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// ObjectDict is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with ObjectDict. If not, see <http://www.gnu.org/licenses/>.

package cluster

import (
	"sort"

	"github.com/ledgerkv/objectdict/arena"
	"github.com/ledgerkv/objectdict/config"
	"github.com/ledgerkv/objectdict/mixed"
)

// Entry is the logical (slot, key, value) tuple read operations return.
type Entry struct {
	Slot  int64
	Key   mixed.Key
	Value mixed.Value
}

// leaf is one Cluster: three parallel slices kept sorted by slot id. The
// slices are the source of truth; persist mirrors them into arena.MixedArray
// and arena.IntArray, so a leaf's storage can be described purely by an
// arena offset plus length.
type leaf struct {
	a      *arena.Arena
	cfg    config.Config
	slots  []int64
	keys   []mixed.Key
	values []mixed.Value

	slotsRef  arena.Ref
	keysRef   arena.Ref
	valuesRef arena.Ref
}

func newLeaf(a *arena.Arena, cfg config.Config) *leaf {
	return &leaf{a: a, cfg: cfg}
}

// persist mirrors the leaf's in-memory slices into the arena. It is best
// effort: a nil arena (used by tests that don't need the allocator) is a
// no-op. Values are written through arena.MixedArray with the column's
// configured CompressThreshold, so large string and binary payloads are
// zstd-compressed before they hit the arena.
func (l *leaf) persist() error {
	if l.a == nil {
		return nil
	}
	threshold := int(l.cfg.CompressThreshold)

	ints, err := arena.NewIntArray(l.a, len(l.slots))
	if err != nil {
		return err
	}
	for i, s := range l.slots {
		if err := ints.Set(i, s); err != nil {
			return err
		}
	}
	l.slotsRef = ints.Ref()

	keyValues := make([]mixed.Value, len(l.keys))
	for i, k := range l.keys {
		keyValues[i] = k.ToValue()
	}
	keyArr, err := arena.NewMixedArray(l.a, keyValues, threshold)
	if err != nil {
		return err
	}
	l.keysRef = keyArr.Ref()

	valArr, err := arena.NewMixedArray(l.a, l.values, threshold)
	if err != nil {
		return err
	}
	l.valuesRef = valArr.Ref()
	return nil
}

func (l *leaf) indexOf(slotID int64) (int, bool) {
	i := sort.Search(len(l.slots), func(i int) bool { return l.slots[i] >= slotID })
	if i < len(l.slots) && l.slots[i] == slotID {
		return i, true
	}
	return 0, false
}

func (l *leaf) insertSorted(slotID int64, key mixed.Key, value mixed.Value) {
	i := sort.Search(len(l.slots), func(i int) bool { return l.slots[i] >= slotID })
	l.slots = append(l.slots, 0)
	copy(l.slots[i+1:], l.slots[i:])
	l.slots[i] = slotID

	l.keys = append(l.keys, mixed.Key{})
	copy(l.keys[i+1:], l.keys[i:])
	l.keys[i] = key

	l.values = append(l.values, mixed.Value{})
	copy(l.values[i+1:], l.values[i:])
	l.values[i] = value
}

func (l *leaf) removeAt(i int) Entry {
	removed := Entry{Slot: l.slots[i], Key: l.keys[i], Value: l.values[i]}
	l.slots = append(l.slots[:i], l.slots[i+1:]...)
	l.keys = append(l.keys[:i], l.keys[i+1:]...)
	l.values = append(l.values[:i], l.values[i+1:]...)
	return removed
}

func (l *leaf) entryAt(i int) Entry {
	return Entry{Slot: l.slots[i], Key: l.keys[i], Value: l.values[i]}
}

// splitAt returns a fresh leaf holding l's entries from mid onward, leaving
// l holding only the entries before mid.
func (l *leaf) splitAt(mid int) *leaf {
	right := newLeaf(l.a, l.cfg)
	right.slots = append(right.slots, l.slots[mid:]...)
	right.keys = append(right.keys, l.keys[mid:]...)
	right.values = append(right.values, l.values[mid:]...)

	l.slots = l.slots[:mid:mid]
	l.keys = l.keys[:mid:mid]
	l.values = l.values[:mid:mid]
	return right
}

// absorb appends other's entries after l's own, assuming other's slots are
// all greater than l's (true whenever other is l's right sibling span).
func (l *leaf) absorb(other *leaf) {
	l.slots = append(l.slots, other.slots...)
	l.keys = append(l.keys, other.keys...)
	l.values = append(l.values, other.values...)
}
