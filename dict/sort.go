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

package dict

import (
	"sort"

	"github.com/ledgerkv/objectdict/mixed"
	"github.com/ledgerkv/objectdict/normalize"
)

// Sort stable-sorts idx, an external index vector aligned to the current
// size, by comparing each index's value under mixed.Compare.
func (h *Handle) Sort(idx []int, asc bool) error {
	if err := h.checkLive(); err != nil {
		return err
	}
	return h.sortBy(idx, asc, func(i int) (mixed.Value, error) {
		entry, err := h.tree.GetAt(i)
		if err != nil {
			return mixed.Value{}, err
		}
		return normalize.Read(h.declared, entry.Value), nil
	})
}

// SortKeys stable-sorts idx by comparing each index's key under
// mixed.Compare.
func (h *Handle) SortKeys(idx []int, asc bool) error {
	if err := h.checkLive(); err != nil {
		return err
	}
	return h.sortBy(idx, asc, func(i int) (mixed.Value, error) {
		entry, err := h.tree.GetAt(i)
		if err != nil {
			return mixed.Value{}, err
		}
		return entry.Key.ToValue(), nil
	})
}

func (h *Handle) sortBy(idx []int, asc bool, valueAt func(int) (mixed.Value, error)) error {
	if h.tree == nil {
		return nil
	}
	var sortErr error
	sort.SliceStable(idx, func(a, b int) bool {
		if sortErr != nil {
			return false
		}
		va, err := valueAt(idx[a])
		if err != nil {
			sortErr = err
			return false
		}
		vb, err := valueAt(idx[b])
		if err != nil {
			sortErr = err
			return false
		}
		cmp := mixed.Compare(va, vb)
		if asc {
			return cmp < 0
		}
		return cmp > 0
	})
	return sortErr
}

// Distinct assumes idx has already been value-sorted (typically via Sort),
// collapses consecutive runs of equal values keeping the first occurrence
// of each, then re-sorts the surviving indices back into natural (ascending
// index) order.
func (h *Handle) Distinct(idx []int) ([]int, error) {
	if err := h.checkLive(); err != nil {
		return nil, err
	}
	if h.tree == nil || len(idx) == 0 {
		return nil, nil
	}
	out := make([]int, 0, len(idx))
	var prev mixed.Value
	havePrev := false
	for _, i := range idx {
		entry, err := h.tree.GetAt(i)
		if err != nil {
			return nil, err
		}
		v := normalize.Read(h.declared, entry.Value)
		if havePrev && v.Equal(prev) {
			continue
		}
		out = append(out, i)
		prev = v
		havePrev = true
	}
	sort.Ints(out)
	return out, nil
}

// DistinctKeys is index alignment only: keys are unique by construction, so
// there is nothing to collapse.
func (h *Handle) DistinctKeys(idx []int) ([]int, error) {
	if err := h.checkLive(); err != nil {
		return nil, err
	}
	out := make([]int, len(idx))
	copy(out, idx)
	return out, nil
}
