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

package arena

import (
	"encoding/binary"
	"fmt"
)

// IntArray is a fixed-width integer array primitive: InitIntArrayFromRef, Get(i),
// Set(i, v), each slot 8 bytes wide.
type IntArray struct {
	a   *Arena
	ref Ref
	n   int
}

// NewIntArray allocates room for n int64s, all zeroed.
func NewIntArray(a *Arena, n int) (*IntArray, error) {
	ref, err := a.Alloc(n * 8)
	if err != nil {
		return nil, err
	}
	return &IntArray{a: a, ref: ref, n: n}, nil
}

// InitIntArrayFromRef attaches to an existing allocation without copying.
func InitIntArrayFromRef(a *Arena, ref Ref, n int) *IntArray {
	return &IntArray{a: a, ref: ref, n: n}
}

func (ia *IntArray) Ref() Ref { return ia.ref }
func (ia *IntArray) Len() int { return ia.n }

func (ia *IntArray) Get(i int) (int64, error) {
	if i < 0 || i >= ia.n {
		return 0, fmt.Errorf("arena: int array index %d out of range [0,%d)", i, ia.n)
	}
	b, err := ia.a.Deref(ia.ref, ia.n*8)
	if err != nil {
		return 0, err
	}
	return int64(binary.LittleEndian.Uint64(b[i*8:])), nil
}

func (ia *IntArray) Set(i int, v int64) error {
	if i < 0 || i >= ia.n {
		return fmt.Errorf("arena: int array index %d out of range [0,%d)", i, ia.n)
	}
	b, err := ia.a.Deref(ia.ref, ia.n*8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b[i*8:], uint64(v))
	return nil
}

// Resize grows or shrinks the array, reporting the new Ref so the caller —
// a cluster leaf — can update its stored reference.
func (ia *IntArray) Resize(newN int) (movedTo Ref, err error) {
	if newN == ia.n {
		return nilRef, nil
	}
	newRef, err := ia.a.Alloc(newN * 8)
	if err != nil {
		return nilRef, err
	}
	oldBytes, err := ia.a.Deref(ia.ref, ia.n*8)
	if err != nil {
		return nilRef, err
	}
	newBytes, err := ia.a.Deref(newRef, newN*8)
	if err != nil {
		return nilRef, err
	}
	copy(newBytes, oldBytes)
	ia.a.Free(ia.ref, ia.n*8)
	ia.ref = newRef
	ia.n = newN
	return newRef, nil
}
