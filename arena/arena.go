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

// Package arena models a shared, memory-managed page allocator. It is a
// bump allocator over one anonymous mmap region with a size-class free list
// for reclaimed blocks, giving the rest of this module a believable
// Ref/bytes primitive to build against instead of a behaviorless mock.
package arena

import (
	"errors"
	"fmt"
	"sync"

	"github.com/edsrzf/mmap-go"
)

// ErrOutOfMemory is returned when the arena's backing region is exhausted
// and cannot be grown.
var ErrOutOfMemory = errors.New("arena: out of memory")

// Ref is an offset into the arena's backing bytes; the zero Ref never
// denotes a live allocation.
type Ref uint64

const nilRef Ref = 0

// Arena is a single growable mmap-backed region. Each method holds an
// internal mutex, but slices returned by Deref alias the region and are
// invalidated when Alloc grows it, so callers serialize writers themselves.
type Arena struct {
	mu       sync.Mutex
	region   mmap.MMap
	size     int
	used     int
	freeList map[int][]Ref // block size -> free offsets of that size
}

// New allocates an arena with an initial backing region of sizeHint bytes
// (rounded up to the OS page granularity by the mmap call).
func New(sizeHint int) (*Arena, error) {
	if sizeHint <= 0 {
		sizeHint = 1 << 20
	}
	region, err := mmap.MapRegion(nil, sizeHint, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return nil, fmt.Errorf("arena: map region: %w", err)
	}
	return &Arena{
		region:   region,
		size:     sizeHint,
		used:     8, // reserve offset 0 so nilRef is never a valid allocation
		freeList: make(map[int][]Ref),
	}, nil
}

// Close unmaps the backing region. Any Refs issued by this Arena become
// invalid.
func (a *Arena) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.region == nil {
		return nil
	}
	err := a.region.Unmap()
	a.region = nil
	return err
}

// Alloc reserves size bytes and returns a Ref to them. The returned bytes
// are zeroed.
func (a *Arena) Alloc(size int) (Ref, error) {
	if size <= 0 {
		return nilRef, fmt.Errorf("arena: invalid alloc size %d", size)
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if free := a.freeList[size]; len(free) > 0 {
		ref := free[len(free)-1]
		a.freeList[size] = free[:len(free)-1]
		clear(a.region[ref : int(ref)+size])
		return ref, nil
	}

	if a.used+size > a.size {
		if err := a.grow(size); err != nil {
			return nilRef, err
		}
	}
	ref := Ref(a.used)
	a.used += size
	clear(a.region[ref : int(ref)+size])
	return ref, nil
}

func (a *Arena) grow(atLeast int) error {
	newSize := a.size * 2
	for newSize < a.used+atLeast {
		newSize *= 2
	}
	region, err := mmap.MapRegion(nil, newSize, mmap.RDWR, mmap.ANON, 0)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfMemory, err)
	}
	copy(region, a.region)
	if err := a.region.Unmap(); err != nil {
		return fmt.Errorf("arena: unmap during grow: %w", err)
	}
	a.region = region
	a.size = newSize
	return nil
}

// Free returns the size-byte block at ref to the free list for reuse by a
// future Alloc(size) call.
func (a *Arena) Free(ref Ref, size int) {
	if ref == nilRef || size <= 0 {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.freeList[size] = append(a.freeList[size], ref)
}

// Deref returns the size bytes at ref. The returned slice aliases the
// arena's backing region and must not be retained past the next mutating
// arena call.
func (a *Arena) Deref(ref Ref, size int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if ref == nilRef {
		return nil, fmt.Errorf("arena: dereference of nil ref")
	}
	end := int(ref) + size
	if end > len(a.region) {
		return nil, fmt.Errorf("arena: ref %d+%d out of range (region size %d)", ref, size, len(a.region))
	}
	return a.region[ref:end], nil
}
