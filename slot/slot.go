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

// Package slot derives the 63-bit cluster slot id a dictionary key is
// stored under. Derivation is a pure function of the key's bytes: the same
// key always derives the same slot, across processes and across restarts.
package slot

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ledgerkv/objectdict/mixed"
)

const slotMask = int64(0x7FFF_FFFF_FFFF_FFFF)

const (
	tagInt byte = iota
	tagString
)

// canonicalBytes encodes key so that an Int key and a String key can never
// collide purely from representation overlap: a one-byte kind tag prefixes
// the little-endian int64 or the raw UTF-8 bytes.
func canonicalBytes(key mixed.Key) []byte {
	if key.Kind() == mixed.KeyInt {
		buf := make([]byte, 9)
		buf[0] = tagInt
		binary.LittleEndian.PutUint64(buf[1:], uint64(key.Int()))
		return buf
	}
	s := key.Str()
	buf := make([]byte, 1+len(s))
	buf[0] = tagString
	copy(buf[1:], s)
	return buf
}

// Derive returns the masked 63-bit non-negative slot id for key. It is
// bytewise stable across runs: no process-local seed ever enters the hash.
func Derive(key mixed.Key) (int64, error) {
	h := xxhash.Sum64(canonicalBytes(key))
	return int64(h) & slotMask, nil
}

// Deriver wraps Derive with an LRU cache, since the same application key is
// often re-derived across successive operations on the same logical value
// (e.g. Contains followed by Get). A cache hit and a cache miss always
// return the same value: Derive is pure.
type Deriver struct {
	cache *lru.Cache[mixed.Key, int64]
}

// New builds a Deriver whose cache holds at most capacity entries. A
// non-positive capacity disables caching.
func New(capacity int) (*Deriver, error) {
	if capacity <= 0 {
		return &Deriver{}, nil
	}
	cache, err := lru.New[mixed.Key, int64](capacity)
	if err != nil {
		return nil, err
	}
	return &Deriver{cache: cache}, nil
}

// Derive returns the slot id for key, consulting and populating the cache.
func (d *Deriver) Derive(key mixed.Key) (int64, error) {
	if d.cache == nil {
		return Derive(key)
	}
	if id, ok := d.cache.Get(key); ok {
		return id, nil
	}
	id, err := Derive(key)
	if err != nil {
		return 0, err
	}
	d.cache.Add(key, id)
	return id, nil
}
