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

package objectstore

import (
	"sync"

	"github.com/ledgerkv/objectdict/mixed"
)

// ReplicationEventKind tags which dictionary mutation a ReplicationEvent
// records.
type ReplicationEventKind uint8

const (
	ReplicationInsert ReplicationEventKind = iota
	ReplicationSet
	ReplicationErase
)

// ReplicationEvent is one recorded call to a SliceReplicationSink.
type ReplicationEvent struct {
	Kind  ReplicationEventKind
	Dict  DictKey
	Ndx   int
	Key   mixed.Key
	Value mixed.Value
}

// SliceReplicationSink appends every event it receives, in call order, so
// tests can assert on replication-order invariants.
type SliceReplicationSink struct {
	mu     sync.Mutex
	Events []ReplicationEvent
}

func (s *SliceReplicationSink) DictionaryInsert(dict DictKey, ndx int, key mixed.Key, value mixed.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ReplicationEvent{Kind: ReplicationInsert, Dict: dict, Ndx: ndx, Key: key, Value: value})
}

func (s *SliceReplicationSink) DictionarySet(dict DictKey, ndx int, key mixed.Key, value mixed.Value) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ReplicationEvent{Kind: ReplicationSet, Dict: dict, Ndx: ndx, Key: key, Value: value})
}

func (s *SliceReplicationSink) DictionaryErase(dict DictKey, ndx int, key mixed.Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Events = append(s.Events, ReplicationEvent{Kind: ReplicationErase, Dict: dict, Ndx: ndx, Key: key})
}
