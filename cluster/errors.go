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

import "errors"

var (
	// ErrSlotAlreadyUsed is returned by Insert when slot is already present;
	// the façade always catches this and converts the call to an update.
	ErrSlotAlreadyUsed = errors.New("cluster: slot already used")
	// ErrSlotNotFound is returned by Get/Erase when slot is absent.
	ErrSlotNotFound = errors.New("cluster: slot not found")
	// ErrIndexOutOfRange is returned by positional access beyond the
	// current size.
	ErrIndexOutOfRange = errors.New("cluster: index out of range")
)
