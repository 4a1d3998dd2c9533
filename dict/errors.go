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

import "errors"

var (
	// ErrCollectionTypeMismatch is returned when a key's runtime type does
	// not match the column's declared key type.
	ErrCollectionTypeMismatch = errors.New("dict: key type does not match column's declared key type")
	// ErrKeyNotFound is returned by Get when the key is absent.
	ErrKeyNotFound = errors.New("dict: key not found")
	// ErrDetachedAccessor is returned by every error-returning Handle method
	// once the parent object is no longer live. Size, Tree, Version and At
	// do not check liveness.
	ErrDetachedAccessor = errors.New("dict: accessor's parent object is no longer live")
)
