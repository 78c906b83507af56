// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

package cellstore

import "errors"

var (
	// ErrCellNotFound is returned by LoadCell and RemoveCell when a row is
	// absent or its effective refcount is <= 0.
	ErrCellNotFound = errors.New("cellstore: cell not found")

	// ErrInvalidCell is returned when a stored row fails to deserialize.
	ErrInvalidCell = errors.New("cellstore: invalid cell encoding")

	// ErrCounterMismatch is the fatal invariant violation from spec §4.1:
	// RemoveCell observed more removes than the stored refcount allows.
	ErrCounterMismatch = errors.New("cellstore: remove count exceeds stored refcount")
)
