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

package archive

import "errors"

var (
	// ErrInvalidOffset is returned by GetArchiveSlice when offset is at or
	// past the end of the archive's stored value.
	ErrInvalidOffset = errors.New("archive: offset past end of archive value")

	// ErrCorruptArchive is returned by ParseSegments on a truncated or
	// otherwise malformed segment stream. A truncated final segment is
	// fatal to verification, not a soft EOF.
	ErrCorruptArchive = errors.New("archive: corrupt segment framing")
)
