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

import (
	"encoding/binary"
	"fmt"
)

// Segment is one framed entry inside an archive value: a name (e.g.
// "<block>:block" or "<block>:proof") and its (already compressed) payload.
type Segment struct {
	Name string
	Data []byte
}

// FrameSegment serializes seg self-describingly: name_len(2B BE) ++ name ++
// data_len(4B BE) ++ data. Concatenating framed segments is exactly the
// byte-level append the archives merge operator performs (spec §6).
func FrameSegment(seg Segment) []byte {
	buf := make([]byte, 0, 2+len(seg.Name)+4+len(seg.Data))
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(seg.Name)))
	buf = append(buf, seg.Name...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(seg.Data)))
	buf = append(buf, seg.Data...)
	return buf
}

// ParseSegments walks a framed archive value front to back. A stream that
// ends mid-segment — not enough bytes left for the next header, or a header
// promising more payload than remains — is a fatal verification error
// (spec §6: "must accept truncated-final-segment detection as a fatal
// verify error"), not a silently-ignored soft EOF.
func ParseSegments(value []byte) ([]Segment, error) {
	var segs []Segment
	off := 0
	for off < len(value) {
		if len(value)-off < 2 {
			return nil, fmt.Errorf("%w: truncated name length at offset %d", ErrCorruptArchive, off)
		}
		nameLen := int(binary.BigEndian.Uint16(value[off : off+2]))
		off += 2

		if len(value)-off < nameLen {
			return nil, fmt.Errorf("%w: truncated name at offset %d", ErrCorruptArchive, off)
		}
		name := string(value[off : off+nameLen])
		off += nameLen

		if len(value)-off < 4 {
			return nil, fmt.Errorf("%w: truncated data length at offset %d", ErrCorruptArchive, off)
		}
		dataLen := int(binary.BigEndian.Uint32(value[off : off+4]))
		off += 4

		if len(value)-off < dataLen {
			return nil, fmt.Errorf("%w: truncated data at offset %d", ErrCorruptArchive, off)
		}
		data := value[off : off+dataLen]
		off += dataLen

		segs = append(segs, Segment{Name: name, Data: data})
	}
	return segs, nil
}
