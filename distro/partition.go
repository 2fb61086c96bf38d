// groupie: batching read-count distributions of SAM/BAM files.
// Copyright (c) 2020 imec vzw.

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version, and Additional Terms
// (see below).

// This program is distributed in the hope that it will be useful, but
// WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public
// License and Additional Terms along with this program. If not, see
// <https://github.com/exascience/groupie/blob/master/LICENSE.txt>.

package distro

// A Block is a contiguous run of canonical rows.
type Block []CanonicalRow

// Partition splits rows into consecutive blocks of exactly groupRange
// rows each, in order. The number of rows must be a multiple of
// groupRange, otherwise an *UnevenGroupingError is returned and no
// blocks are produced.
//
// Blocks share their backing array with rows.
func Partition(rows []CanonicalRow, groupRange int) ([]Block, error) {
	if groupRange <= 0 {
		return nil, ErrNonPositiveRange
	}
	if len(rows)%groupRange != 0 {
		return nil, &UnevenGroupingError{Rows: len(rows), Range: groupRange}
	}
	blocks := make([]Block, 0, len(rows)/groupRange)
	for i := 0; i < len(rows); i += groupRange {
		blocks = append(blocks, Block(rows[i:i+groupRange:i+groupRange]))
	}
	return blocks, nil
}
