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

// Package distro reads, cleans and groups per-reference read-count
// distributions.
//
// A raw table is the tab-separated output of samtools idxstats. Clean
// turns it into a canonical table, which is persisted as a
// comma-separated file with a summary line, so that it can be grouped
// again later with a different range. Group partitions the canonical
// rows into blocks of a fixed number of consecutive rows and sums the
// mapped read counts of each block. A block is labeled with the range
// markers of its first and last reference, where the range marker is
// the fourth underscore-delimited field of a reference identifier, as
// in chrX_rep_CAG_17.
package distro
