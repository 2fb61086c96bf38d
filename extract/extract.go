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

// Package extract produces per-reference read-count tables from
// SAM/BAM alignment files, in the format of samtools idxstats: one
// line per reference "name\tlength\tmapped\tunmapped", followed by a
// final "*\t0\t0\tunplaced" line for reads without a reference.
//
// Samtools runs the external samtools binary (view, sort, index,
// idxstats). Native computes the same table in-process.
package extract

import (
	"path/filepath"

	"github.com/exascience/groupie/distro"
)

// An Extractor writes the read-count table for input into outDir and
// returns the path of the table. threads is a hint for the number of
// worker threads the extraction may use.
type Extractor interface {
	Extract(input, outDir string, threads int) (string, error)
}

func rawTablePath(outDir string) string {
	return filepath.Join(outDir, distro.RawTableName)
}
