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

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/groupie/internal"
)

// RawRow is one line of an idxstats-style read-count table.
type RawRow struct {
	ReferenceID    string
	SequenceLength int64
	Mapped         int64
	Unmapped       int64
}

const rawColumns = 4

func parseRawRow(line string) (row RawRow, err error) {
	fields := strings.Split(strings.TrimSuffix(line, "\r"), "\t")
	if len(fields) != rawColumns {
		return row, &MalformedTableError{
			Line:   line,
			Reason: fmt.Sprintf("expected %v tab-separated fields, found %v", rawColumns, len(fields)),
		}
	}
	row.ReferenceID = fields[0]
	var values [rawColumns - 1]int64
	for i := range values {
		if values[i], err = strconv.ParseInt(fields[i+1], 10, 64); err != nil {
			return row, &MalformedTableError{
				Line:   line,
				Reason: fmt.Sprintf("field %v is not an integer", i+2),
				Err:    err,
			}
		}
	}
	row.SequenceLength, row.Mapped, row.Unmapped = values[0], values[1], values[2]
	return row, nil
}

// ParseRawTable parses a tab-separated read-count table as produced by
// samtools idxstats. The final line is the global unmapped-read
// sentinel and is not part of the result. Lines are parsed in
// parallel, but the result is in input order.
func ParseRawTable(r io.Reader) (rows []RawRow, err error) {
	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(r))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		lines := data.([]string)
		batch := make([]RawRow, 0, len(lines))
		for _, line := range lines {
			row, err := parseRawRow(line)
			if err != nil {
				p.SetErr(err)
				return batch
			}
			batch = append(batch, row)
		}
		return batch
	})))
	p.Add(pipeline.Ord(pipeline.Receive(func(_ int, data interface{}) interface{} {
		rows = append(rows, data.([]RawRow)...)
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	switch len(rows) {
	case 0:
		return nil, &MalformedTableError{Reason: "table is empty"}
	case 1:
		return nil, &MalformedTableError{Reason: "table has no rows besides the unmapped sentinel"}
	}
	return rows[:len(rows)-1 : len(rows)-1], nil
}

// ReadRawTable parses the read-count table stored in the named file.
func ReadRawTable(filename string) (rows []RawRow, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	if rows, err = ParseRawTable(f); err != nil {
		return nil, fmt.Errorf("%w, while reading count table %v", err, filename)
	}
	return rows, nil
}
