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
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// rangeMarkerField is the 0-based position of the range marker among
// the underscore-delimited fields of a reference identifier.
const rangeMarkerField = 3

// GroupedResult is the summary of one block.
type GroupedResult struct {
	RangeLabel string
	TotalReads int64
}

// GroupedTable holds one GroupedResult per block, in block order.
type GroupedTable []GroupedResult

// RangeMarker returns the fourth underscore-delimited field of a
// reference identifier.
func RangeMarker(referenceID string) (string, error) {
	fields := strings.SplitN(referenceID, "_", rangeMarkerField+2)
	if len(fields) <= rangeMarkerField {
		return "", &MalformedIdentifierError{ReferenceID: referenceID, Fields: len(fields)}
	}
	return fields[rangeMarkerField], nil
}

// Aggregate derives the range label and total mapped reads of a block.
// Every identifier in the block must carry a range marker.
func Aggregate(block Block) (result GroupedResult, err error) {
	if len(block) == 0 {
		return result, errors.New("cannot aggregate an empty block")
	}
	var first, last string
	for i, row := range block {
		marker, err := RangeMarker(row.ReferenceID)
		if err != nil {
			return GroupedResult{}, err
		}
		if i == 0 {
			first = marker
		}
		last = marker
		result.TotalReads += row.Mapped
	}
	result.RangeLabel = first + "-" + last
	return result, nil
}

// AggregateAll aggregates each block in order. It fails as a whole if
// any block fails.
func AggregateAll(blocks []Block) (GroupedTable, error) {
	table := make(GroupedTable, 0, len(blocks))
	for i, block := range blocks {
		result, err := Aggregate(block)
		if err != nil {
			return nil, fmt.Errorf("%w, in block %v", err, i+1)
		}
		table = append(table, result)
	}
	return table, nil
}

// Group partitions rows into blocks of groupRange rows and aggregates
// each block.
func Group(rows []CanonicalRow, groupRange int) (GroupedTable, error) {
	blocks, err := Partition(rows, groupRange)
	if err != nil {
		return nil, err
	}
	return AggregateAll(blocks)
}

// WriteGrouped writes one "label,total" line per result, without a
// header.
func WriteGrouped(w io.Writer, table GroupedTable) error {
	out := csv.NewWriter(w)
	record := make([]string, 2)
	for _, result := range table {
		record[0] = result.RangeLabel
		record[1] = strconv.FormatInt(result.TotalReads, 10)
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteGroupedFile writes the table to the named file. The content is
// first written to a temporary file in the same directory and then
// renamed, so the named file either holds a complete table or does not
// exist.
func WriteGroupedFile(filename string, table GroupedTable) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(filename), "."+filepath.Base(filename)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()
	buf := bufio.NewWriter(tmp)
	if err = WriteGrouped(buf, table); err == nil {
		err = buf.Flush()
	}
	if nerr := tmp.Close(); err == nil {
		err = nerr
	}
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filename)
}

// GroupFile reads a canonical table, groups its rows, and writes the
// grouped table. Nothing is written if grouping fails.
func GroupFile(canonical string, groupRange int, grouped string) (GroupedTable, error) {
	table, err := ReadCanonicalFile(canonical)
	if err != nil {
		return nil, err
	}
	result, err := Group(table.Rows, groupRange)
	if err != nil {
		return nil, fmt.Errorf("%w, while grouping %v", err, canonical)
	}
	if err = WriteGroupedFile(grouped, result); err != nil {
		return nil, err
	}
	return result, nil
}
