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
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/exascience/groupie/internal"
)

// CanonicalRow is a cleaned read-count row. Flag is reserved and
// always 0.
type CanonicalRow struct {
	ReferenceID    string
	SequenceLength int64
	Mapped         int64
	Flag           int
}

// CanonicalTable is the persisted form of a cleaned read-count table.
type CanonicalTable struct {
	SampleName string
	Rows       []CanonicalRow
}

// File names of the per-sample artifacts.
const (
	RawTableName       = "raw_repeatdistro.csv"
	CanonicalTableName = "cln_repeatdistro.csv"
	GroupedTableName   = "grouped_distribution.csv"
)

// canonicalColumns is the number of count columns announced in the
// summary line.
const canonicalColumns = 3

// SampleName returns the base name of the given file up to its first
// dot, which names the per-sample output directory.
func SampleName(filename string) string {
	base := filepath.Base(filename)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		return base[:i]
	}
	return base
}

// Clean maps raw rows to canonical rows, one to one and in order.
func Clean(raw []RawRow) []CanonicalRow {
	rows := make([]CanonicalRow, len(raw))
	for i, r := range raw {
		rows[i] = CanonicalRow{
			ReferenceID:    r.ReferenceID,
			SequenceLength: r.SequenceLength,
			Mapped:         r.Mapped,
		}
	}
	return rows
}

// WriteCanonical writes the summary line followed by one line per row.
func WriteCanonical(w io.Writer, table *CanonicalTable) error {
	out := csv.NewWriter(w)
	if err := out.Write([]string{
		strconv.Itoa(len(table.Rows)),
		strconv.Itoa(canonicalColumns),
		table.SampleName,
	}); err != nil {
		return err
	}
	record := make([]string, 4)
	for _, row := range table.Rows {
		record[0] = row.ReferenceID
		record[1] = strconv.FormatInt(row.SequenceLength, 10)
		record[2] = strconv.FormatInt(row.Mapped, 10)
		record[3] = strconv.Itoa(row.Flag)
		if err := out.Write(record); err != nil {
			return err
		}
	}
	out.Flush()
	return out.Error()
}

// WriteCanonicalFile writes the table to the named file.
func WriteCanonicalFile(filename string, table *CanonicalTable) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(f, &err)
	buf := bufio.NewWriter(f)
	if err = WriteCanonical(buf, table); err != nil {
		return err
	}
	return buf.Flush()
}

// ReadCanonical parses a canonical table. The row count in the summary
// line is informational only; the data lines are authoritative.
func ReadCanonical(r io.Reader) (*CanonicalTable, error) {
	in := csv.NewReader(r)
	in.FieldsPerRecord = -1
	in.ReuseRecord = true
	header, err := in.Read()
	if err == io.EOF {
		return nil, &MalformedTableError{Reason: "missing summary line"}
	} else if err != nil {
		return nil, &MalformedTableError{Reason: "unreadable summary line", Err: err}
	}
	if len(header) != 3 {
		return nil, &MalformedTableError{
			Line:   strings.Join(header, ","),
			Reason: fmt.Sprintf("summary line has %v fields, expected 3", len(header)),
		}
	}
	table := &CanonicalTable{SampleName: header[2]}
	for {
		record, err := in.Read()
		if err == io.EOF {
			return table, nil
		} else if err != nil {
			return nil, &MalformedTableError{Reason: "unreadable data line", Err: err}
		}
		row, err := parseCanonicalRecord(record)
		if err != nil {
			return nil, err
		}
		table.Rows = append(table.Rows, row)
	}
}

func parseCanonicalRecord(record []string) (row CanonicalRow, err error) {
	line := strings.Join(record, ",")
	if len(record) != 4 {
		return row, &MalformedTableError{
			Line:   line,
			Reason: fmt.Sprintf("expected 4 comma-separated fields, found %v", len(record)),
		}
	}
	row.ReferenceID = record[0]
	if row.SequenceLength, err = strconv.ParseInt(record[1], 10, 64); err != nil {
		return row, &MalformedTableError{Line: line, Reason: "sequence length is not an integer", Err: err}
	}
	if row.Mapped, err = strconv.ParseInt(record[2], 10, 64); err != nil {
		return row, &MalformedTableError{Line: line, Reason: "mapped read count is not an integer", Err: err}
	}
	if row.Flag, err = strconv.Atoi(record[3]); err != nil {
		return row, &MalformedTableError{Line: line, Reason: "flag is not an integer", Err: err}
	}
	return row, nil
}

// ReadCanonicalFile parses the canonical table stored in the named file.
func ReadCanonicalFile(filename string) (table *CanonicalTable, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	if table, err = ReadCanonical(bufio.NewReader(f)); err != nil {
		return nil, fmt.Errorf("%w, while reading canonical table %v", err, filename)
	}
	return table, nil
}

// CleanFile reads a raw read-count table and writes its canonical form
// for the given sample.
func CleanFile(raw, canonical, sample string) (*CanonicalTable, error) {
	rows, err := ReadRawTable(raw)
	if err != nil {
		return nil, err
	}
	table := &CanonicalTable{SampleName: sample, Rows: Clean(rows)}
	if err = WriteCanonicalFile(canonical, table); err != nil {
		return nil, err
	}
	return table, nil
}
