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

package extract

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/exascience/pargo/pipeline"

	"github.com/exascience/groupie/internal"
)

// Native computes idxstats-style read counts without external tools.
// Files with a .bam extension are decoded as BAM, all other files are
// read as SAM text.
type Native struct{}

// Reference is one @SQ entry with its read counts.
type Reference struct {
	Name     string
	Length   int64
	Mapped   int64
	Unmapped int64
}

// Stats holds the read counts of an alignment file, with references in
// header order.
type Stats struct {
	References []Reference
	Unplaced   int64
}

// Format writes the stats in samtools idxstats format.
func (stats *Stats) Format(w io.Writer) error {
	out := bufio.NewWriter(w)
	for _, ref := range stats.References {
		fmt.Fprintf(out, "%v\t%v\t%v\t%v\n", ref.Name, ref.Length, ref.Mapped, ref.Unmapped)
	}
	fmt.Fprintf(out, "*\t0\t0\t%v\n", stats.Unplaced)
	return out.Flush()
}

// Extract implements the Extractor interface.
func (Native) Extract(input, outDir string, threads int) (table string, err error) {
	stats, err := CountFile(input, threads)
	if err != nil {
		return "", &CollaboratorFailureError{Input: input, Step: "count", Err: err}
	}
	table = rawTablePath(outDir)
	f, err := os.Create(table)
	if err != nil {
		return "", &CollaboratorFailureError{Input: input, Step: "write", Err: err}
	}
	err = stats.Format(f)
	if nerr := f.Close(); err == nil {
		err = nerr
	}
	if err != nil {
		return "", &CollaboratorFailureError{Input: input, Step: "write", Err: err}
	}
	return table, nil
}

// CountFile counts the reads of a SAM or BAM file per reference.
func CountFile(filename string, threads int) (stats *Stats, err error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer internal.Close(f, &err)
	if strings.EqualFold(filepath.Ext(filename), ".bam") {
		return CountBAM(f, threads)
	}
	return CountSAM(f)
}

// CountBAM counts the reads of a BAM stream per reference.
func CountBAM(r io.Reader, threads int) (stats *Stats, err error) {
	br, err := bam.NewReader(r, threads)
	if err != nil {
		return nil, err
	}
	defer internal.Close(br, &err)
	refs := br.Header().Refs()
	stats = &Stats{References: make([]Reference, len(refs))}
	for i, ref := range refs {
		stats.References[i] = Reference{Name: ref.Name(), Length: int64(ref.Len())}
	}
	for {
		rec, err := br.Read()
		if err == io.EOF {
			return stats, nil
		} else if err != nil {
			return nil, err
		}
		if rec.Ref == nil || rec.Ref.ID() < 0 {
			stats.Unplaced++
			continue
		}
		ref := &stats.References[rec.Ref.ID()]
		if rec.Flags&sam.Unmapped != 0 {
			ref.Unmapped++
		} else {
			ref.Mapped++
		}
	}
}

const flagUnmapped = 0x4

type samCounts struct {
	mapped, unmapped map[string]int64
	unplaced         int64
}

func newSamCounts() *samCounts {
	return &samCounts{mapped: make(map[string]int64), unmapped: make(map[string]int64)}
}

func (c *samCounts) countLine(line string) error {
	fields := strings.SplitN(line, "\t", 4)
	if len(fields) < 4 {
		return fmt.Errorf("truncated SAM alignment line %q", line)
	}
	flag, err := strconv.ParseUint(fields[1], 10, 16)
	if err != nil {
		return fmt.Errorf("%v, while parsing FLAG of SAM alignment line %q", err, line)
	}
	switch rname := fields[2]; {
	case rname == "*":
		c.unplaced++
	case flag&flagUnmapped != 0:
		c.unmapped[rname]++
	default:
		c.mapped[rname]++
	}
	return nil
}

// parseSQ returns the SN and LN values of an @SQ header line.
func parseSQ(line string) (name string, length int64, err error) {
	for _, field := range strings.Split(line, "\t")[1:] {
		switch {
		case strings.HasPrefix(field, "SN:"):
			name = field[3:]
		case strings.HasPrefix(field, "LN:"):
			if length, err = strconv.ParseInt(field[3:], 10, 64); err != nil {
				return "", 0, fmt.Errorf("%v, while parsing LN of header line %q", err, line)
			}
		}
	}
	if name == "" {
		return "", 0, fmt.Errorf("missing SN in header line %q", line)
	}
	return name, length, nil
}

// parseSamHeader reads the header section of a SAM stream and returns
// its references.
func parseSamHeader(reader *bufio.Reader) (refs []Reference, err error) {
	for {
		switch data, err := reader.Peek(1); {
		case err == io.EOF:
			return refs, nil
		case err != nil:
			return nil, err
		case data[0] != '@':
			return refs, nil
		}
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.HasPrefix(line, "@SQ\t") {
			name, length, err := parseSQ(line)
			if err != nil {
				return nil, err
			}
			refs = append(refs, Reference{Name: name, Length: length})
		}
	}
}

// CountSAM counts the reads of a SAM text stream per reference. The
// alignment section is counted in parallel batches.
func CountSAM(r io.Reader) (*Stats, error) {
	reader := bufio.NewReader(r)
	refs, err := parseSamHeader(reader)
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(refs))
	for i, ref := range refs {
		index[ref.Name] = i
	}
	stats := &Stats{References: refs}

	var p pipeline.Pipeline
	p.Source(pipeline.NewScanner(reader))
	p.Add(pipeline.LimitedPar(0, pipeline.Receive(func(_ int, data interface{}) interface{} {
		counts := newSamCounts()
		for _, line := range data.([]string) {
			if line == "" {
				continue
			}
			if err := counts.countLine(line); err != nil {
				p.SetErr(err)
				return counts
			}
		}
		return counts
	})))
	p.Add(pipeline.Seq(pipeline.Receive(func(_ int, data interface{}) interface{} {
		counts := data.(*samCounts)
		stats.Unplaced += counts.unplaced
		for name, n := range counts.mapped {
			if i, ok := index[name]; ok {
				stats.References[i].Mapped += n
			} else {
				p.SetErr(unknownReference(name))
			}
		}
		for name, n := range counts.unmapped {
			if i, ok := index[name]; ok {
				stats.References[i].Unmapped += n
			} else {
				p.SetErr(unknownReference(name))
			}
		}
		return data
	})))
	p.Run()
	if err = p.Err(); err != nil {
		return nil, err
	}
	return stats, nil
}

func unknownReference(name string) error {
	return errors.New("alignment refers to reference " + name + " missing from the SAM header")
}
