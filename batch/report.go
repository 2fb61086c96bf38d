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

package batch

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/exascience/groupie/internal"
)

// SummaryName is the file name of the run summary in the run directory.
const SummaryName = "run_summary.csv"

// A FileError wraps the error that stopped the processing of one
// input file, together with the state the file was in.
type FileError struct {
	Input string
	State State
	Err   error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%v, while %v %v", e.Err, e.State, e.Input)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Input  string
	Sample string
	OutDir string
	State  State
	Err    error
}

// A Report describes a run.
type Report struct {
	RunID  uuid.UUID
	RunDir string
	Single bool
	Files  []FileResult
}

// Done returns the number of files that were grouped successfully.
func (r *Report) Done() (n uint) {
	for _, file := range r.Files {
		if file.State == Done {
			n++
		}
	}
	return n
}

// IsDone reports whether the i-th input file was grouped successfully.
func (r *Report) IsDone(i int) bool {
	return r.Files[i].State == Done
}

// Failed returns the results of the files that could not be grouped.
func (r *Report) Failed() (failed []FileResult) {
	for i, file := range r.Files {
		if !r.IsDone(i) {
			failed = append(failed, file)
		}
	}
	return failed
}

// WriteSummary writes one line per input file with its final state.
func (r *Report) WriteSummary(filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer internal.Close(f, &err)
	buf := bufio.NewWriter(f)
	out := csv.NewWriter(buf)
	if err = out.Write([]string{"run_id", "input", "sample", "state", "error"}); err != nil {
		return err
	}
	id := r.RunID.String()
	for _, file := range r.Files {
		var msg string
		if file.Err != nil {
			msg = file.Err.Error()
		}
		if err = out.Write([]string{id, file.Input, file.Sample, file.State.String(), msg}); err != nil {
			return err
		}
	}
	out.Flush()
	if err = out.Error(); err != nil {
		return err
	}
	return buf.Flush()
}
