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
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/exascience/groupie/internal"
)

// SortedAlignmentName is the file name of the sorted BAM file that
// Samtools leaves in the output directory.
const SortedAlignmentName = "sorted_assembly.bam"

// Samtools extracts read counts with the samtools binary.
type Samtools struct {
	// Binary is the samtools executable; "samtools" if empty.
	Binary string
}

func (s Samtools) binary() string {
	if s.Binary == "" {
		return "samtools"
	}
	return s.Binary
}

// CheckAvailable reports an error if the samtools binary cannot be
// found.
func (s Samtools) CheckAvailable() error {
	if _, err := exec.LookPath(s.binary()); err != nil {
		return fmt.Errorf("samtools binary missing: %w", err)
	}
	return nil
}

// Extract converts and sorts input into a BAM file, indexes it, and
// stores its idxstats output in outDir.
func (s Samtools) Extract(input, outDir string, threads int) (string, error) {
	bin := s.binary()
	nr := strconv.Itoa(threads)
	sorted := filepath.Join(outDir, SortedAlignmentName)

	if err := s.viewSort(input, sorted, nr); err != nil {
		return "", err
	}
	if err := internal.RunCmd(exec.Command(bin, "index", sorted)); err != nil {
		return "", &CollaboratorFailureError{Input: input, Step: "index", Err: err}
	}

	table := rawTablePath(outDir)
	if err := s.idxstats(sorted, table); err != nil {
		return "", &CollaboratorFailureError{Input: input, Step: "idxstats", Err: err}
	}
	return table, nil
}

// viewSort runs "samtools view -bS input | samtools sort -o sorted -".
func (s Samtools) viewSort(input, sorted, nr string) error {
	bin := s.binary()
	view := exec.Command(bin, "view", "-bS", "-@", nr, input)
	sort := exec.Command(bin, "sort", "-@", nr, "-o", sorted, "-")

	r, w, err := os.Pipe()
	if err != nil {
		return &CollaboratorFailureError{Input: input, Step: "view", Err: err}
	}
	var viewErr, sortErr bytes.Buffer
	view.Stdout, view.Stderr = w, &viewErr
	sort.Stdin, sort.Stderr = r, &sortErr

	if err = view.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		return &CollaboratorFailureError{Input: input, Step: "view", Err: err}
	}
	if err = sort.Start(); err != nil {
		_ = r.Close()
		_ = w.Close()
		_ = view.Process.Kill()
		_ = view.Wait()
		return &CollaboratorFailureError{Input: input, Step: "sort", Err: err}
	}
	// the children hold their own copies of the pipe ends
	_ = r.Close()
	_ = w.Close()

	sortWait := sort.Wait()
	viewWait := view.Wait()
	if viewWait != nil {
		return &CollaboratorFailureError{Input: input, Step: "view", Err: internal.CmdError(viewWait, &viewErr)}
	}
	if sortWait != nil {
		return &CollaboratorFailureError{Input: input, Step: "sort", Err: internal.CmdError(sortWait, &sortErr)}
	}
	if err = checkOutput(sorted); err != nil {
		return &CollaboratorFailureError{Input: input, Step: "sort", Err: err}
	}
	return nil
}

func (s Samtools) idxstats(sorted, table string) (err error) {
	f, err := os.Create(table)
	if err != nil {
		return err
	}
	cmd := exec.Command(s.binary(), "idxstats", sorted)
	cmd.Stdout = f
	err = internal.RunCmd(cmd)
	if nerr := f.Close(); err == nil {
		err = nerr
	}
	if err != nil {
		return err
	}
	return checkOutput(table)
}

func checkOutput(filename string) error {
	info, err := os.Stat(filename)
	if err != nil {
		return err
	}
	if info.Size() == 0 {
		return errors.New("empty output file " + filename)
	}
	return nil
}
