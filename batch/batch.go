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

// Package batch runs the extraction, cleaning and grouping of read
// counts over one or more alignment files.
//
// Files are processed one at a time, in name order. With a single input
// file any failure ends the run. With a directory of input files, a
// failing file is recorded in the report and skipped, and its partial
// artifacts stay in its output directory; a grouped table is only ever
// written for a file that succeeds completely.
package batch

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/exascience/groupie/distro"
	"github.com/exascience/groupie/internal"
)

// ErrNoneGrouped is returned when no input file of a multi-file run
// could be grouped.
var ErrNoneGrouped = errors.New("no input file was grouped successfully")

// Alignment file extensions accepted as input.
const (
	SamExt = ".sam"
	BamExt = ".bam"
)

func isAlignmentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case SamExt, BamExt:
		return true
	default:
		return false
	}
}

// Discover returns the absolute paths of the input files. single is
// true if input names a file rather than a directory.
func Discover(input string) (inputs []string, single bool, err error) {
	names, isDir, err := internal.Directory(input)
	if err != nil {
		return nil, false, &ConfigError{Msg: "cannot access input " + input, Err: err}
	}
	if !isDir {
		if !isAlignmentFile(input) {
			return nil, false, configErrorf("input file %v is not a .sam or .bam file", input)
		}
		full, err := internal.FullPathname(input)
		if err != nil {
			return nil, false, &ConfigError{Msg: "cannot resolve input " + input, Err: err}
		}
		return []string{full}, true, nil
	}
	for _, name := range names {
		if !isAlignmentFile(name) {
			continue
		}
		full, err := internal.FullPathname(filepath.Join(input, name))
		if err != nil {
			return nil, false, &ConfigError{Msg: "cannot resolve input " + name, Err: err}
		}
		if info, err := os.Stat(full); err == nil && info.Mode().IsRegular() {
			inputs = append(inputs, full)
		}
	}
	if len(inputs) == 0 {
		return nil, false, configErrorf("no .sam or .bam files in input directory %v", input)
	}
	samples := make(map[string]string, len(inputs))
	for _, full := range inputs {
		sample := distro.SampleName(full)
		if other, ok := samples[sample]; ok {
			return nil, false, configErrorf("input files %v and %v share the output directory name %v", other, full, sample)
		}
		samples[sample] = full
	}
	return inputs, false, nil
}

// RunDirName returns the name of the run directory for a run started
// at the given time.
func RunDirName(t time.Time) string {
	return "GroupieRun" + t.Format("02-01-2006") + "-" + t.Format("150405")
}

func createRunDir(root string, t time.Time) (string, error) {
	if err := os.MkdirAll(root, 0700); err != nil {
		return "", &ConfigError{Msg: "cannot create output root", Err: err}
	}
	dir := filepath.Join(root, RunDirName(t))
	if err := os.Mkdir(dir, 0700); err != nil {
		return "", &ConfigError{Msg: "cannot create run directory", Err: err}
	}
	return dir, nil
}

// Run processes the input files of cfg. The returned report is nil only
// if the run could not start. In single-file mode, the error of the
// file is returned. In multi-file mode, file errors are only recorded
// in the report, and ErrNoneGrouped is returned if all files failed.
func Run(cfg Config) (*Report, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	inputs, single, err := Discover(cfg.Input)
	if err != nil {
		return nil, err
	}
	if single {
		log.Println("Grouping an individual file.")
	} else {
		log.Println("Grouping", len(inputs), "files.")
	}
	runDir, err := createRunDir(cfg.OutputRoot, cfg.Now())
	if err != nil {
		return nil, err
	}
	report := &Report{
		RunID:  uuid.New(),
		RunDir: runDir,
		Single: single,
		Files:  make([]FileResult, len(inputs)),
	}
	log.Println("Run", report.RunID, "writing to", runDir)
	for i, input := range inputs {
		report.Files[i] = FileResult{Input: input, Sample: distro.SampleName(input)}
	}

	var fatal error
	for i := range report.Files {
		file := &report.Files[i]
		if err := processFile(&cfg, runDir, file); err != nil {
			log.Println(err)
			if single {
				fatal = err
				break
			}
		}
	}

	if err := report.WriteSummary(filepath.Join(runDir, SummaryName)); err != nil && fatal == nil {
		fatal = err
	}
	if fatal == nil && report.Done() == 0 {
		fatal = ErrNoneGrouped
	}
	log.Printf("Output saved to %v (%v of %v files grouped).\n", runDir, report.Done(), len(report.Files))
	return report, fatal
}

func setState(file *FileResult, state State) {
	file.State = state
	log.Printf("%v: %v\n", file.Sample, state)
}

// processFile moves one file through extraction, cleaning and grouping.
func processFile(cfg *Config, runDir string, file *FileResult) (err error) {
	defer func() {
		if err != nil {
			err = &FileError{Input: file.Input, State: file.State, Err: err}
			file.Err = err
			setState(file, Failed)
		}
	}()

	setState(file, Extracting)
	file.OutDir = filepath.Join(runDir, file.Sample)
	if err = os.Mkdir(file.OutDir, 0700); err != nil {
		return err
	}
	raw, err := cfg.Extractor.Extract(file.Input, file.OutDir, cfg.Threads)
	if err != nil {
		return err
	}

	setState(file, Cleaning)
	canonical := filepath.Join(file.OutDir, distro.CanonicalTableName)
	if _, err = distro.CleanFile(raw, canonical, file.Sample); err != nil {
		return err
	}

	setState(file, Grouping)
	table, err := distro.GroupFile(canonical, cfg.GroupRange, filepath.Join(file.OutDir, distro.GroupedTableName))
	if err != nil {
		return err
	}
	log.Printf("%v: %v groups of %v rows\n", file.Sample, len(table), cfg.GroupRange)
	setState(file, Done)
	return nil
}
