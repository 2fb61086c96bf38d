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

package cmd

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"

	"github.com/exascience/groupie/batch"
	"github.com/exascience/groupie/extract"
)

// RunHelp is the help string for this command.
const RunHelp = "run parameters:\n" +
	"groupie run (sam-file | /path/to/input/)\n" +
	"[--range nr]\n" +
	"[--output /path/to/output/]\n" +
	"[--nr-of-threads nr]\n" +
	"[--extractor [samtools | native]]\n" +
	"[--samtools path]\n" +
	"[--timed]\n" +
	"[--profile /path/to/profile/]\n" +
	"[--log-path path]\n"

// Run implements the groupie run command.
func Run() error {
	var (
		output, extractorName, samtoolsPath, profilePath, logPath string
		groupRange, nrOfThreads                                   int
		timed                                                     bool
	)

	var flags flag.FlagSet

	flags.IntVar(&groupRange, "range", 10, "number of consecutive rows summed per group")
	flags.StringVar(&output, "output", filepath.Join(homeDir(), "Groupie"), "root directory for run output")
	flags.IntVar(&nrOfThreads, "nr-of-threads", runtime.NumCPU(), "number of worker threads for extraction")
	flags.StringVar(&extractorName, "extractor", "samtools", "read count extraction method")
	flags.StringVar(&samtoolsPath, "samtools", "samtools", "samtools binary")
	flags.BoolVar(&timed, "timed", false, "measure the runtime")
	flags.StringVar(&profilePath, "profile", "", "write a CPU profile to the given directory")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")

	parseFlags(&flags, 3, RunHelp)

	input := getFilename(os.Args[2], RunHelp)

	// sanity checks

	if !checkExist("", input) {
		return usageErrorf(RunHelp, "input %v not accessible", input)
	}

	var extractor extract.Extractor
	switch extractorName {
	case "samtools":
		extractor = extract.Samtools{Binary: samtoolsPath}
	case "native":
		extractor = extract.Native{}
	default:
		return usageErrorf(RunHelp, "unknown extractor %v", extractorName)
	}

	if groupRange <= 0 {
		return usageErrorf(RunHelp, "invalid range %v", groupRange)
	}

	if _, err := setLogOutput(logPath); err != nil {
		return err
	}

	// building output command line

	var command bytes.Buffer
	fmt.Fprint(&command, os.Args[0], " run ", input)
	fmt.Fprint(&command, " --range ", groupRange)
	fmt.Fprint(&command, " --output ", output)
	fmt.Fprint(&command, " --nr-of-threads ", nrOfThreads)
	fmt.Fprint(&command, " --extractor ", extractorName)
	if extractorName == "samtools" {
		fmt.Fprint(&command, " --samtools ", samtoolsPath)
	}
	if timed {
		fmt.Fprint(&command, " --timed")
	}
	if profilePath != "" {
		fmt.Fprint(&command, " --profile ", profilePath)
	}
	if logPath != "" {
		fmt.Fprint(&command, " --log-path ", logPath)
	}

	// executing command

	log.Println("Executing command:\n", command.String())

	return timedRun(timed, profilePath, "Processing read count distributions.", func() error {
		report, err := batch.Run(batch.Config{
			Input:      input,
			OutputRoot: output,
			GroupRange: groupRange,
			Threads:    nrOfThreads,
			Extractor:  extractor,
		})
		if report != nil {
			for _, file := range report.Failed() {
				log.Println("Skipped", file.Input+":", file.Err)
			}
		}
		return err
	})
}
