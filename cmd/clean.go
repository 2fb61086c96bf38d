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
	"flag"
	"log"
	"os"

	"github.com/exascience/groupie/distro"
)

// CleanHelp is the help string for this command.
const CleanHelp = "clean parameters:\n" +
	"groupie clean raw_repeatdistro.csv cln_repeatdistro.csv\n" +
	"[--sample name]\n" +
	"[--log-path path]\n"

// Clean implements the groupie clean command. It converts an idxstats
// table into the canonical table that the group command reads.
func Clean() error {
	var logPath, sample string

	var flags flag.FlagSet
	flags.StringVar(&sample, "sample", "", "sample name for the summary line")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 4, CleanHelp)

	input := getFilename(os.Args[2], CleanHelp)
	output := getFilename(os.Args[3], CleanHelp)

	if !checkExist("", input) {
		return usageErrorf(CleanHelp, "input %v not accessible", input)
	}
	if sample == "" {
		sample = distro.SampleName(input)
	}

	if _, err := setLogOutput(logPath); err != nil {
		return err
	}

	table, err := distro.CleanFile(input, output, sample)
	if err != nil {
		return err
	}
	log.Printf("Wrote %v rows to %v.\n", len(table.Rows), output)
	return nil
}
