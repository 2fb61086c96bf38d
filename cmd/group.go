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

// GroupHelp is the help string for this command.
const GroupHelp = "group parameters:\n" +
	"groupie group cln_repeatdistro.csv grouped_distribution.csv\n" +
	"[--range nr]\n" +
	"[--log-path path]\n"

// Group implements the groupie group command. It regroups an existing
// canonical table, without extracting read counts again.
func Group() error {
	var (
		logPath    string
		groupRange int
	)

	var flags flag.FlagSet
	flags.IntVar(&groupRange, "range", 10, "number of consecutive rows summed per group")
	flags.StringVar(&logPath, "log-path", "", "write log files to the specified directory")
	parseFlags(&flags, 4, GroupHelp)

	input := getFilename(os.Args[2], GroupHelp)
	output := getFilename(os.Args[3], GroupHelp)

	if !checkExist("", input) {
		return usageErrorf(GroupHelp, "input %v not accessible", input)
	}
	if groupRange <= 0 {
		return usageErrorf(GroupHelp, "invalid range %v", groupRange)
	}

	if _, err := setLogOutput(logPath); err != nil {
		return err
	}

	table, err := distro.GroupFile(input, groupRange, output)
	if err != nil {
		return err
	}
	log.Printf("Wrote %v groups to %v.\n", len(table), output)
	return nil
}
