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

// groupie batches the read-count distributions of SAM/BAM files into
// fixed-size ranges.
//
// For every input file, groupie extracts per-reference read counts
// (with samtools idxstats, or natively), writes a cleaned count table,
// and sums the mapped read counts of consecutive references into
// groups. The range of a group is labeled with the fourth
// underscore-delimited field of the identifiers of its first and last
// reference.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/exascience/groupie/cmd"
)

func printHelp() {
	fmt.Fprintln(os.Stderr, "Available commands: run, group, clean")
	fmt.Fprint(os.Stderr, "\n", cmd.RunHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.GroupHelp)
	fmt.Fprint(os.Stderr, "\n", cmd.CleanHelp)
}

func main() {
	fmt.Fprintln(os.Stderr, cmd.ProgramMessage)
	if len(os.Args) < 2 {
		log.Println("Incorrect number of parameters.")
		fmt.Fprint(os.Stderr, cmd.HelpMessage, "\n")
		printHelp()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "run":
		err = cmd.Run()
	case "group":
		err = cmd.Group()
	case "clean":
		err = cmd.Clean()
	case "help", "-help", "--help", "-h", "--h":
		printHelp()
	default:
		log.Println("Unknown command", os.Args[1])
		printHelp()
		os.Exit(1)
	}
	if err != nil {
		var usage *cmd.UsageError
		if errors.As(err, &usage) {
			log.Println(err)
			os.Exit(1)
		}
		log.Println("Fatal error:", err)
		os.Exit(2)
	}
}
