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
	"fmt"
	"runtime"
	"time"

	"github.com/exascience/groupie/extract"
)

// Config holds everything a run needs. There are no package-level
// defaults; callers fill in every field except Extractor and Now.
type Config struct {
	// Input is a .sam/.bam file, or a directory of such files.
	Input string
	// OutputRoot is the directory under which the run directory is
	// created.
	OutputRoot string
	// GroupRange is the number of consecutive rows summed per group.
	GroupRange int
	// Threads is passed on to the extractor.
	Threads int
	// Extractor defaults to extract.Samtools{}.
	Extractor extract.Extractor
	// Now defaults to time.Now and names the run directory.
	Now func() time.Time
}

// A ConfigError reports an invalid configuration or run environment.
// It is always fatal, also in multi-file mode.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configErrorf(format string, v ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, v...)}
}

func (cfg *Config) validate() error {
	if cfg.Input == "" {
		return configErrorf("missing input")
	}
	if cfg.OutputRoot == "" {
		return configErrorf("missing output root")
	}
	if cfg.GroupRange <= 0 {
		return configErrorf("invalid group range %v", cfg.GroupRange)
	}
	if cfg.Threads <= 0 || cfg.Threads > runtime.NumCPU() {
		return configErrorf("invalid number of threads %v, must be between 1 and %v", cfg.Threads, runtime.NumCPU())
	}
	if cfg.Extractor == nil {
		cfg.Extractor = extract.Samtools{}
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if checker, ok := cfg.Extractor.(interface{ CheckAvailable() error }); ok {
		if err := checker.CheckAvailable(); err != nil {
			return &ConfigError{Msg: "extractor unavailable", Err: err}
		}
	}
	return nil
}
