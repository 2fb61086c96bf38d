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

// State is the processing state of one input file.
type State int

// Files move forward through Pending, Extracting, Cleaning and
// Grouping to Done. Failed is reachable from every state except Done.
const (
	Pending State = iota
	Extracting
	Cleaning
	Grouping
	Done
	Failed
)

var stateNames = [...]string{"pending", "extracting", "cleaning", "grouping", "done", "failed"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
