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

package distro

import (
	"errors"
	"fmt"
)

// ErrNonPositiveRange is returned when a group range is zero or negative.
var ErrNonPositiveRange = errors.New("group range must be a positive integer")

// A MalformedTableError reports a count table line that does not
// parse into a well-formed row.
type MalformedTableError struct {
	Line   string
	Reason string
	Err    error
}

func (e *MalformedTableError) Error() string {
	msg := "malformed count table"
	if e.Line != "" {
		msg += fmt.Sprintf(" line %q", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += fmt.Sprintf(" (%v)", e.Err)
	}
	return msg
}

func (e *MalformedTableError) Unwrap() error {
	return e.Err
}

// An UnevenGroupingError reports a row count that the requested group
// range does not evenly divide.
type UnevenGroupingError struct {
	Rows  int
	Range int
}

func (e *UnevenGroupingError) Error() string {
	return fmt.Sprintf("group range %v does not evenly divide row count %v", e.Range, e.Rows)
}

// A MalformedIdentifierError reports a reference identifier with fewer
// underscore-delimited fields than needed to derive a range marker.
type MalformedIdentifierError struct {
	ReferenceID string
	Fields      int
}

func (e *MalformedIdentifierError) Error() string {
	return fmt.Sprintf("reference identifier %q has %v underscore-delimited fields, range marker needs at least %v",
		e.ReferenceID, e.Fields, rangeMarkerField+1)
}
