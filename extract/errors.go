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

import "fmt"

// A CollaboratorFailureError reports that an extraction step did not
// produce the expected output.
type CollaboratorFailureError struct {
	Input string
	Step  string
	Err   error
}

func (e *CollaboratorFailureError) Error() string {
	return fmt.Sprintf("extraction step %v failed for %v: %v", e.Step, e.Input, e.Err)
}

func (e *CollaboratorFailureError) Unwrap() error {
	return e.Err
}
