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

package internal

import (
	"io"
	"os"
	"path/filepath"
	"sort"
)

// Directory returns the sorted names of the entries of the given
// directory. If file is not a directory, it returns just its base name.
func Directory(file string) (files []string, isDir bool, err error) {
	info, err := os.Stat(file)
	if err != nil {
		return nil, false, err
	}
	if !info.IsDir() {
		return []string{filepath.Base(file)}, false, nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, true, err
	}
	defer Close(f, &err)
	files, err = f.Readdirnames(0)
	sort.Strings(files)
	return files, true, err
}

// FullPathname returns filename as an absolute path.
func FullPathname(filename string) (string, error) {
	if filepath.IsAbs(filename) {
		return filename, nil
	}
	wd, err := os.Getwd()
	return filepath.Join(wd, filename), err
}

// Close closes c and stores its error in *err, unless *err already
// holds an error. Meant to be deferred.
func Close(c io.Closer, err *error) {
	if nerr := c.Close(); nerr != nil && *err == nil {
		*err = nerr
	}
}
