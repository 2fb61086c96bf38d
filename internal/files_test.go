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
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"c.sam", "a.sam", "b.bam"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0600))
	}

	files, isDir, err := Directory(dir)
	require.NoError(t, err)
	assert.True(t, isDir)
	assert.Equal(t, []string{"a.sam", "b.bam", "c.sam"}, files)

	files, isDir, err = Directory(filepath.Join(dir, "b.bam"))
	require.NoError(t, err)
	assert.False(t, isDir)
	assert.Equal(t, []string{"b.bam"}, files)

	_, _, err = Directory(filepath.Join(dir, "missing"))
	assert.True(t, os.IsNotExist(err))
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestClose(t *testing.T) {
	var err error
	Close(closer{}, &err)
	assert.NoError(t, err)

	closeErr := errors.New("close failed")
	Close(closer{closeErr}, &err)
	assert.Equal(t, closeErr, err)

	first := errors.New("first")
	err = first
	Close(closer{closeErr}, &err)
	assert.Equal(t, first, err)
}
