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

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/groupie/distro"
)

const testSam = "@HD\tVN:1.6\tSO:unsorted\n" +
	"@SQ\tSN:chrX_rep_CAG_1\tLN:300\n" +
	"@SQ\tSN:chrX_rep_CAG_2\tLN:303\n" +
	"@SQ\tSN:chrX_rep_CAG_3\tLN:306\n" +
	"@PG\tID:test\n" +
	"r1\t0\tchrX_rep_CAG_1\t1\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"r2\t16\tchrX_rep_CAG_1\t5\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"r3\t0\tchrX_rep_CAG_3\t1\t60\t4M\t*\t0\t0\tACGT\tIIII\n" +
	"r4\t4\tchrX_rep_CAG_3\t1\t0\t*\t*\t0\t0\tACGT\tIIII\n" +
	"r5\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII\n" +
	"r6\t4\t*\t0\t0\t*\t*\t0\t0\tACGT\tIIII\n"

const testIdxstats = "chrX_rep_CAG_1\t300\t2\t0\n" +
	"chrX_rep_CAG_2\t303\t0\t0\n" +
	"chrX_rep_CAG_3\t306\t1\t1\n" +
	"*\t0\t0\t2\n"

func TestCountSAM(t *testing.T) {
	stats, err := CountSAM(strings.NewReader(testSam))
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		References: []Reference{
			{Name: "chrX_rep_CAG_1", Length: 300, Mapped: 2},
			{Name: "chrX_rep_CAG_2", Length: 303},
			{Name: "chrX_rep_CAG_3", Length: 306, Mapped: 1, Unmapped: 1},
		},
		Unplaced: 2,
	}, stats)
}

func TestCountSAMUnknownReference(t *testing.T) {
	_, err := CountSAM(strings.NewReader(testSam + "r7\t0\tchrY\t1\t60\t4M\t*\t0\t0\tACGT\tIIII\n"))
	assert.Error(t, err)
}

func TestCountSAMTruncatedLine(t *testing.T) {
	_, err := CountSAM(strings.NewReader(testSam + "r7\t0\n"))
	assert.Error(t, err)
}

func TestNativeExtract(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.sam")
	require.NoError(t, os.WriteFile(input, []byte(testSam), 0600))

	table, err := Native{}.Extract(input, dir, 1)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, distro.RawTableName), table)
	content, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Equal(t, testIdxstats, string(content))

	rows, err := distro.ReadRawTable(table)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestNativeExtractMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := Native{}.Extract(filepath.Join(dir, "missing.sam"), dir, 1)
	var failure *CollaboratorFailureError
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "count", failure.Step)
}

func writeTestBam(t *testing.T, filename string) {
	t.Helper()
	var refs []*sam.Reference
	for _, name := range []string{"chrX_rep_CAG_1", "chrX_rep_CAG_2"} {
		ref, err := sam.NewReference(name, "", "", 300, nil, nil)
		require.NoError(t, err)
		refs = append(refs, ref)
	}
	header, err := sam.NewHeader(nil, refs)
	require.NoError(t, err)

	f, err := os.Create(filename)
	require.NoError(t, err)
	w, err := bam.NewWriter(f, header, 1)
	require.NoError(t, err)

	records := []struct {
		ref   *sam.Reference
		pos   int
		flags sam.Flags
	}{
		{refs[0], 0, 0},
		{refs[0], 10, sam.Reverse},
		{refs[1], 5, 0},
		{refs[1], 5, sam.Unmapped},
		{nil, -1, sam.Unmapped},
	}
	for i, r := range records {
		rec, err := sam.NewRecord(string(rune('a'+i)), r.ref, nil, r.pos, -1, 0, 0, nil, []byte("A"), nil, nil)
		require.NoError(t, err)
		rec.Flags = r.flags
		require.NoError(t, w.Write(rec))
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestCountBAM(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "sample.bam")
	writeTestBam(t, filename)

	stats, err := CountFile(filename, 1)
	require.NoError(t, err)
	assert.Equal(t, &Stats{
		References: []Reference{
			{Name: "chrX_rep_CAG_1", Length: 300, Mapped: 2},
			{Name: "chrX_rep_CAG_2", Length: 300, Mapped: 1, Unmapped: 1},
		},
		Unplaced: 1,
	}, stats)
}

func TestNativeExtractBAM(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "sample.BAM")
	writeTestBam(t, input)

	table, err := Native{}.Extract(input, dir, 1)
	require.NoError(t, err)
	content, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Equal(t, "chrX_rep_CAG_1\t300\t2\t0\n"+
		"chrX_rep_CAG_2\t300\t1\t1\n"+
		"*\t0\t0\t1\n", string(content))
}

// fakeSamtools is a shell script that mimics the samtools subcommands
// used by Samtools: view and sort pass their input through, index
// creates an empty index, and idxstats prints the sorted file.
const fakeSamtools = `#!/bin/sh
case "$1" in
view) cat "$5" ;;
sort) cat > "$5" ;;
index) : > "$2.bai" ;;
idxstats) cat "$2" ;;
*) exit 1 ;;
esac
`

func writeScript(t *testing.T, dir, content string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported")
	}
	name := filepath.Join(dir, "samtools")
	require.NoError(t, os.WriteFile(name, []byte(content), 0700))
	return name
}

func TestSamtoolsExtract(t *testing.T) {
	dir := t.TempDir()
	s := Samtools{Binary: writeScript(t, dir, fakeSamtools)}
	require.NoError(t, s.CheckAvailable())

	input := filepath.Join(dir, "sample.sam")
	require.NoError(t, os.WriteFile(input, []byte(testIdxstats), 0600))
	outDir := filepath.Join(dir, "out")
	require.NoError(t, os.Mkdir(outDir, 0700))

	table, err := s.Extract(input, outDir, 2)
	require.NoError(t, err)
	content, err := os.ReadFile(table)
	require.NoError(t, err)
	assert.Equal(t, testIdxstats, string(content))
	assert.FileExists(t, filepath.Join(outDir, SortedAlignmentName))
	assert.FileExists(t, filepath.Join(outDir, SortedAlignmentName+".bai"))
}

func TestSamtoolsExtractFailure(t *testing.T) {
	dir := t.TempDir()
	s := Samtools{Binary: writeScript(t, dir, "#!/bin/sh\necho broken >&2\nexit 3\n")}
	input := filepath.Join(dir, "sample.sam")
	require.NoError(t, os.WriteFile(input, []byte(testSam), 0600))

	_, err := s.Extract(input, dir, 1)
	var failure *CollaboratorFailureError
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, input, failure.Input)
	assert.Contains(t, err.Error(), "broken")
}

func TestSamtoolsEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	s := Samtools{Binary: writeScript(t, dir, fakeSamtools)}
	input := filepath.Join(dir, "empty.sam")
	require.NoError(t, os.WriteFile(input, nil, 0600))

	_, err := s.Extract(input, dir, 1)
	var failure *CollaboratorFailureError
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, "sort", failure.Step)
}

func TestSamtoolsMissingBinary(t *testing.T) {
	s := Samtools{Binary: filepath.Join(t.TempDir(), "no-such-samtools")}
	assert.Error(t, s.CheckAvailable())
}
