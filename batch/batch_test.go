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
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exascience/groupie/distro"
	"github.com/exascience/groupie/extract"
)

// copyExtractor treats its input as an already extracted read-count
// table.
type copyExtractor struct{}

func (copyExtractor) Extract(input, outDir string, _ int) (string, error) {
	content, err := os.ReadFile(input)
	if err != nil {
		return "", &extract.CollaboratorFailureError{Input: input, Step: "copy", Err: err}
	}
	table := filepath.Join(outDir, distro.RawTableName)
	return table, os.WriteFile(table, content, 0600)
}

type failingExtractor struct{}

func (failingExtractor) Extract(input, _ string, _ int) (string, error) {
	return "", &extract.CollaboratorFailureError{Input: input, Step: "view", Err: errors.New("exit status 1")}
}

func rawTable(n int) string {
	var buf strings.Builder
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&buf, "chrX_rep_CAG_%d\t300\t%d\t0\n", i, i)
	}
	buf.WriteString("*\t0\t0\t3\n")
	return buf.String()
}

var testTime = time.Date(2020, time.March, 4, 13, 5, 9, 0, time.UTC)

func testConfig(input, output string) Config {
	return Config{
		Input:      input,
		OutputRoot: output,
		GroupRange: 10,
		Threads:    1,
		Extractor:  copyExtractor{},
		Now:        func() time.Time { return testTime },
	}
}

func writeInputs(t *testing.T, dir string, rows ...int) {
	t.Helper()
	for i, n := range rows {
		name := filepath.Join(dir, fmt.Sprintf("input%d.sam", i+1))
		require.NoError(t, os.WriteFile(name, []byte(rawTable(n)), 0600))
	}
}

func TestRunDirName(t *testing.T) {
	assert.Equal(t, "GroupieRun04-03-2020-130509", RunDirName(testTime))
}

func TestRunSingleFile(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 20)

	report, err := Run(testConfig(filepath.Join(in, "input1.sam"), out))
	require.NoError(t, err)
	assert.True(t, report.Single)
	assert.Equal(t, filepath.Join(out, RunDirName(testTime)), report.RunDir)
	require.Len(t, report.Files, 1)
	assert.Equal(t, Done, report.Files[0].State)
	assert.Equal(t, uint(1), report.Done())

	grouped, err := os.ReadFile(filepath.Join(report.RunDir, "input1", distro.GroupedTableName))
	require.NoError(t, err)
	assert.Equal(t, "1-10,55\n11-20,155\n", string(grouped))

	canonical, err := os.ReadFile(filepath.Join(report.RunDir, "input1", distro.CanonicalTableName))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(canonical), "20,3,input1\n"))
}

func TestRunSingleFileFailureIsFatal(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 15)

	report, err := Run(testConfig(filepath.Join(in, "input1.sam"), out))
	require.Error(t, err)
	var uneven *distro.UnevenGroupingError
	require.True(t, errors.As(err, &uneven))
	var fileErr *FileError
	require.True(t, errors.As(err, &fileErr))
	assert.Equal(t, Grouping, fileErr.State)

	require.NotNil(t, report)
	assert.Equal(t, Failed, report.Files[0].State)
	assert.NoFileExists(t, filepath.Join(report.RunDir, "input1", distro.GroupedTableName))
	assert.FileExists(t, filepath.Join(report.RunDir, "input1", distro.CanonicalTableName))
}

func TestRunMultiFileSkipsFailures(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 20, 15, 30)
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0600))

	report, err := Run(testConfig(in, out))
	require.NoError(t, err)
	assert.False(t, report.Single)
	require.Len(t, report.Files, 3)
	assert.Equal(t, uint(2), report.Done())
	assert.True(t, report.IsDone(0))
	assert.False(t, report.IsDone(1))
	assert.True(t, report.IsDone(2))

	assert.FileExists(t, filepath.Join(report.RunDir, "input1", distro.GroupedTableName))
	assert.NoFileExists(t, filepath.Join(report.RunDir, "input2", distro.GroupedTableName))
	assert.FileExists(t, filepath.Join(report.RunDir, "input3", distro.GroupedTableName))

	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, Failed, failed[0].State)
	var uneven *distro.UnevenGroupingError
	assert.True(t, errors.As(failed[0].Err, &uneven))

	f, err := os.Open(filepath.Join(report.RunDir, SummaryName))
	require.NoError(t, err)
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"run_id", "input", "sample", "state", "error"}, records[0])
	assert.Equal(t, report.RunID.String(), records[1][0])
	assert.Equal(t, "done", records[1][3])
	assert.Equal(t, "failed", records[2][3])
	assert.NotEmpty(t, records[2][4])
	assert.Equal(t, "done", records[3][3])
}

func TestRunMultiFileMalformedIdentifier(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 10)
	bad := strings.Replace(rawTable(10), "chrX_rep_CAG_4", "chrX4", 1)
	require.NoError(t, os.WriteFile(filepath.Join(in, "input2.sam"), []byte(bad), 0600))

	report, err := Run(testConfig(in, out))
	require.NoError(t, err)
	assert.True(t, report.IsDone(0))
	var malformed *distro.MalformedIdentifierError
	assert.True(t, errors.As(report.Files[1].Err, &malformed))
}

func TestRunMultiFileAllFailed(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 20, 20)
	cfg := testConfig(in, out)
	cfg.Extractor = failingExtractor{}

	report, err := Run(cfg)
	assert.Equal(t, ErrNoneGrouped, err)
	require.NotNil(t, report)
	for _, file := range report.Files {
		assert.Equal(t, Failed, file.State)
		var failure *extract.CollaboratorFailureError
		assert.True(t, errors.As(file.Err, &failure))
		// the per-sample directory is left in place
		assert.DirExists(t, file.OutDir)
	}
}

func TestRunConfigErrors(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 20)

	for _, mutate := range []func(*Config){
		func(cfg *Config) { cfg.GroupRange = 0 },
		func(cfg *Config) { cfg.Threads = 0 },
		func(cfg *Config) { cfg.Input = filepath.Join(in, "missing.sam") },
		func(cfg *Config) { cfg.Input = filepath.Join(in, "notes.txt") },
		func(cfg *Config) { cfg.Input = t.TempDir() },
		func(cfg *Config) { cfg.Extractor = extract.Samtools{Binary: filepath.Join(in, "no-samtools")} },
	} {
		cfg := testConfig(in, out)
		mutate(&cfg)
		report, err := Run(cfg)
		assert.Nil(t, report)
		var configErr *ConfigError
		assert.True(t, errors.As(err, &configErr), "%v", err)
	}
}

func TestDiscoverSampleNameClash(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	for _, name := range []string{"s.a.sam", "s.b.sam"} {
		require.NoError(t, os.WriteFile(filepath.Join(in, name), []byte(rawTable(10)), 0600))
	}

	_, _, err := Discover(in)
	var configErr *ConfigError
	require.True(t, errors.As(err, &configErr), "%v", err)
	assert.Contains(t, err.Error(), "s.a.sam")
	assert.Contains(t, err.Error(), "s.b.sam")

	report, err := Run(testConfig(in, out))
	assert.Nil(t, report)
	assert.True(t, errors.As(err, &configErr))
	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReportDoneFollowsState(t *testing.T) {
	report := &Report{Files: []FileResult{{State: Done}, {State: Failed}, {State: Grouping}, {State: Done}}}
	assert.Equal(t, uint(2), report.Done())
	assert.True(t, report.IsDone(0))
	assert.False(t, report.IsDone(1))
	assert.False(t, report.IsDone(2))
	assert.Len(t, report.Failed(), 2)
}

func TestRunDirectoryExists(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()
	writeInputs(t, in, 20)
	_, err := Run(testConfig(in, out))
	require.NoError(t, err)

	_, err = Run(testConfig(in, out))
	var configErr *ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "grouping", Grouping.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", State(42).String())
}
