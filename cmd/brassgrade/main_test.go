package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/domino14/brassgrade/report"
)

const testCSV = `Band,Two years ago,Last year
Black Dyke,1,2
Cory,2,1
Foden's,3,4
Grimethorpe,4,3
Brighouse,5,6
Leyland,6,5
`

func writeSection(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "section.csv")
	require.NoError(t, os.WriteFile(path, []byte(testCSV), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append(args, "--log-level", "disabled"))
	err := cmd.Execute()
	return out.String(), err
}

func TestSimText(t *testing.T) {
	out, err := run(t, "sim", writeSection(t), "--samples-per-band", "50", "--seed", "1",
		"--absent", "Leyland", "--threads", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "Black Dyke\n----------\n")
	assert.Contains(t, out, "Place\tPromote\t Stay\tRelegate\n")
	assert.Contains(t, out, "  6a\t")
}

func TestSimJSON(t *testing.T) {
	path := writeSection(t)
	trialLog := filepath.Join(t.TempDir(), "trials.yaml")
	out, err := run(t, "sim", path, "--format", "json", "--samples-per-band", "20",
		"--seed", "9", "--trial-log", trialLog)
	require.NoError(t, err)

	var doc report.Document
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Len(t, doc.Bands, 6)
	assert.Equal(t, 6, doc.NumPresent)
	assert.Equal(t, 120, doc.Bands[0].Trials)
	require.Len(t, doc.Skipped, 1)
	assert.Equal(t, 1, doc.Skipped[0].Line)

	logged, err := os.ReadFile(trialLog)
	require.NoError(t, err)
	assert.Equal(t, 6*120, strings.Count(string(logged), "- band:"))
}

func TestSimTrialLogWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("no /dev/full on this system")
	}
	_, err := run(t, "sim", writeSection(t), "--samples-per-band", "20", "--seed", "9",
		"--trial-log", "/dev/full")
	assert.ErrorContains(t, err, "writing trial log")
}

func TestSimBadConfig(t *testing.T) {
	path := writeSection(t)
	_, err := run(t, "sim", path, "--promoted", "3", "--relegated", "3")
	assert.Error(t, err)

	_, err = run(t, "sim", path, "--absent", "Nobody")
	assert.Error(t, err)

	_, err = run(t, "sim", path, "--absent", `"Black Dyke`)
	assert.ErrorContains(t, err, "bad absent list")

	_, err = run(t, "sim", filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestSelftest(t *testing.T) {
	out, err := run(t, "selftest", writeSection(t), "--samples-per-band", "500",
		"--seed", "4", "--absent", "Cory")
	require.NoError(t, err)
	assert.Contains(t, out, "Cory")
	assert.Contains(t, out, "absent")
	assert.NotContains(t, out, "SUSPICIOUS")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "brassgrade dev\n", out)
}
