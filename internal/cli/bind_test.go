package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCommand executes the CLI with the given args and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestBindCommandTextOutput(t *testing.T) {
	out, err := runCommand(t, "bind", "testdata/person.cue", "--view", "Person")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "bind_person", []byte(out))
}

func TestBindCommandWithDelegate(t *testing.T) {
	out, err := runCommand(t, "bind", "testdata/person.cue", "--view", "Person", "--delegate", "PersonRecord")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "bind_person_delegated", []byte(out))
}

func TestBindCommandJSONOutput(t *testing.T) {
	out, err := runCommand(t, "bind", "testdata/person.cue", "--view", "Person", "--format", "json")
	require.NoError(t, err)

	var report BindReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, []string{"Person"}, report.Views)
	assert.Empty(t, report.Delegate)
	require.Len(t, report.Generated, 2)
	assert.Equal(t, "name", report.Generated[0].Name)
	assert.Equal(t, "age", report.Generated[1].Name)
}

func TestBindCommandConflictFailsWithBothSignatures(t *testing.T) {
	out, err := runCommand(t, "bind", "testdata/conflict.cue", "--view", "Person", "--delegate", "PersonRecord")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out,
		"Method 'public string Person.Name()' is both implemented by the view and the delegate type 'public string PersonRecord.Name()'.")
}

func TestBindCommandUnknownTypeIsCommandError(t *testing.T) {
	_, err := runCommand(t, "bind", "testdata/person.cue", "--view", "Ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBindCommandMissingModelFile(t *testing.T) {
	_, err := runCommand(t, "bind", "testdata/missing.cue", "--view", "Person")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestBindCommandRejectsInvalidFormat(t *testing.T) {
	_, err := runCommand(t, "bind", "testdata/person.cue", "--view", "Person", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}
