package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestSchemaCommandTextOutput(t *testing.T) {
	out, err := runCommand(t, "schema", "testdata/person.cue", "--type", "Person")
	require.NoError(t, err)
	newGoldie(t).Assert(t, "schema_person", []byte(out))
}

func TestSchemaCommandJSONOutput(t *testing.T) {
	out, err := runCommand(t, "schema", "testdata/person.cue", "--type", "PersonRecord", "--format", "json")
	require.NoError(t, err)

	var report SchemaReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "PersonRecord", report.Type)
	require.Len(t, report.Properties, 1)
	assert.Equal(t, "name", report.Properties[0].Name)
	require.Len(t, report.Properties[0].Accessors, 2)
	assert.False(t, report.Properties[0].Accessors[0].Abstract)
}

func TestSchemaCommandYAMLOutput(t *testing.T) {
	out, err := runCommand(t, "schema", "testdata/person.cue", "--type", "Person", "--format", "yaml")
	require.NoError(t, err)

	var report SchemaReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, "Person", report.Type)
	assert.Len(t, report.Properties, 2)
}

func TestSchemaCommandUnknownType(t *testing.T) {
	_, err := runCommand(t, "schema", "testdata/person.cue", "--type", "Ghost")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
