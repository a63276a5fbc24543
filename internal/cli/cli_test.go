package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/memquery/core"
)

const snapshot = `
agent:
  position: [0, 63, 0]
entities:
  - id: hut1
    kind: reference_object
    position: [1, 2, 3]
    triples:
      - {predicate: has_name, value: hut}
tasks:
  - id: t1
    action: Build
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	err := run(context.Background(), NewRootCommand(), args, strings.NewReader(stdin), &out, &errOut)

	return out.String(), err
}

func TestAsk_InMemorySnapshot(t *testing.T) {
	snap := writeFile(t, "world.yaml", snapshot)

	out, err := execute(t, "", "ask", "--snapshot", snap, `{"filters": {"type": "ACTION"}, "answer_type": "TAG", "tag_name": "action_name"}`)
	require.NoError(t, err)
	assert.Equal(t, "I am building\n", out)

	out, err = execute(t, `{"filters": {"type": "AGENT"}, "answer_type": "EXISTS"}`, "ask", "--snapshot", snap, "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text": "I am at (0, 63, 0)"}`, out)
}

func TestWriteResponse(t *testing.T) {
	var buf bytes.Buffer

	require.NoError(t, writeResponse(&buf, core.Response{Text: "Yes", Payload: map[string]any{"memid": "hut1"}}, true))
	assert.JSONEq(t, `{"text": "Yes", "payload": {"memid": "hut1"}}`, buf.String())

	buf.Reset()
	require.NoError(t, writeResponse(&buf, core.TextResponse("Yes"), false))
	assert.Equal(t, "Yes\n", buf.String())
}

func TestAsk_LogsQuery(t *testing.T) {
	snap := writeFile(t, "world.yaml", snapshot)

	var out, errOut bytes.Buffer

	err := run(context.Background(), NewRootCommand(), []string{"ask", "--snapshot", snap, "--log-level", "info", "--log-format", "json",
		`{"filters": {"type": "AGENT"},
		  "answer_type": "EXISTS"}`}, strings.NewReader(""), &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), `"query":"{\"filters\":{\"type\":\"AGENT\"},\"answer_type\":\"EXISTS\"}"`)
}

func TestAsk_Errors(t *testing.T) {
	_, err := execute(t, "", "ask")
	assert.Error(t, err)

	_, err = execute(t, "", "ask", `{"filters": {"type": "AGENT"}}`)
	assert.ErrorContains(t, err, "invalid query")

	_, err = execute(t, "", "ask", "--driver", "postgres", `{"filters": {"type": "AGENT"}, "answer_type": "EXISTS"}`)
	assert.ErrorContains(t, err, "unknown store driver")
}

func TestAsk_Strict(t *testing.T) {
	snap := writeFile(t, "world.yaml", snapshot)
	form := `{"filters": {"type": "ACTION"}, "answer_type": "TAG", "tag_name": "move_target"}`

	out, err := execute(t, "", "ask", "--snapshot", snap, form)
	require.NoError(t, err)
	assert.Equal(t, "I don't understand what you're asking\n", out)

	_, err = execute(t, "", "ask", "--snapshot", snap, "--strict", form)
	assert.ErrorContains(t, err, "precondition failed")
}

func TestImportThenAsk_SQLite(t *testing.T) {
	snap := writeFile(t, "world.yaml", snapshot)
	db := filepath.Join(t.TempDir(), "memory.db")

	out, err := execute(t, "", "import", "--db", db, snap)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 entities and 1 tasks")

	out, err = execute(t, "", "ask", "--driver", "sqlite", "--db", db,
		`{"filters": {"type": "REFERENCE_OBJECT", "reference_object": {"filters": {"has_name": "hut"}}}, "answer_type": "TAG", "tag_name": "location"}`)
	require.NoError(t, err)
	assert.Equal(t, "(1, 2, 3)\n", out)
}

func TestAsk_SQLiteSnapshotRepeated(t *testing.T) {
	snap := writeFile(t, "world.yaml", `
entities:
  - id: ball
    kind: reference_object
    triples:
      - {predicate: has_name, value: ball}
      - {predicate: has_tag, value: red}
      - {predicate: has_tag, value: shiny}
`)
	db := filepath.Join(t.TempDir(), "memory.db")
	form := `{"filters": {"type": "REFERENCE_OBJECT", "reference_object": {"filters": {"has_name": "ball"}}}, "answer_type": "TAG", "tag_name": "has_color"}`

	for range 2 {
		out, err := execute(t, "", "ask", "--driver", "sqlite", "--db", db, "--snapshot", snap, form)
		require.NoError(t, err)
		assert.Equal(t, "That has tags red shiny\n", out)
	}
}

func TestConfigFileAndEnv(t *testing.T) {
	snap := writeFile(t, "world.yaml", snapshot)
	cfg := writeFile(t, "config.yaml", "store:\n  snapshot: "+snap+"\nlog:\n  level: error\n")

	out, err := execute(t, "", "ask", "--config", cfg, `{"filters": {"type": "AGENT"}, "answer_type": "EXISTS"}`)
	require.NoError(t, err)
	assert.Equal(t, "I am at (0, 63, 0)\n", out)

	t.Setenv("MEMQUERY_RESOLVER_STRICT", "true")

	_, err = execute(t, "", "ask", "--config", cfg, `{"filters": {"type": "ACTION"}, "answer_type": "TAG", "tag_name": "move_target"}`)
	assert.ErrorContains(t, err, "precondition failed")
}
