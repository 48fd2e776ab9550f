package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lk2023060901/prospect-finder/internal/prospect/biz"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC", "")
	t.Setenv("TAVILY", "")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunCmd_RequiresLocationAndPostcode(t *testing.T) {
	_, err := execute(t, "run", "--location", "Sydney")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--postcode")
}

func TestRunCmd_InvalidConfig(t *testing.T) {
	_, err := execute(t, "run", "-l", "Sydney", "-p", "2000", "--dry-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.api_key")
}

func TestQueriesCmd_MissingKey(t *testing.T) {
	_, err := execute(t, "queries", "-l", "Sydney", "-p", "2000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "llm.api_key")
}

func TestRootCmd_Help(t *testing.T) {
	out, err := execute(t)
	require.NoError(t, err)
	assert.Contains(t, out, "run")
	assert.Contains(t, out, "queries")
}

func TestWriteResult(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeResult(&buf, &biz.ProcessResult{Stats: biz.Stats{Queries: 3}}, 1500*time.Millisecond))

	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &body))
	assert.JSONEq(t, `"success"`, string(body["status"]))
	assert.JSONEq(t, `[]`, string(body["data"]))
	assert.JSONEq(t, `1.5`, string(body["execution_time"]))
	assert.NotContains(t, body, "persist_failures")

	var stats biz.Stats
	require.NoError(t, json.Unmarshal(body["stats"], &stats))
	assert.Equal(t, 3, stats.Queries)
}
