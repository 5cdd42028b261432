package sequence

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogYAML = `
sequences:
  - id: fetch-and-store
    name: Fetch and store
    tags: [data, demo]
    error_handling:
      strategy: retry_all
      retry:
        enabled: true
        max_retries: 2
        backoff_ms: 100
        exponential_backoff: true
    circuit_breaker:
      enabled: true
      failure_threshold: 3
      timeout: 30s
    steps:
      - order: 1
        tool: http_fetch
        action: get
        params:
          url: "${input.url}"
      - order: 2
        mcp: storage
        action: put
        fallback_mcp: storage_backup
        on_error: fallback
        params:
          body: "${step1.data.body}"
  - id: notify
    steps:
      - order: 1
        tool: mailer
        action: send
`

const singleYAML = `
id: solo
steps:
  - order: 1
    tool: echo
    action: run
`

func writeTempYAML(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile_Catalog(t *testing.T) {
	path := writeTempYAML(t, "sequences.yaml", catalogYAML)

	seqs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, seqs, 2)

	seq := seqs[0]
	assert.Equal(t, "fetch-and-store", seq.ID)
	assert.Equal(t, []string{"data", "demo"}, seq.Tags)
	assert.Equal(t, StrategyRetryAll, seq.ErrorHandling.Strategy)
	assert.True(t, seq.ErrorHandling.Retry.Enabled)
	assert.Equal(t, 2, seq.ErrorHandling.Retry.MaxRetries)

	require.NotNil(t, seq.CircuitBreaker)
	assert.True(t, seq.CircuitBreaker.Enabled)
	assert.Equal(t, 3, seq.CircuitBreaker.FailureThreshold)
	assert.Equal(t, 30*time.Second, seq.CircuitBreaker.Timeout)

	require.Len(t, seq.Steps, 2)
	assert.Equal(t, "http_fetch", seq.Steps[0].Tool)
	assert.Equal(t, "${input.url}", seq.Steps[0].Params["url"])
	assert.Equal(t, "storage", seq.Steps[1].MCP)
	assert.Equal(t, "storage_backup", seq.Steps[1].FallbackMCP)
	assert.Equal(t, PolicyFallback, seq.Steps[1].OnError)

	assert.Equal(t, "notify", seqs[1].ID)
}

func TestLoadFile_SingleDocument(t *testing.T) {
	path := writeTempYAML(t, "solo.yaml", singleYAML)

	seqs, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, seqs, 1)
	assert.Equal(t, "solo", seqs[0].ID)
}

func TestLoadFile_InvalidDefinitionRejected(t *testing.T) {
	path := writeTempYAML(t, "bad.yaml", `
id: broken
steps:
  - order: 1
    tool: a
    mcp: b
    action: run
`)

	_, err := LoadFile(path)
	assert.Error(t, err, "a step naming both tool and mcp is invalid")
}

func TestLoadFile_BadTimeout(t *testing.T) {
	path := writeTempYAML(t, "bad.yaml", `
id: broken
circuit_breaker:
  enabled: true
  failure_threshold: 1
  timeout: soon
steps:
  - order: 1
    tool: a
    action: run
`)

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestLoadFile_EmptyDocument(t *testing.T) {
	path := writeTempYAML(t, "empty.yaml", "")

	_, err := LoadFile(path)
	assert.Error(t, err)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(singleYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte(catalogYAML), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))

	seqs, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, seqs, 3)

	// Files load in lexical order: a.yml before b.yaml.
	assert.Equal(t, "fetch-and-store", seqs[0].ID)
	assert.Equal(t, "notify", seqs[1].ID)
	assert.Equal(t, "solo", seqs[2].ID)
}

func TestExecutor_RegisterFromFile(t *testing.T) {
	path := writeTempYAML(t, "sequences.yaml", catalogYAML)

	e := NewExecutor(nil)
	require.NoError(t, e.RegisterFromFile(path))

	assert.Len(t, e.GetSequences(), 2)

	// The gated sequence gets its breaker at registration time.
	snap, ok := e.CircuitBreakerState("fetch-and-store")
	require.True(t, ok)
	assert.Equal(t, CircuitClosed, snap.State)
	_, ok = e.CircuitBreakerState("notify")
	assert.False(t, ok)
}
