package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/domain"
	"docqa/internal/port"
)

const testConfig = `
embedding:
  provider: mock
  dimension: 1024
  requests_per_second: 0
generation:
  provider: mock
chunk:
  max_bytes: 40
retrieve:
  top_k: 2
logging:
  level: error
`

const testDocument = `Cats purr when they are content and sometimes when stressed.
Dogs bark to warn their owners about strangers at the door.
Fish swim in schools to confuse predators in open water.
Birds migrate south when the days get shorter in autumn.`

func setupWorkspace(t *testing.T) (dir, doc string) {
	t.Helper()
	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docqa.yaml"), []byte(testConfig), 0644))
	doc = filepath.Join(dir, "animals.txt")
	require.NoError(t, os.WriteFile(doc, []byte(testDocument), 0644))
	return dir, doc
}

func run(t *testing.T, args ...string) string {
	t.Helper()

	// flag variables outlive a single Execute
	cfgFile, rootDir, logLevel = "", "", ""
	askQuery, askTopK, askJSON, askSession, askShowPrompt, askNoProgress = "", 0, false, "", false, false
	chunkMaxBytes, chunkBoundary, chunkJSON, chunkRaw = 0, "", false, false
	configForce = false

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestAskJSON(t *testing.T) {
	dir, doc := setupWorkspace(t)

	out := run(t, "--dir", dir, "ask", "-q", "cats purr", "--json", doc)

	var got askOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, doc, got.Path)
	assert.Equal(t, "You asked: cats purr", got.Result.Response)
	assert.Len(t, got.Result.TopChunks, 2)
	assert.Len(t, got.TopScores, 2)
	assert.GreaterOrEqual(t, got.TopScores[0], got.TopScores[1])
	assert.Contains(t, got.Result.TopChunks[0], "cats purr")
	assert.Contains(t, got.Result.Prompt, "We want an answer for the user query from the given text:")
}

func TestAskSessionPersists(t *testing.T) {
	dir, doc := setupWorkspace(t)

	run(t, "--dir", dir, "ask", "-q", "first question", "--session", "s1", "--no-progress", doc)
	run(t, "--dir", dir, "ask", "-q", "second question", "--session", "s1", "--no-progress", doc)

	list := run(t, "--dir", dir, "history", "list")
	assert.Contains(t, list, "s1")
	assert.Contains(t, list, "4 turns")

	show := run(t, "--dir", dir, "history", "show", "s1")
	assert.Contains(t, show, "user: first question")
	assert.Contains(t, show, "model: You asked: second question")

	run(t, "--dir", dir, "history", "clear", "s1")
	assert.Contains(t, run(t, "--dir", dir, "history", "list"), "No sessions.")
}

func TestChunkCommand(t *testing.T) {
	dir, doc := setupWorkspace(t)

	out := run(t, "--dir", dir, "chunk", "--max-bytes", "60", "--json", doc)

	var got []chunkOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 1)
	require.NotEmpty(t, got[0].Chunks)
	for _, c := range got[0].Chunks {
		assert.LessOrEqual(t, c.Bytes, 60)
		assert.Equal(t, len(c.Text), c.Bytes)
	}
	assert.Equal(t, "cats", got[0].Chunks[0].Text[:4], "chunks are normalized")
}

func TestConfigInit(t *testing.T) {
	dir := t.TempDir()

	out := run(t, "--dir", dir, "config", "init")
	assert.Contains(t, out, "docqa.yaml")

	_, err := os.Stat(filepath.Join(dir, "docqa.yaml"))
	assert.NoError(t, err)
}

func TestPrintResultKeepsUTF8AndUsesErrWriter(t *testing.T) {
	var out, errOut bytes.Buffer
	result := &domain.RetrievalResult{
		Hits:          []domain.ScoredChunk{{Chunk: domain.Chunk{Text: "a" + strings.Repeat("é", 150)}, Score: 0.5}},
		GenerationErr: &domain.CollaboratorError{Op: "generate", Model: "mock", Err: errors.New("quota exceeded")},
	}

	printResult(&out, &errOut, port.FileInfo{Path: "paper.txt"}, "", result)

	assert.True(t, utf8.Valid(out.Bytes()), "output is not valid UTF-8")
	assert.Contains(t, out.String(), "...")
	assert.NotContains(t, out.String(), "quota exceeded")
	assert.Contains(t, errOut.String(), "answer generation failed")
}
