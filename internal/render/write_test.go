package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDocuments_StdoutSingle(t *testing.T) {
	var sb strings.Builder
	err := WriteDocuments(map[string]string{RootKey: "body\n"}, "-", &sb)
	require.NoError(t, err)
	assert.Equal(t, "body\n", sb.String())
}

func TestWriteDocuments_ConcatenatesWithMarkers(t *testing.T) {
	var sb strings.Builder
	docs := map[string]string{
		RootKey: "root\n",
		"b-sub": "second\n",
		"a-sub": "first\n",
	}
	err := WriteDocuments(docs, "", &sb)
	require.NoError(t, err)

	// Root first, then subworkflows in sorted order.
	assert.Equal(t, "root\n\n---\nfirst\n\n---\nsecond\n", sb.String())
}

func TestWriteDocuments_PatternExpansion(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "wf-%.yaml")
	docs := map[string]string{
		RootKey:  "root doc",
		"rotate": "rotate doc",
	}
	require.NoError(t, WriteDocuments(docs, target, nil))

	root, err := os.ReadFile(filepath.Join(dir, "wf-ROOT.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "root doc", string(root))

	sub, err := os.ReadFile(filepath.Join(dir, "wf-rotate.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "rotate doc", string(sub))
}

func TestWriteDocuments_SingleFile(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "out.yaml")
	docs := map[string]string{RootKey: "root\n", "sub": "sub\n"}
	require.NoError(t, WriteDocuments(docs, target, nil))

	body, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "root\n\n---\nsub\n", string(body))
}

func TestWriteDocuments_MissingRoot(t *testing.T) {
	var sb strings.Builder
	err := WriteDocuments(map[string]string{"sub": "x"}, "-", &sb)
	assert.Error(t, err)
}
