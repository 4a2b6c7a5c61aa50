package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skeinworks/skein/internal/render"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	// Reopening an existing database applies the schema without error.
	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestPutGetDocuments_RoundTrip(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	docs := map[string]string{
		render.RootKey: "root body",
		"rotate":       "sub body",
	}
	require.NoError(t, s.PutDocuments(ctx, "wf1", "cwl", "cfg1", docs))

	got, err := s.GetDocuments(ctx, "wf1", "cwl", "cfg1")
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestGetDocuments_MissReturnsNil(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	got, err := s.GetDocuments(ctx, "absent", "cwl", "cfg1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetDocuments_KeyComponentsIsolate(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	docs := map[string]string{render.RootKey: "body"}
	require.NoError(t, s.PutDocuments(ctx, "wf1", "cwl", "cfg1", docs))

	for _, key := range [][3]string{
		{"wf2", "cwl", "cfg1"},
		{"wf1", "snakemake", "cfg1"},
		{"wf1", "cwl", "cfg2"},
	} {
		got, err := s.GetDocuments(ctx, key[0], key[1], key[2])
		require.NoError(t, err)
		assert.Nil(t, got)
	}
}

func TestPutDocuments_Idempotent(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	docs := map[string]string{render.RootKey: "body"}
	require.NoError(t, s.PutDocuments(ctx, "wf1", "cwl", "cfg1", docs))
	require.NoError(t, s.PutDocuments(ctx, "wf1", "cwl", "cfg1", docs))

	got, err := s.GetDocuments(ctx, "wf1", "cwl", "cfg1")
	require.NoError(t, err)
	assert.Equal(t, docs, got)
}

func TestEvict(t *testing.T) {
	s := openTemp(t)
	ctx := context.Background()

	docs := map[string]string{render.RootKey: "body", "sub": "x"}
	require.NoError(t, s.PutDocuments(ctx, "wf1", "cwl", "cfg1", docs))
	require.NoError(t, s.PutDocuments(ctx, "wf1", "snakemake", "cfg1", map[string]string{render.RootKey: "y"}))

	affected, err := s.Evict(ctx, "wf1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), affected)

	got, err := s.GetDocuments(ctx, "wf1", "cwl", "cfg1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestConfigFingerprint(t *testing.T) {
	a, err := ConfigFingerprint(render.Config{"allow_complex_types": false, "sort_steps": true})
	require.NoError(t, err)
	b, err := ConfigFingerprint(render.Config{"sort_steps": true, "allow_complex_types": false})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := ConfigFingerprint(render.Config{"allow_complex_types": true, "sort_steps": true})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestConfigFingerprint_RejectsOpaqueValues(t *testing.T) {
	_, err := ConfigFingerprint(render.Config{"bad": make(chan int)})
	assert.Error(t, err)
}
