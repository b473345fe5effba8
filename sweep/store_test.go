package sweep

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/dyncast/errors"
)

func TestArtifactKey(t *testing.T) {
	assert.Equal(t, "abc/42/msvc.cc", ArtifactKey("abc", 42, "msvc"))
}

func TestDirStoreRoundTrip(t *testing.T) {
	root := t.TempDir()
	store, err := NewDirStore(root)
	require.NoError(t, err)
	ctx := context.Background()

	data := bytes.Repeat([]byte("struct Class1 { virtual ~Class1() {} };\n"), 50)
	key := ArtifactKey("run", 7, "gcc")
	require.NoError(t, store.Put(ctx, key, data))

	raw, err := os.ReadFile(filepath.Join(root, "run", "7", "gcc.cc.sz"))
	require.NoError(t, err)
	assert.Less(t, len(raw), len(data))

	got, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	_, err = store.Get(ctx, "run/8/gcc.cc")
	assert.True(t, errors.HasKind(err, errors.KindNotFound))
}

func TestReportAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "findings.jsonl")
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, seed := range []uint64{4, 9} {
		r, err := OpenReport(path)
		require.NoError(t, err)
		require.NoError(t, r.Add(Finding{Time: when, RunID: "r", Toolchains: []string{"gcc"}, Seed: seed}))
		require.NoError(t, r.Close())
	}

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	findings, err := ReadFindings(f)
	require.NoError(t, err)
	require.Len(t, findings, 2)
	assert.Equal(t, uint64(4), findings[0].Seed)
	assert.Equal(t, uint64(9), findings[1].Seed)
	assert.True(t, when.Equal(findings[1].Time))
	assert.Empty(t, findings[1].Artifacts)
}

func TestReadFindingsRejectsGarbage(t *testing.T) {
	_, err := ReadFindings(bytes.NewBufferString("{not json"))
	assert.True(t, errors.HasKind(err, errors.KindDecode))
}
