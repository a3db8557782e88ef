package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fitd-tech/moodring-vibe/session/filestore"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "moodring_auth.json")
	s := filestore.New(path)

	blob, err := s.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, blob, "missing file reads as no session")

	require.NoError(t, s.Set(ctx, []byte(`{"access_token":"a"}`)))
	require.NoError(t, s.Set(ctx, []byte(`{"access_token":"b"}`)))

	blob, err = s.Get(ctx)
	require.NoError(t, err)
	require.JSONEq(t, `{"access_token":"b"}`, string(blob))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary files are cleaned up")

	require.NoError(t, s.Delete(ctx))
	require.NoError(t, s.Delete(ctx), "deleting twice is fine")

	blob, err = s.Get(ctx)
	require.NoError(t, err)
	require.Nil(t, blob)
}
