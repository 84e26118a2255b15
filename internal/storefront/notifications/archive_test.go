package notifications

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/storefront-hq/storectl/internal/storefront/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readLines(t *testing.T, path string) []entity.Record {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []entity.Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec entity.Record
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, scanner.Err())
	return out
}

func TestResolvePathsSanitizesProfile(t *testing.T) {
	paths := ResolvePaths("/cfg", "team a/b")
	assert.Equal(t, filepath.Join("/cfg", "notifications", "team_a_b"), paths.BaseDir)
	assert.Equal(t, filepath.Join(paths.BaseDir, "events.jsonl"), paths.EventsFile)
	assert.Equal(t, "default", filepath.Base(ResolvePaths("/cfg", " ").BaseDir))
}

func TestArchiveAppendsOnlyUnseenAcrossRuns(t *testing.T) {
	paths := ResolvePaths(t.TempDir(), "default")

	archive, err := OpenArchive(paths)
	require.NoError(t, err)
	n, err := archive.Append(note(1, "a"), note(2, "b"), entity.Record{"title": "no id"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = archive.Append(note(2, "b"))
	require.NoError(t, err)
	assert.Zero(t, n)

	reopened, err := OpenArchive(paths)
	require.NoError(t, err)
	n, err = reopened.Append(note(1, "a"), note(3, "c"))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	lines := readLines(t, paths.EventsFile)
	require.Len(t, lines, 3)
	assert.Equal(t, []entity.ID{"1", "2", "3"}, entity.Collection(lines).IDs())

	info, err := os.Stat(paths.EventsFile)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestFeedWritesNewItemsToArchive(t *testing.T) {
	paths := ResolvePaths(t.TempDir(), "default")
	archive, err := OpenArchive(paths)
	require.NoError(t, err)

	client := &fakeClient{lists: []entity.Collection{{note(1, "a")}}}
	feed := New(client, nil, Config{Role: "admin"}).WithArchive(archive)
	require.NoError(t, feed.Refresh(t.Context()))
	feed.MergePush(note(1, "a"))

	assert.Len(t, readLines(t, paths.EventsFile), 1)
}

func TestOpenArchiveRejectsCorruptState(t *testing.T) {
	paths := ResolvePaths(t.TempDir(), "default")
	require.NoError(t, os.MkdirAll(paths.BaseDir, 0o700))
	require.NoError(t, os.WriteFile(paths.StateFile, []byte("{"), 0o600))

	_, err := OpenArchive(paths)
	require.Error(t, err)
}
