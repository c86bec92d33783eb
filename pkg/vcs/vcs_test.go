// pkg/vcs/vcs_test.go
package vcs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRevision(t *testing.T) {
	t.Run("not a repository", func(t *testing.T) {
		rev, err := Revision(t.TempDir())
		require.NoError(t, err)
		assert.Empty(t, rev)
	})

	t.Run("no commits", func(t *testing.T) {
		dir := t.TempDir()
		_, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		rev, err := Revision(dir)
		require.NoError(t, err)
		assert.Empty(t, rev)
	})

	t.Run("head commit from a subdirectory", func(t *testing.T) {
		dir := t.TempDir()
		repo, err := git.PlainInit(dir, false)
		require.NoError(t, err)

		sub := filepath.Join(dir, "hopsworks")
		require.NoError(t, os.MkdirAll(sub, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(sub, "version.py"), []byte("__version__ = \"1.0.0\"\n"), 0644))

		wt, err := repo.Worktree()
		require.NoError(t, err)
		_, err = wt.Add("hopsworks/version.py")
		require.NoError(t, err)

		hash, err := wt.Commit("initial", &git.CommitOptions{
			Author: &object.Signature{Name: "ci", Email: "ci@example.com", When: time.Unix(0, 0)},
		})
		require.NoError(t, err)

		rev, err := Revision(sub)
		require.NoError(t, err)
		assert.Equal(t, hash.String(), rev)
	})
}
