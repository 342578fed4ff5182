package pveam

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/wgate/internal/adapters/out/command/fake"
	"github.com/bnema/wgate/internal/domain"
)

func TestCatalog_Cached(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"debian-12-standard_12.7-1_amd64.tar.zst", "readme.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.tar.gz"), 0755))

	c := NewCatalog(fake.New(), dir)
	names, err := c.Cached(context.Background(), "local")

	require.NoError(t, err)
	assert.Equal(t, []string{"debian-12-standard_12.7-1_amd64.tar.zst"}, names)
}

func TestCatalog_CachedPerStorage(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nas", "template", "cache"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nas", "template", "cache", "alpine-3.19-default_20240207_amd64.tar.xz"), nil, 0644))

	c := NewCatalog(fake.New(), filepath.Join(root, "%s", "template", "cache"))

	names, err := c.Cached(context.Background(), "nas")
	require.NoError(t, err)
	assert.Len(t, names, 1)

	names, err = c.Cached(context.Background(), "missing")
	require.NoError(t, err, "a storage without cache dir has no templates")
	assert.Empty(t, names)
}

func TestCatalog_Available(t *testing.T) {
	runner := fake.New()
	runner.Output(fake.CommandSpec{Name: "pveam", Args: []string{"available", "--section", "system"}},
		"system          alpine-3.19-default_20240207_amd64.tar.xz\n"+
			"system          debian-12-standard_12.7-1_amd64.tar.zst\n\n")

	names, err := NewCatalog(runner, t.TempDir()).Available(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{
		"alpine-3.19-default_20240207_amd64.tar.xz",
		"debian-12-standard_12.7-1_amd64.tar.zst",
	}, names)
}

func TestCatalog_UpdateAndDownload(t *testing.T) {
	runner := fake.New()
	c := NewCatalog(runner, t.TempDir())

	require.NoError(t, c.Update(context.Background()))
	require.NoError(t, c.Download(context.Background(), domain.TemplateRef{Storage: "local", Name: "debian-12-standard_12.7-1_amd64.tar.zst"}))

	assert.Equal(t, []string{
		"pveam update",
		"pveam download local debian-12-standard_12.7-1_amd64.tar.zst",
	}, runner.CommandLines())
}

func TestCatalog_DownloadFailure(t *testing.T) {
	runner := fake.New()
	runner.Fail(fake.CommandSpec{Name: "pveam", Prefix: []string{"download"}}, 1, "400 Parameter verification failed")

	err := NewCatalog(runner, t.TempDir()).Download(context.Background(), domain.TemplateRef{Storage: "local", Name: "x.tar.zst"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "Parameter verification failed")
}
