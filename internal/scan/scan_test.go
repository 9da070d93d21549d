package scan

import (
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T, fs afero.Fs, files ...string) {
	t.Helper()
	for _, f := range files {
		require.NoError(t, afero.WriteFile(fs, f, []byte("client\n"), 0o644))
	}
}

func TestIsConfig(t *testing.T) {
	assert.True(t, IsConfig("a.ovpn"))
	assert.True(t, IsConfig("dir/A.OVPN"))
	assert.False(t, IsConfig("a.ovpn.bak"))
	assert.False(t, IsConfig("a.conf"))
	assert.False(t, IsConfig("ovpn"))
}

func TestFindConfigs(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"extract/b/top.ovpn",
		"extract/b/jp/tokyo.ovpn",
		"extract/b/jp/deep/osaka.ovpn",
		"extract/b/jp/notes.txt",
		"extract/b.tar",
	)

	got, err := FindConfigs(fs, "extract/b")
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{
		"top.ovpn",
		filepath.Join("jp", "tokyo.ovpn"),
		filepath.Join("jp", "deep", "osaka.ovpn"),
	}, got)
}

func TestFindConfigs_MissingRoot(t *testing.T) {
	_, err := FindConfigs(afero.NewMemMapFs(), "extract/none")
	assert.Error(t, err)
}

func TestListConfigs(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs, "input/b.ovpn", "input/a.ovpn", "input/sub/c.ovpn", "input/bundle.tar")

	got, err := ListConfigs(fs, "input")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.ovpn", "b.ovpn"}, got)
}

func TestRemoveConfigs(t *testing.T) {
	fs := afero.NewMemMapFs()
	seed(t, fs,
		"extract/b/top.ovpn",
		"extract/b/jp/tokyo.ovpn",
		"extract/b/jp/deep/osaka.ovpn",
		"extract/b/kr/seoul.ovpn",
		"extract/b/kr/readme.txt",
		"extract/b/bundle.tar",
	)

	removed, err := RemoveConfigs(fs, "extract/b")
	require.NoError(t, err)
	assert.Equal(t, 4, removed)

	left, err := FindConfigs(fs, "extract/b")
	require.NoError(t, err)
	assert.Empty(t, left)

	for path, want := range map[string]bool{
		"extract/b":               true,
		"extract/b/bundle.tar":    true,
		"extract/b/kr/readme.txt": true,
		"extract/b/jp":            false,
		"extract/b/jp/deep":       false,
	} {
		exists, err := afero.Exists(fs, path)
		require.NoError(t, err)
		assert.Equal(t, want, exists, path)
	}

	// second pass has nothing to do
	removed, err = RemoveConfigs(fs, "extract/b")
	require.NoError(t, err)
	assert.Zero(t, removed)
}
