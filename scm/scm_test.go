package scm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromURL(t *testing.T) {
	tests := []struct {
		name, url, browse string
	}{
		{"scp-like", "git@github.com:example/audio.git", "https://github.com/example/audio"},
		{"https", "https://github.com/example/audio.git", "https://github.com/example/audio"},
		{"https without suffix", "https://github.com/example/audio", "https://github.com/example/audio"},
		{"ssh", "ssh://git@codeberg.org/example/audio.git", "https://codeberg.org/example/audio"},
		{"port", "https://git.example.org:8443/audio.git", "https://git.example.org:8443/audio"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromURL(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.browse, s.URL)
			assert.Equal(t, "scm:git:"+tt.browse+".git", s.Connection)
		})
	}
	s, err := FromURL("git@github.com:example/audio.git")
	require.NoError(t, err)
	assert.Equal(t, "scm:git:ssh://git@github.com/example/audio.git", s.DeveloperConnection)

	_, err = FromURL("")
	assert.ErrorIs(t, err, ErrNoRemote)
}

func TestDiscover(t *testing.T) {
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	require.NoError(t, err)
	_, err = repo.CreateRemote(&config.RemoteConfig{
		Name: DefaultRemote,
		URLs: []string{"git@github.com:example/audio.git"},
	})
	require.NoError(t, err)
	sub := filepath.Join(dir, "src", "main")
	require.NoError(t, os.MkdirAll(sub, 0777))

	s, err := Discover(sub, "")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/example/audio", s.URL)

	_, err = Discover(sub, "upstream")
	assert.Error(t, err)
}

func TestDiscover_noRepo(t *testing.T) {
	_, err := Discover(t.TempDir(), "")
	assert.ErrorIs(t, err, git.ErrRepositoryNotExists)
}
