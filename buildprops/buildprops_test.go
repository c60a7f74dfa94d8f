package buildprops

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Done to increase the memory available to gradle.
org.gradle.jvmargs=-Xmx1G
maven_group=org.example.audio
archives_base_name=audio
`

func TestParse(t *testing.T) {
	p, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	assert.Equal(t, "org.example.audio", p.Group)
	assert.Equal(t, "audio", p.BaseName)
	assert.False(t, p.Release)
	assert.Equal(t, map[string]string{"org.gradle.jvmargs": "-Xmx1G"}, p.Extra)

	v, err := p.Version(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "1.0.0-SNAPSHOT", v.String())
}

func TestProps_Config_release(t *testing.T) {
	p := FromMap(map[string]string{KeyRelease: "true", KeyGroup: "g"})
	cfg, err := p.Config("build/libs", time.Date(2023, 12, 24, 18, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "202312241830", cfg.Version.String())
	assert.True(t, cfg.Version.IsRelease())
	assert.Equal(t, "g", cfg.Group)
	assert.Equal(t, "build/libs", cfg.OutDir)
}

func TestFromMap_release(t *testing.T) {
	for _, v := range []string{"", "true", "yes", "false"} {
		p := FromMap(map[string]string{KeyRelease: v})
		assert.True(t, p.Release, "version_release=%q", v)
	}
	assert.False(t, FromMap(map[string]string{KeyGroup: "g"}).Release)

	p, err := Parse(strings.NewReader(sample + "version_release=\n"))
	require.NoError(t, err)
	assert.True(t, p.Release)
	assert.NotContains(t, p.Extra, KeyRelease)
}

func TestProps_Version_invalid(t *testing.T) {
	p := FromMap(map[string]string{KeyVersion: "next"})
	_, err := p.Version(time.Now())
	assert.Error(t, err)
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "local.properties")
	second := filepath.Join(dir, DefaultFile)
	require.NoError(t, os.WriteFile(first, []byte("archives_base_name=local\n"), 0666))
	require.NoError(t, os.WriteFile(second, []byte(sample), 0666))
	p, err := Read(second, first)
	require.NoError(t, err)
	assert.Equal(t, "local", p.BaseName)
	assert.Equal(t, "org.example.audio", p.Group)

	_, err = Read(filepath.Join(dir, "missing.properties"))
	assert.Error(t, err)
}
