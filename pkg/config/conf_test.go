package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOrCreate_Defaults(t *testing.T) {
	dir := t.TempDir()

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	require.NotNil(t, c)

	assert.Equal(t, 2048, c.SamplePoints)
	assert.InDelta(t, 0.1, c.Grading.Thresholds.A, 1e-9)
	assert.InDelta(t, 2.0, c.Grading.Thresholds.D, 1e-9)
	assert.InDelta(t, 10, c.Grading.MajorOutlierPenalty, 1e-9)
	assert.Equal(t, 100, c.Suspicion.HashWeight)
	assert.Equal(t, 70, c.Suspicion.Floor)

	// default config file was written
	_, err = os.Stat(filepath.Join(dir, configFileName))
	assert.NoError(t, err)
}

func TestReadOrCreate_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "home")

	c, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.NotNil(t, c)
}

func TestReadOrCreate_EmptyPath(t *testing.T) {
	_, err := ReadOrCreate("")
	assert.Error(t, err)
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	c := getDefaultConfig()
	c.SamplePoints = 512
	c.Grading.Thresholds.B = 0.42
	c.Suspicion.TimeWindow = 600

	require.NoError(t, Save(dir, c))

	got, err := ReadOrCreate(dir)
	require.NoError(t, err)
	assert.Equal(t, 512, got.SamplePoints)
	assert.InDelta(t, 0.42, got.Grading.Thresholds.B, 1e-9)
	assert.InDelta(t, 600, got.Suspicion.TimeWindow, 1e-9)
}

func TestSave_Invalid(t *testing.T) {
	assert.Error(t, Save("", getDefaultConfig()))
	assert.Error(t, Save(t.TempDir(), nil))
}

func TestGetOrCreateHomeDir(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	dir, created, err := GetOrCreateHomeDir("cadgrade-test")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, ".cadgrade-test", filepath.Base(dir))

	_, created, err = GetOrCreateHomeDir("cadgrade-test")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestGetOrCreateHomeDir_EmptyName(t *testing.T) {
	_, _, err := GetOrCreateHomeDir("")
	assert.Error(t, err)
}
