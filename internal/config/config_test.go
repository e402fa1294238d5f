package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planforge/planforge/internal/engine/unit"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 0.2, cfg.Geometry.WallThickness)
	assert.Equal(t, 2.7, cfg.Geometry.WallHeight)
	assert.Equal(t, 0.9, cfg.Geometry.DoorWidth)
	assert.Equal(t, unit.Meters, cfg.Geometry.Unit())
	assert.Equal(t, 300*time.Millisecond, cfg.Watch.Debounce)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "planforge.yaml")
	content := `
geometry:
  wall_thickness: 0.3
  default_unit: ft
logging:
  level: debug
  format: console
watch:
  debounce: 150ms
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.Geometry.WallThickness)
	assert.Equal(t, unit.Feet, cfg.Geometry.Unit())
	// Unset keys keep defaults.
	assert.Equal(t, 2.1, cfg.Geometry.DoorHeight)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 150*time.Millisecond, cfg.Watch.Debounce)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidate_BadGeometry(t *testing.T) {
	cfg := Default()
	cfg.Geometry.WallThickness = 0
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Geometry.WindowSill = -1
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Geometry.DefaultUnit = "cubits"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadLogging(t *testing.T) {
	cfg := Default()
	cfg.Logging.Level = "verbose"
	assert.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidate_BadWatch(t *testing.T) {
	cfg := Default()
	cfg.Watch.Debounce = -time.Second
	assert.Error(t, cfg.Validate())
}
