package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/runner"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "models", cfg.ModelsDir)
	require.Equal(t, "results", cfg.ResultsDir)
	require.Equal(t, float32(nn.DefaultConfidenceThreshold), cfg.Confidence)
	require.Equal(t, float32(nn.DefaultNmsIouThreshold), cfg.IOU)
	require.Equal(t, runner.DefaultFPSWindow, cfg.FPSWindow)
	require.Equal(t, runner.DefaultCompareFPSWindow, cfg.FPSWindowCompare)
	require.Equal(t, 0, cfg.DelayMS)
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("YDP_MODELS_DIR", "/opt/models")
	t.Setenv("YDP_RESULTS_DIR", "/tmp/out")
	t.Setenv("YDP_CONF", "0.5")
	t.Setenv("YDP_IOU", "0.6")
	t.Setenv("YDP_FPS_WINDOW", "20")
	t.Setenv("YDP_FPS_WINDOW_COMPARE", "8")
	t.Setenv("YDP_DELAY_MS", "30")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "/opt/models", cfg.ModelsDir)
	require.Equal(t, "/tmp/out", cfg.ResultsDir)
	require.Equal(t, float32(0.5), cfg.Confidence)
	require.Equal(t, float32(0.6), cfg.IOU)
	require.Equal(t, 20, cfg.FPSWindow)
	require.Equal(t, 8, cfg.FPSWindowCompare)
	require.Equal(t, 30, cfg.DelayMS)
}

func TestMalformedValues(t *testing.T) {
	t.Setenv("YDP_CONF", "not-a-number")
	_, err := Load()
	require.Error(t, err)
}
