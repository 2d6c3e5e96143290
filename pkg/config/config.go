// Package config reads runtime configuration from the environment, with an
// optional .env file for development setups.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/nn"
	"github.com/lesserafim4ever0502/YOLO-Detector-Pro/pkg/runner"
)

type Config struct {
	ModelsDir        string  // YDP_MODELS_DIR
	ResultsDir       string  // YDP_RESULTS_DIR
	Confidence       float32 // YDP_CONF
	IOU              float32 // YDP_IOU
	FPSWindow        int     // YDP_FPS_WINDOW
	FPSWindowCompare int     // YDP_FPS_WINDOW_COMPARE
	DelayMS          int     // YDP_DELAY_MS
}

// Load reads the .env file if one exists, then the environment. Unset
// variables get defaults; malformed values are an error.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		ModelsDir:        getString("YDP_MODELS_DIR", "models"),
		ResultsDir:       getString("YDP_RESULTS_DIR", "results"),
		Confidence:       nn.DefaultConfidenceThreshold,
		IOU:              nn.DefaultNmsIouThreshold,
		FPSWindow:        runner.DefaultFPSWindow,
		FPSWindowCompare: runner.DefaultCompareFPSWindow,
		DelayMS:          0,
	}
	if err := getFloat32("YDP_CONF", &cfg.Confidence); err != nil {
		return nil, err
	}
	if err := getFloat32("YDP_IOU", &cfg.IOU); err != nil {
		return nil, err
	}
	if err := getInt("YDP_FPS_WINDOW", &cfg.FPSWindow); err != nil {
		return nil, err
	}
	if err := getInt("YDP_FPS_WINDOW_COMPARE", &cfg.FPSWindowCompare); err != nil {
		return nil, err
	}
	if err := getInt("YDP_DELAY_MS", &cfg.DelayMS); err != nil {
		return nil, err
	}
	return cfg, nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat32(key string, out *float32) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return fmt.Errorf("invalid %v %q: %w", key, v, err)
	}
	*out = float32(f)
	return nil
}

func getInt(key string, out *int) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %v %q: %w", key, v, err)
	}
	*out = n
	return nil
}
