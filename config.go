package orbit

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the engine configuration. It is loaded once and passed to the
// components that need it; nothing reads it ambiently.
type Config struct {
	OutputDir string
	Step      float64 // s
	Workers   int
	Selector  SelectorConfig
	Bodies    []BodyConfig // registered on top of the default catalog
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		OutputDir: ".",
		Step:      DefaultStep,
		Workers:   4,
		Selector:  DefaultSelectorConfig(),
	}
}

// LoadConfig reads conf.toml from the provided directory. A missing file is
// not an error: the defaults apply. A malformed file is.
func LoadConfig(dir string) (Config, error) {
	cfg := DefaultConfig()
	v := viper.New()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	v.SetDefault("general.output_path", cfg.OutputDir)
	v.SetDefault("propagation.step", cfg.Step)
	v.SetDefault("propagation.workers", cfg.Workers)
	v.SetDefault("selector.absolute_floor", cfg.Selector.AbsFloor)
	v.SetDefault("selector.relative_floor", cfg.Selector.RelFloor)
	v.SetDefault("selector.star_exclusion_radii", cfg.Selector.StarExclusionRadii)

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return cfg, fmt.Errorf("%s/conf.toml: %w", dir, err)
		}
	}

	cfg.OutputDir = v.GetString("general.output_path")
	cfg.Step = v.GetFloat64("propagation.step")
	cfg.Workers = v.GetInt("propagation.workers")
	cfg.Selector.AbsFloor = v.GetFloat64("selector.absolute_floor")
	cfg.Selector.RelFloor = v.GetFloat64("selector.relative_floor")
	cfg.Selector.StarExclusionRadii = v.GetFloat64("selector.star_exclusion_radii")
	if err := v.UnmarshalKey("bodies", &cfg.Bodies); err != nil {
		return cfg, fmt.Errorf("bodies section: %w", err)
	}
	if cfg.Step <= 0 {
		cfg.Step = DefaultStep
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return cfg, nil
}
