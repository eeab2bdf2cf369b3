// Package config handles splinetool configuration loading and management.
package config

// Config holds all tool settings.
type Config struct {
	Spline  SplineConfig  `yaml:"spline"`
	Data    DataConfig    `yaml:"data"`
	Logging LoggingConfig `yaml:"logging"`
}

// SplineConfig holds evaluation settings.
type SplineConfig struct {
	Resolution int     `yaml:"resolution"`  // Arc-length samples per segment
	SampleStep float32 `yaml:"sample_step"` // Distance between samples printed by the sample command
}

// DataConfig holds spline file locations.
type DataConfig struct {
	Dir string `yaml:"dir"` // Directory relative file arguments are resolved against
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Spline: SplineConfig{
			Resolution: 100,
			SampleStep: 1,
		},
		Data: DataConfig{
			Dir: "",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
