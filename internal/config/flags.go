package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagResolution = flag.Int("resolution", 0, "Arc-length samples per segment")
	flagStep       = flag.Float64("step", 0, "Sample spacing for the sample command")
	flagLog        = flag.String("log", "", "Log file path")
	flagDir        = flag.String("dir", "", "Directory for spline files")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagResolution > 0 {
		cfg.Spline.Resolution = *flagResolution
	}
	if *flagStep > 0 {
		cfg.Spline.SampleStep = float32(*flagStep)
	}
	if *flagLog != "" {
		cfg.Logging.LogFile = *flagLog
	}
	if *flagDir != "" {
		cfg.Data.Dir = *flagDir
	}
}
