package config

import "flag"

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagPriorityBits = flag.Int("priority-bits", -1, "Number of priority bits honoured by the sort")
	flagSortOrder    = flag.String("sort", "", "Secondary sort order: none, program, layout, program_layout")
	flagBaseInstance = flag.Bool("base-instance", false, "Use base-instance draw calls")
	flagScene        = flag.String("scene", "", "Scene file to load")
	flagWindowed     = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen   = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth        = flag.Int("width", 0, "Window width")
	flagHeight       = flag.Int("height", 0, "Window height")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
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
	if *flagPriorityBits >= 0 {
		cfg.Bucket.PriorityBits = *flagPriorityBits
	}
	if *flagSortOrder != "" {
		cfg.Bucket.SortOrder = *flagSortOrder
	}
	if *flagBaseInstance {
		cfg.Bucket.BaseInstance = true
	}
	if *flagScene != "" {
		cfg.Demo.Scene = *flagScene
	}
	if *flagWindowed {
		cfg.Graphics.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Graphics.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Graphics.Height = *flagHeight
	}
}
