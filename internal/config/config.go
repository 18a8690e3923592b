package config

// Config holds app configuration
type Config struct {
	// InputFile is the projector executable to scan for an embedded archive
	InputFile string `mapstructure:"input"`

	// OutputDir is where extracted movies are written. When empty it is
	// derived from the input path: extension stripped, or "_out" appended
	// when stripping changes nothing
	OutputDir string `mapstructure:"output"`

	// Workers bounds the number of sub-files processed concurrently
	Workers int `mapstructure:"workers"`

	DryRun       bool   `mapstructure:"dry_run"`
	LogLevel     string `mapstructure:"log_level"`
	LogOutputDir string `mapstructure:"log_output_dir"`
}
