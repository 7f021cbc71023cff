package logging

// Config defines the structure for the logging section in vault.yml.
type Config struct {
	// Level is the minimum log level to output (e.g., "debug", "info", "warn", "error").
	// Can be overridden by the VAULT_LOG_LEVEL environment variable.
	Level string `mapstructure:"level"`

	// ReportCaller, if true, includes the file, line, and function name in the log output.
	// Can be enabled with the VAULT_LOG_CALLER=true environment variable.
	ReportCaller bool `mapstructure:"report_caller"`

	// File configures logging to a file.
	File FileSinkConfig `mapstructure:"file"`

	// Format configures the appearance of the log output.
	Format FormatConfig `mapstructure:"format"`
}

// FileSinkConfig configures the file logging sink.
type FileSinkConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// Path is the full path to the log file.
	Path string `mapstructure:"path"`
}

// FormatConfig controls the log output format.
type FormatConfig struct {
	// Preset can be "default", "simple" (no timestamps), or "json".
	Preset string `mapstructure:"preset"`
	// StructuredToStderr controls when structured logs are sent to stderr.
	// Can be "auto" (default), "always", or "never".
	StructuredToStderr string `mapstructure:"structured_to_stderr"`
}
