package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# tasktrack configuration file
# Values can be overridden by TASKTRACK_* environment variables or CLI flags

# Task data file (relative to the working directory; ~ and $VAR are expanded)
data_file = "tasks.json"

# Storage backend: auto, json, or sqlite
# auto picks sqlite for .db, .sqlite and .sqlite3 files and json otherwise
backend = "auto"

# Priority used by "add" when --priority is not given: low, medium, or high
default_priority = "medium"

# Logging (written to stderr): debug, info, warn, error
log_level = "warn"

# Log format: text, json, or logfmt
log_format = "text"
`
}
