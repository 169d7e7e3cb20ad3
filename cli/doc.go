// Package cli contains the command line interface for simpleproc.
//
// # Usage
//
//	simpleproc [flags] -o DIR PATH...        expand blocks (default command)
//	simpleproc eval [flags] EXPR...          evaluate block bodies
//	simpleproc repl [flags]                  interactive evaluation
//	simpleproc init [--force]                write the configuration file
//
// # Configuration
//
// Flag defaults are read from config.yaml in the user configuration
// directory, such as ~/.config/simpleproc/config.yaml. Command-line flags
// override the file. The init command writes the file from the current flag
// values:
//
//	log-level: info
//	log-format: text
//	log:
//	  pretty: false
//
// Nested mappings join their keys with '-'.
//
// # Logging Options
//
//   - --log-level: minimum level (trace, debug, info, warn, error)
//   - --log-format: record encoding (text, json)
//   - --log-time-layout: timestamp layout (RFC3339, Kitchen, or a Go layout)
//   - --log-caller: include the source location of each record
//   - --log-pretty: colorize records
//
// # Profiling Options
//
// Only available when built with the pprof build tag, see package
// [github.com/ardnew/simpleproc/profile]:
//
//   - --pprof-mode: enable profiling in the given mode
//   - --pprof-dir: profile output directory (default: ~/.cache/simpleproc/pprof)
package cli
