// Package cmd implements the simpleproc subcommands.
//
//   - [Process] expands the blocks of source files and directories into an
//     output directory. It is the default command.
//   - [Eval] evaluates block expressions given on the command line.
//   - [Repl] starts an interactive evaluator.
//   - [Init] writes a configuration file holding the current flag values.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

// SearchPathEnv names the environment variable holding additional include
// directories, separated by [os.PathListSeparator].
const SearchPathEnv = "SIMPLEPROC_PATH"
