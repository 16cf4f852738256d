// Package log provides a simplified structured logging interface based on
// [log/slog].
//
// A [Logger] is a value. Its zero value discards everything, which lets
// library types accept one through an option without nil checks:
//
//	logger := log.Make(os.Stderr, log.WithLevel(log.LevelTrace))
//	env, err := lang.NewEnvironment(lang.WithLogger(logger))
//
// Configuration is applied with functional options at creation time
// ([WithLevel], [WithFormat], [WithTimeLayout], [WithCaller], [WithPretty])
// or later with [Logger.Wrap], which returns a reconfigured copy.
//
// # Levels
//
// Besides the slog levels, [LevelTrace] sits below [LevelDebug] and is used
// for per-expression milestones of the parser, compiler, and runtime.
//
// # Formats
//
// [FormatText] and [FormatJSON] select the slog handlers. With pretty
// output enabled (the default) text records are written as unquoted
// key=value pairs and JSON records as indented blocks, colored with
// lipgloss when the output is a terminal.
//
// # Package-level logger
//
// The functions [Info], [Error], and friends log through a package-level
// logger writing to stderr, reconfigured with [Config]. The command-line
// front end configures it once from its flags.
package log
